//go:build windows

package storage

import "os"

// Windows has no flock; the in-process mutex plus the exclusive sidecar
// file is the whole discipline there.
func flock(f *os.File) error { return nil }

func funlock(f *os.File) {}
