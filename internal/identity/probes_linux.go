//go:build linux

package identity

import (
	"os"
	"path/filepath"
	"strings"
)

func platformProbes() []Probe {
	return []Probe{
		{Name: "cpu", Read: readCPUInfo},
		{Name: "disk", Read: readDiskID},
		{Name: "mac", Read: readMACAddress},
		{Name: "board", Read: readBoardSerial},
	}
}

// readCPUInfo pulls the serial (ARM boards) or model name from /proc/cpuinfo.
func readCPUInfo() (string, bool) {
	content, err := os.ReadFile("/proc/cpuinfo")
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(string(content), "\n") {
		if strings.HasPrefix(line, "Serial") || strings.Contains(line, "model name") {
			if _, value, ok := strings.Cut(line, ":"); ok {
				return strings.TrimSpace(value), true
			}
		}
	}
	return "", false
}

// readDiskID returns the first stable ata-/nvme- device id.
func readDiskID() (string, bool) {
	entries, err := os.ReadDir("/dev/disk/by-id")
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "ata-") || strings.HasPrefix(name, "nvme-") {
			return name, true
		}
	}
	return "", false
}

// readMACAddress returns the first non-loopback hardware address.
func readMACAddress() (string, bool) {
	entries, err := os.ReadDir("/sys/class/net")
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		name := entry.Name()
		if name == "lo" {
			continue
		}
		addr, err := os.ReadFile(filepath.Join("/sys/class/net", name, "address"))
		if err != nil {
			continue
		}
		mac := strings.TrimSpace(string(addr))
		if mac != "" && mac != "00:00:00:00:00:00" {
			return mac, true
		}
	}
	return "", false
}

func readBoardSerial() (string, bool) {
	serial, err := os.ReadFile("/sys/class/dmi/id/board_serial")
	if err != nil {
		return "", false
	}
	trimmed := strings.TrimSpace(string(serial))
	return trimmed, trimmed != ""
}
