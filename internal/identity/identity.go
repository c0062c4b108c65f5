// Package identity derives a stable per-device fingerprint used to tag
// outbound gateway requests. The fingerprint is for coarse device
// distinction only; it is not a security credential.
package identity

import (
	"fmt"
	"hash/fnv"
	"os"
	"os/user"
	"strings"
	"sync"

	"github.com/nixdorfer/dialogue/internal/logging"
)

// Probe is one best-effort hardware signal source. Probes may fail or be
// unavailable; they are skipped, never retried.
type Probe struct {
	Name string
	Read func() (string, bool)
}

// Provider computes the device fingerprint exactly once, on first access,
// and caches it for the process lifetime.
type Provider struct {
	probes []Probe
	once   sync.Once
	id     string
}

// New creates a Provider using this platform's probe set, in fixed
// priority order: processor, disk serial, network adapter, mainboard.
func New() *Provider {
	return NewWithProbes(platformProbes())
}

// NewWithProbes creates a Provider with an explicit probe list.
func NewWithProbes(probes []Probe) *Provider {
	return &Provider{probes: probes}
}

// DeviceID returns the cached fingerprint, computing it on first call.
// Safe for concurrent use.
func (p *Provider) DeviceID() string {
	p.once.Do(func() {
		p.id = p.compute()
	})
	return p.id
}

func (p *Provider) compute() string {
	var components []string
	for _, probe := range p.probes {
		value, ok := probe.Read()
		if !ok || strings.TrimSpace(value) == "" {
			logging.Debug().Str("probe", probe.Name).Msg("identity probe unavailable")
			continue
		}
		components = append(components, strings.TrimSpace(value))
	}

	if len(components) == 0 {
		components = append(components, fallbackID())
	}

	return fingerprint(strings.Join(components, "|"))
}

// fallbackID builds username@hostname when no hardware signal is available.
func fallbackID() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "unknown"
	}

	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	if username == "" {
		username = os.Getenv("USER")
	}
	if username == "" {
		username = "unknown"
	}

	return username + "@" + hostname
}

// fingerprint hashes the input twice with independent FNV-1a states, once
// forward and once character-reversed, and concatenates both outputs as
// fixed-width hex. The format must stay stable across client versions.
func fingerprint(input string) string {
	h1 := fnv.New64a()
	h1.Write([]byte(input))

	h2 := fnv.New64a()
	h2.Write([]byte(reverse(input)))

	return fmt.Sprintf("%016x%016x", h1.Sum64(), h2.Sum64())
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
