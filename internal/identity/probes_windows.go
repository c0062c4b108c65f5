//go:build windows

package identity

import (
	"os/exec"
	"strings"
)

func platformProbes() []Probe {
	return []Probe{
		{Name: "cpu", Read: readProcessorID},
		{Name: "disk", Read: readDiskSerial},
		{Name: "mac", Read: readMACAddress},
		{Name: "board", Read: readBaseboardSerial},
	}
}

// firstDataLine returns the first non-empty line after the wmic header.
func firstDataLine(out []byte) (string, bool) {
	lines := strings.Split(string(out), "\n")
	for _, line := range lines[1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}

func readProcessorID() (string, bool) {
	out, err := exec.Command("wmic", "cpu", "get", "ProcessorId").Output()
	if err != nil {
		return "", false
	}
	return firstDataLine(out)
}

func readDiskSerial() (string, bool) {
	out, err := exec.Command("wmic", "diskdrive", "get", "SerialNumber").Output()
	if err != nil {
		return "", false
	}
	return firstDataLine(out)
}

func readMACAddress() (string, bool) {
	out, err := exec.Command("getmac", "/fo", "csv", "/nh").Output()
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(string(out), "\n") {
		mac := strings.Trim(strings.TrimSpace(strings.Split(line, ",")[0]), "\"")
		if mac != "" && strings.Contains(mac, "-") {
			return mac, true
		}
	}
	return "", false
}

func readBaseboardSerial() (string, bool) {
	out, err := exec.Command("wmic", "baseboard", "get", "SerialNumber").Output()
	if err != nil {
		return "", false
	}
	serial, ok := firstDataLine(out)
	if !ok || serial == "To be filled by O.E.M." {
		return "", false
	}
	return serial, true
}
