//go:build darwin

package identity

import (
	"os/exec"
	"strings"
)

func platformProbes() []Probe {
	return []Probe{
		{Name: "cpu", Read: readCPUBrand},
		{Name: "disk", Read: readDiskSerial},
		{Name: "mac", Read: readMACAddress},
		{Name: "board", Read: readPlatformSerial},
	}
}

func readCPUBrand() (string, bool) {
	out, err := exec.Command("sysctl", "-n", "machdep.cpu.brand_string").Output()
	if err != nil {
		return "", false
	}
	brand := strings.TrimSpace(string(out))
	return brand, brand != ""
}

func readDiskSerial() (string, bool) {
	out, err := exec.Command("system_profiler", "SPSerialATADataType").Output()
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, "Serial Number") {
			if _, value, ok := strings.Cut(line, ":"); ok {
				return strings.TrimSpace(value), true
			}
		}
	}
	return "", false
}

func readMACAddress() (string, bool) {
	out, err := exec.Command("ifconfig", "en0").Output()
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, "ether") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				return fields[1], true
			}
		}
	}
	return "", false
}

func readPlatformSerial() (string, bool) {
	out, err := exec.Command("ioreg", "-l").Output()
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, "IOPlatformSerialNumber") {
			continue
		}
		start := strings.Index(line, "\"")
		if start < 0 {
			continue
		}
		rest := line[start+1:]
		if end := strings.Index(rest, "\""); end >= 0 {
			return rest[:end], true
		}
	}
	return "", false
}
