// Package netstate reads Wi-Fi and Ethernet state from Linux sysfs.
package netstate

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wlynxg/anet"
	"golang.org/x/sys/unix"
)

const (
	sysfsNetPath    = "/sys/class/net"
	sysfsRfkillPath = "/sys/class/rfkill"
)

// Probe answers connectivity questions from a sysfs tree.
type Probe struct {
	netRoot    string
	rfkillRoot string

	// addrs returns the addresses of an interface. Replaced in tests.
	addrs func(name string) ([]net.Addr, error)
}

// NewProbe returns a probe over the live /sys tree.
func NewProbe() *Probe {
	return newProbe(sysfsNetPath, sysfsRfkillPath)
}

func newProbe(netRoot, rfkillRoot string) *Probe {
	return &Probe{
		netRoot:    netRoot,
		rfkillRoot: rfkillRoot,
		addrs:      interfaceAddrs,
	}
}

// Interface is the sysfs view of one network interface.
type Interface struct {
	Name     string
	Wireless bool
	Physical bool
	Carrier  bool
}

// Interfaces lists Ethernet-type interfaces. Loopback and tunnels are skipped.
func (p *Probe) Interfaces() []Interface {
	entries, err := os.ReadDir(p.netRoot)
	if err != nil {
		return nil
	}

	var result []Interface
	for _, entry := range entries {
		name := entry.Name()
		dir := filepath.Join(p.netRoot, name)

		linkType, err := readInt(filepath.Join(dir, "type"))
		if err != nil || linkType != unix.ARPHRD_ETHER {
			continue
		}

		result = append(result, Interface{
			Name:     name,
			Wireless: exists(filepath.Join(dir, "wireless")) || exists(filepath.Join(dir, "phy80211")),
			Physical: exists(filepath.Join(dir, "device")),
			Carrier:  readFlag(filepath.Join(dir, "carrier")),
		})
	}
	return result
}

// EthernetAvailable reports whether a wired Ethernet port backed by a device exists.
func (p *Probe) EthernetAvailable() bool {
	for _, iface := range p.Interfaces() {
		if iface.Physical && !iface.Wireless {
			return true
		}
	}
	return false
}

// EthernetConnected reports whether a wired port has carrier and an address.
func (p *Probe) EthernetConnected() bool {
	for _, iface := range p.Interfaces() {
		if !iface.Physical || iface.Wireless || !iface.Carrier {
			continue
		}
		addrs, err := p.addrs(iface.Name)
		if err == nil && len(addrs) > 0 {
			return true
		}
	}
	return false
}

// WiFiEnabled reports whether a wireless interface exists and no wlan rfkill
// switch blocks it.
func (p *Probe) WiFiEnabled() bool {
	hasWireless := false
	for _, iface := range p.Interfaces() {
		if iface.Wireless {
			hasWireless = true
			break
		}
	}
	if !hasWireless {
		return false
	}

	entries, err := os.ReadDir(p.rfkillRoot)
	if err != nil {
		return true
	}
	for _, entry := range entries {
		dir := filepath.Join(p.rfkillRoot, entry.Name())
		if readString(filepath.Join(dir, "type")) != "wlan" {
			continue
		}
		if readFlag(filepath.Join(dir, "soft")) || readFlag(filepath.Join(dir, "hard")) {
			return false
		}
	}
	return true
}

func interfaceAddrs(name string) ([]net.Addr, error) {
	ifaces, err := anet.Interfaces()
	if err != nil {
		return nil, err
	}
	for i := range ifaces {
		if ifaces[i].Name == name {
			return anet.InterfaceAddrsByInterface(&ifaces[i])
		}
	}
	return nil, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func readString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func readInt(path string) (int, error) {
	return strconv.Atoi(readString(path))
}

// readFlag treats anything but "1" as false. Reading carrier on a down link fails with EINVAL.
func readFlag(path string) bool {
	return readString(path) == "1"
}
