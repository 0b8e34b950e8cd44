package libvirt

import (
	"context"
	"encoding/xml"
	"fmt"
)

// netXML is the slice of `virsh net-dumpxml` we care about: the bridge IP,
// which is the host-side address guests on the network can reach.
type netXML struct {
	IPs []struct {
		Address string `xml:"address,attr"`
		Family  string `xml:"family,attr"`
	} `xml:"ip"`
}

// HostAddress returns the configured virtual network's bridge address.
// The installing VM fetches its config from this address, so it must be the
// one routable from inside the network, not any external interface of the
// host.
func (l *Libvirt) HostAddress(ctx context.Context) (string, error) {
	out, err := l.virsh(ctx, "net-dumpxml", l.conf.LibvirtNetwork)
	if err != nil {
		return "", fmt.Errorf("virsh net-dumpxml %s: %s: %w", l.conf.LibvirtNetwork, firstLine(out), err)
	}
	return parseHostAddress(out, l.conf.LibvirtNetwork)
}

func parseHostAddress(dump, network string) (string, error) {
	var n netXML
	if err := xml.Unmarshal([]byte(dump), &n); err != nil {
		return "", fmt.Errorf("parse net-dumpxml for %s: %w", network, err)
	}
	for _, ip := range n.IPs {
		if ip.Family == "" || ip.Family == "ipv4" {
			if ip.Address != "" {
				return ip.Address, nil
			}
		}
	}
	return "", fmt.Errorf("network %s has no IPv4 bridge address", network)
}
