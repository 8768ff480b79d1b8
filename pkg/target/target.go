// Package target describes the single machine the relay controls.
package target

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/benmeehan/pcremote/pkg/wol"
)

// TargetDevice holds the target's addressing. It is built once from
// configuration and never mutated.
type TargetDevice struct {
	MAC           net.HardwareAddr
	Host          string // Host name or IPv4 address of the machine
	AgentPort     int    // Port the control agent listens on
	BroadcastAddr string // Wake-on-LAN broadcast address
	WOLPort       int    // Wake-on-LAN UDP port
}

// New validates and builds a TargetDevice. Empty broadcast address and zero
// WOL port take the Wake-on-LAN defaults.
func New(mac, host string, agentPort int, broadcastAddr string, wolPort int) (TargetDevice, error) {
	hw, err := wol.ParseMAC(mac)
	if err != nil {
		return TargetDevice{}, fmt.Errorf("target mac: %w", err)
	}
	if host == "" {
		return TargetDevice{}, errors.New("target host is required")
	}
	if agentPort <= 0 || agentPort > 65535 {
		return TargetDevice{}, fmt.Errorf("target agent port %d out of range", agentPort)
	}
	if broadcastAddr == "" {
		broadcastAddr = wol.DefaultBroadcastAddr
	}
	if wolPort == 0 {
		wolPort = wol.DefaultPort
	}
	if wolPort < 0 || wolPort > 65535 {
		return TargetDevice{}, fmt.Errorf("target wol port %d out of range", wolPort)
	}

	return TargetDevice{
		MAC:           hw,
		Host:          host,
		AgentPort:     agentPort,
		BroadcastAddr: broadcastAddr,
		WOLPort:       wolPort,
	}, nil
}

// AgentURL returns the base URL of the control agent.
func (t TargetDevice) AgentURL() string {
	return "http://" + net.JoinHostPort(t.Host, strconv.Itoa(t.AgentPort))
}

// Sender returns a magic-packet sender aimed at this device's broadcast domain.
func (t TargetDevice) Sender() *wol.Sender {
	return wol.NewSender(t.BroadcastAddr, t.WOLPort)
}

func (t TargetDevice) String() string {
	return fmt.Sprintf("%s (%s)", t.Host, t.MAC)
}
