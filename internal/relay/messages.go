package relay

import (
	"fmt"
	"strings"

	"github.com/benmeehan/pcremote/internal/models"
)

const (
	MsgAccessDenied   = "⛔ Access denied"
	MsgUnrecognized   = "🤷 Sorry, I didn't understand that. Send /help for the list of commands."
	MsgTargetOffline  = "🔴 Your PC appears to be off: it does not answer on the network. Send /wake to turn it on."
	MsgAgentDown      = "🟡 Your PC is on the network, but the control agent is not responding."
	MsgAgentDownMaybe = "🟡 The control agent is not responding."
	MsgClipboardEmpty = "📋 Clipboard history is empty."
)

var helpText = strings.Join([]string{
	"Available commands:",
	"/wake - turn the PC on (Wake-on-LAN)",
	"/shutdown - shut the PC down",
	"/sleep - put the PC to sleep",
	"/status - is the PC on and the agent running",
	"/ping - check the control agent",
	"/clipboard - recent clipboard entries",
	"/screenshot - capture the screen",
	"/stats - CPU, memory and disk usage",
	"/volume [+|-|mute|0-100] - show or change the volume",
	"You can also just write or say what you want.",
}, "\n")

func renderReachability(r Reachability) string {
	var text string
	switch r.State {
	case StateOffline:
		text = "🔴 PC is offline"
	case StateAgentUnreachable:
		text = "🟡 PC is online, but the control agent is not responding"
	case StateAgentError:
		text = fmt.Sprintf("🟠 PC is online, but the control agent returned an error (%d): %s", r.StatusCode, r.Message)
	case StateAgentConnected:
		text = "🟢 PC is online and the control agent is connected"
		if r.Agent != nil {
			text += " (" + describeAgent(r.Agent) + ")"
		} else if r.Message != "" {
			text += " (unreadable ping reply)"
		}
	}
	if r.VersionNote != "" {
		text += "\n⚠️ " + r.VersionNote
	}
	return text
}

func describeAgent(p *models.PingResponse) string {
	parts := make([]string, 0, 3)
	if p.Hostname != "" {
		parts = append(parts, p.Hostname)
	}
	if p.Platform != "" {
		parts = append(parts, p.Platform)
	}
	if p.Version != "" {
		parts = append(parts, "v"+strings.TrimPrefix(p.Version, "v"))
	}
	return strings.Join(parts, ", ")
}

func renderClipboard(history []string) string {
	if len(history) == 0 {
		return MsgClipboardEmpty
	}
	var b strings.Builder
	b.WriteString("📋 Clipboard history (newest first):")
	for i, entry := range history {
		fmt.Fprintf(&b, "\n%d. %s", i+1, entry)
	}
	return b.String()
}

func renderStats(s *models.StatsResponse) string {
	return fmt.Sprintf(
		"📊 CPU: %.1f%%\n🧠 RAM: %.1f%% (%.2f / %.2f GB)\n💾 Disk: %.1f%% used, %.2f GB free",
		s.CPU, s.RAMPercent, s.RAMUsedGB, s.RAMTotalGB, s.DiskPercent, s.DiskFreeGB,
	)
}

func renderVolume(v *models.VolumeResponse) string {
	if v.Muted {
		return fmt.Sprintf("🔇 Volume: %d%% (muted)", v.Level)
	}
	return fmt.Sprintf("🔊 Volume: %d%%", v.Level)
}
