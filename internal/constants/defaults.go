package constants

import "time"

// Version is the build version reported by the agent. Overridden at build
// time with -ldflags "-X github.com/benmeehan/pcremote/internal/constants.Version=...".
var Version = "0.1.0"

// Agent defaults
const (
	DefaultAgentAddr         = ":8765"
	DefaultAgentPort         = 8765
	DefaultReadTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 30 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
	DefaultClipboardInterval = time.Second
	DefaultClipboardCapacity = 5
	DefaultJPEGQuality       = 70
	DefaultShutdownDelay     = 5 * time.Second
	DefaultCPUSampleWindow   = 500 * time.Millisecond
	DefaultStatsTimeout      = 10 * time.Second
)

// Relay defaults
const (
	DefaultTopicPrefix    = "pcremote"
	DefaultMQTTClientID   = "pcremote-relay"
	DefaultMQTTQOS        = 1
	DefaultProbeMethod    = "icmp"
	DefaultProbeTimeout   = time.Second
	DefaultWorkers        = 4
	DefaultMQTTDisconnect = 250 // milliseconds
)

// Log formats
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)
