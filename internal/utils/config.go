package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benmeehan/pcremote/internal/constants"
	"github.com/benmeehan/pcremote/pkg/file"
	"github.com/rs/zerolog"
)

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// AgentConfig represents the structure of the agent configuration file.
type AgentConfig struct {
	Log LogConfig `yaml:"log"`

	Server struct {
		Addr            string        `yaml:"addr"`             // Listen address, e.g. ":8765"
		ReadTimeout     time.Duration `yaml:"read_timeout"`     // Max time to read a request
		WriteTimeout    time.Duration `yaml:"write_timeout"`    // Max time to write a response; must cover screenshot capture
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // Grace period for in-flight requests on stop
	} `yaml:"server"`

	Clipboard struct {
		Interval time.Duration `yaml:"interval"` // Sampling period
		Capacity int           `yaml:"capacity"` // History length
	} `yaml:"clipboard"`

	Power struct {
		ShutdownDelay time.Duration `yaml:"shutdown_delay"` // Grace delay passed to the OS shutdown command
	} `yaml:"power"`

	Screenshot struct {
		JPEGQuality int `yaml:"jpeg_quality"` // 1-100
	} `yaml:"screenshot"`

	Stats struct {
		CPUWindow time.Duration `yaml:"cpu_window"` // CPU sampling window
		DiskPath  string        `yaml:"disk_path"`  // Volume to report; defaults to the system volume
		Timeout   time.Duration `yaml:"timeout"`    // Collection timeout
	} `yaml:"stats"`
}

// RelayConfig represents the structure of the relay configuration file.
type RelayConfig struct {
	Log LogConfig `yaml:"log"`

	MQTT struct {
		Broker         string        `yaml:"broker"`          // MQTT broker address
		ClientID       string        `yaml:"client_id"`       // MQTT client ID prefix
		CACertificate  string        `yaml:"ca_certificate"`  // Optional path to the CA certificate
		Username       string        `yaml:"username"`        // Optional broker username
		Password       string        `yaml:"password"`        // Optional broker password
		TopicPrefix    string        `yaml:"topic_prefix"`    // Inbound on <prefix>/inbound, replies on <prefix>/outbound/<chat_id>
		QOS            int           `yaml:"qos"`             // MQTT QoS level
		ConnectTimeout time.Duration `yaml:"connect_timeout"` // Initial connection timeout
	} `yaml:"mqtt"`

	Target struct {
		MAC           string `yaml:"mac"`            // Hardware address for Wake-on-LAN
		Host          string `yaml:"host"`           // Host name or IPv4 address
		AgentPort     int    `yaml:"agent_port"`     // Control agent port
		BroadcastAddr string `yaml:"broadcast_addr"` // Wake-on-LAN broadcast address
		WOLPort       int    `yaml:"wol_port"`       // Wake-on-LAN port
	} `yaml:"target"`

	AllowedUsers []string `yaml:"allowed_users"` // User ids permitted to issue commands

	Probe struct {
		Method  string        `yaml:"method"`  // icmp or command
		Timeout time.Duration `yaml:"timeout"` // Network probe timeout
	} `yaml:"probe"`

	Agent struct {
		VersionConstraint string `yaml:"version_constraint"` // Optional semver range the agent should satisfy

		Timeouts struct {
			Ping       time.Duration `yaml:"ping"`
			Power      time.Duration `yaml:"power"`
			Clipboard  time.Duration `yaml:"clipboard"`
			Screenshot time.Duration `yaml:"screenshot"`
			Stats      time.Duration `yaml:"stats"`
			Volume     time.Duration `yaml:"volume"`
		} `yaml:"timeouts"`
	} `yaml:"agent"`

	Classifier struct {
		Enabled            bool          `yaml:"enabled"`             // Use the language service for free text and voice
		APIKey             string        `yaml:"api_key"`             // Usually ${OPENAI_API_KEY}
		BaseURL            string        `yaml:"base_url"`            // OpenAI-compatible endpoint
		Model              string        `yaml:"model"`               // Chat model
		TranscriptionModel string        `yaml:"transcription_model"` // Speech-to-text model
		Language           string        `yaml:"language"`            // Optional speech language hint
		Timeout            time.Duration `yaml:"timeout"`             // Per-call timeout
	} `yaml:"classifier"`

	Workers int `yaml:"workers"` // Concurrent message handlers
}

// LoadAgentConfig loads, defaults and validates the agent configuration.
func LoadAgentConfig(filename string, fileClient file.FileOperations) (*AgentConfig, error) {
	var config AgentConfig
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	config.setDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent config: %w", err)
	}
	return &config, nil
}

// LoadRelayConfig loads, defaults and validates the relay configuration.
func LoadRelayConfig(filename string, fileClient file.FileOperations) (*RelayConfig, error) {
	var config RelayConfig
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	config.setDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid relay config: %w", err)
	}
	return &config, nil
}

func (l *LogConfig) setDefaults() {
	if l.Level == "" {
		l.Level = zerolog.LevelInfoValue
	}
	if l.Format == "" {
		l.Format = constants.LogFormatJSON
	}
}

func (l LogConfig) validate() error {
	if _, err := zerolog.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if l.Format != constants.LogFormatJSON && l.Format != constants.LogFormatConsole {
		return fmt.Errorf("log.format must be %q or %q", constants.LogFormatJSON, constants.LogFormatConsole)
	}
	return nil
}

func (c *AgentConfig) setDefaults() {
	c.Log.setDefaults()
	if c.Server.Addr == "" {
		c.Server.Addr = constants.DefaultAgentAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = constants.DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = constants.DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = constants.DefaultShutdownTimeout
	}
	if c.Clipboard.Interval == 0 {
		c.Clipboard.Interval = constants.DefaultClipboardInterval
	}
	if c.Clipboard.Capacity == 0 {
		c.Clipboard.Capacity = constants.DefaultClipboardCapacity
	}
	if c.Power.ShutdownDelay == 0 {
		c.Power.ShutdownDelay = constants.DefaultShutdownDelay
	}
	if c.Screenshot.JPEGQuality == 0 {
		c.Screenshot.JPEGQuality = constants.DefaultJPEGQuality
	}
	if c.Stats.CPUWindow == 0 {
		c.Stats.CPUWindow = constants.DefaultCPUSampleWindow
	}
	if c.Stats.Timeout == 0 {
		c.Stats.Timeout = constants.DefaultStatsTimeout
	}
}

// Validate reports every problem in the agent configuration at once.
func (c *AgentConfig) Validate() error {
	var errs []error
	errs = append(errs, c.Log.validate())
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}
	if c.Clipboard.Interval < 10*time.Millisecond {
		errs = append(errs, errors.New("clipboard.interval must be at least 10ms"))
	}
	if c.Clipboard.Capacity < 1 {
		errs = append(errs, errors.New("clipboard.capacity must be positive"))
	}
	if c.Power.ShutdownDelay < 0 {
		errs = append(errs, errors.New("power.shutdown_delay must not be negative"))
	}
	if c.Screenshot.JPEGQuality < 1 || c.Screenshot.JPEGQuality > 100 {
		errs = append(errs, errors.New("screenshot.jpeg_quality must be between 1 and 100"))
	}
	if c.Stats.CPUWindow <= 0 || c.Stats.Timeout <= c.Stats.CPUWindow {
		errs = append(errs, errors.New("stats.timeout must be longer than stats.cpu_window"))
	}
	return errors.Join(errs...)
}

func (c *RelayConfig) setDefaults() {
	c.Log.setDefaults()
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = constants.DefaultMQTTClientID
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = constants.DefaultTopicPrefix
	}
	c.MQTT.TopicPrefix = strings.TrimSuffix(c.MQTT.TopicPrefix, "/")
	if c.MQTT.QOS == 0 {
		c.MQTT.QOS = constants.DefaultMQTTQOS
	}
	if c.Target.AgentPort == 0 {
		c.Target.AgentPort = constants.DefaultAgentPort
	}
	if c.Probe.Method == "" {
		c.Probe.Method = constants.DefaultProbeMethod
	}
	if c.Probe.Timeout == 0 {
		c.Probe.Timeout = constants.DefaultProbeTimeout
	}

	t := &c.Agent.Timeouts
	if t.Ping == 0 {
		t.Ping = 2 * time.Second
	}
	if t.Power == 0 {
		t.Power = 5 * time.Second
	}
	if t.Clipboard == 0 {
		t.Clipboard = 5 * time.Second
	}
	if t.Screenshot == 0 {
		t.Screenshot = 15 * time.Second
	}
	if t.Stats == 0 {
		t.Stats = 10 * time.Second
	}
	if t.Volume == 0 {
		t.Volume = 5 * time.Second
	}

	if c.Classifier.Timeout == 0 {
		c.Classifier.Timeout = 30 * time.Second
	}
	if c.Workers == 0 {
		c.Workers = constants.DefaultWorkers
	}
}

// Validate reports every problem in the relay configuration at once.
func (c *RelayConfig) Validate() error {
	var errs []error
	errs = append(errs, c.Log.validate())
	if c.MQTT.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is required"))
	}
	if c.MQTT.QOS < 0 || c.MQTT.QOS > 2 {
		errs = append(errs, errors.New("mqtt.qos must be 0, 1 or 2"))
	}
	if c.Target.MAC == "" {
		errs = append(errs, errors.New("target.mac is required"))
	}
	if c.Target.Host == "" {
		errs = append(errs, errors.New("target.host is required"))
	}
	if len(c.AllowedUsers) == 0 {
		errs = append(errs, errors.New("allowed_users must list at least one user id"))
	}
	if c.Probe.Method != "icmp" && c.Probe.Method != "command" {
		errs = append(errs, fmt.Errorf("probe.method must be icmp or command, got %q", c.Probe.Method))
	}
	if c.Classifier.Enabled && c.Classifier.APIKey == "" {
		errs = append(errs, errors.New("classifier.api_key is required when the classifier is enabled"))
	}
	if c.Workers < 1 {
		errs = append(errs, errors.New("workers must be positive"))
	}
	return errors.Join(errs...)
}
