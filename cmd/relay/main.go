package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/benmeehan/pcremote/internal/classifier"
	"github.com/benmeehan/pcremote/internal/constants"
	"github.com/benmeehan/pcremote/internal/registry"
	"github.com/benmeehan/pcremote/internal/relay"
	"github.com/benmeehan/pcremote/internal/service_registry"
	"github.com/benmeehan/pcremote/internal/services"
	"github.com/benmeehan/pcremote/internal/system"
	"github.com/benmeehan/pcremote/internal/utils"
	"github.com/benmeehan/pcremote/pkg/agentclient"
	"github.com/benmeehan/pcremote/pkg/file"
	"github.com/benmeehan/pcremote/pkg/mqtt"
	"github.com/benmeehan/pcremote/pkg/netprobe"
	"github.com/benmeehan/pcremote/pkg/target"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
)

func main() {
	configPath := flag.StringP("config", "c", "configs/relay.yaml", "path to the relay configuration file")
	logLevel := flag.String("log-level", "", "override the configured log level")
	flag.Parse()

	log := zerolog.New(os.Stdout).With().Timestamp().Str("component", "relay").Logger()

	// Load configuration from file
	fileClient := file.NewFileService()
	config, err := utils.LoadRelayConfig(*configPath, fileClient)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}
	if *logLevel != "" {
		config.Log.Level = *logLevel
	}

	log, err = utils.NewLogger(config.Log, os.Stdout, "relay")
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid log configuration")
	}

	device, err := target.New(
		config.Target.MAC,
		config.Target.Host,
		config.Target.AgentPort,
		config.Target.BroadcastAddr,
		config.Target.WOLPort,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid target device")
	}
	log.Info().Str("target", device.String()).Msg("Target device configured")

	// Generate a unique MQTT Client ID by appending a UUID
	clientID := config.MQTT.ClientID + "-" + uuid.NewString()
	mqttClient := mqtt.NewMqttService(fileClient, log)
	err = mqttClient.Initialize(mqtt.Options{
		Broker:         config.MQTT.Broker,
		ClientID:       clientID,
		CACertificate:  config.MQTT.CACertificate,
		Username:       config.MQTT.Username,
		Password:       config.MQTT.Password,
		ConnectTimeout: config.MQTT.ConnectTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
	}
	defer mqttClient.Disconnect(constants.DefaultMQTTDisconnect)

	network, err := netprobe.New(config.Probe.Method, config.Probe.Timeout, system.NewExecRunner(log))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create network probe")
	}

	t := config.Agent.Timeouts
	agent := agentclient.New(device.AgentURL(), agentclient.Timeouts{
		Ping:       t.Ping,
		Power:      t.Power,
		Clipboard:  t.Clipboard,
		Screenshot: t.Screenshot,
		Stats:      t.Stats,
		Volume:     t.Volume,
	}, log)

	var (
		intentClassifier classifier.Classifier  = classifier.Disabled{}
		transcriber      classifier.Transcriber = classifier.Disabled{}
	)
	if c := config.Classifier; c.Enabled {
		intentClassifier = classifier.NewOpenAIClassifier(classifier.OpenAIConfig{
			APIKey:  c.APIKey,
			BaseURL: c.BaseURL,
			Model:   c.Model,
			Timeout: c.Timeout,
		}, log)
		transcriber = classifier.NewWhisperTranscriber(classifier.WhisperConfig{
			APIKey:   c.APIKey,
			BaseURL:  c.BaseURL,
			Model:    c.TranscriptionModel,
			Language: c.Language,
			Timeout:  c.Timeout,
		}, log)
		log.Info().Str("model", c.Model).Msg("Free-text classification enabled")
	}

	handler, err := relay.New(relay.Options{
		Agent:        agent,
		Network:      network,
		Waker:        device.Sender(),
		Classifier:   intentClassifier,
		Transcriber:  transcriber,
		AllowList:    relay.NewAllowList(config.AllowedUsers),
		Target:       device,
		AgentVersion: config.Agent.VersionConstraint,
		Logger:       log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create relay")
	}

	serviceRegistry := service_registry.NewServiceRegistry(log)
	err = serviceRegistry.RegisterServices([]service_registry.Definition{
		{
			Name:    "relay",
			Enabled: true,
			Constructor: func() (registry.Service, error) {
				return services.NewRelayService(config.MQTT.TopicPrefix, config.MQTT.QOS, config.Workers, mqttClient, handler, log), nil
			},
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register services")
	}

	if err := serviceRegistry.StartServices(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start services")
	}
	log.Info().Str("version", constants.Version).Int("allowed_users", len(config.AllowedUsers)).Msg("All services started successfully")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stopCh
	log.Info().Str("signal", sig.String()).Msg("Shutting down relay")

	if err := serviceRegistry.StopServices(); err != nil {
		log.Error().Err(err).Msg("Some services did not stop cleanly")
	}
	log.Info().Msg("Relay stopped")
}
