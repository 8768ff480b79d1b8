package main

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/benmeehan/pcremote/internal/agent"
	"github.com/benmeehan/pcremote/internal/clipboard"
	"github.com/benmeehan/pcremote/internal/constants"
	metrics "github.com/benmeehan/pcremote/internal/metrics_collectors"
	"github.com/benmeehan/pcremote/internal/registry"
	"github.com/benmeehan/pcremote/internal/service_registry"
	"github.com/benmeehan/pcremote/internal/services"
	"github.com/benmeehan/pcremote/internal/system"
	"github.com/benmeehan/pcremote/internal/utils"
	"github.com/benmeehan/pcremote/pkg/file"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
)

func main() {
	configPath := flag.StringP("config", "c", "configs/agent.yaml", "path to the agent configuration file")
	logLevel := flag.String("log-level", "", "override the configured log level")
	flag.Parse()

	// Bootstrap logger until the configuration is known
	log := zerolog.New(os.Stdout).With().Timestamp().Str("component", "agent").Logger()

	// Load configuration from file
	fileClient := file.NewFileService()
	config, err := utils.LoadAgentConfig(*configPath, fileClient)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}
	if *logLevel != "" {
		config.Log.Level = *logLevel
	}

	log, err = utils.NewLogger(config.Log, os.Stdout, "agent")
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid log configuration")
	}

	hostname, err := os.Hostname()
	if err != nil {
		log.Warn().Err(err).Msg("Could not determine host name")
	}

	runner := system.NewExecRunner(log)
	history := clipboard.NewHistory(config.Clipboard.Capacity)
	stats := metrics.NewStatsCollector(
		metrics.NewDefaultRegistry(log, config.Stats.CPUWindow, config.Stats.DiskPath),
		config.Stats.Timeout,
		log,
	)

	handler := agent.NewHandler(agent.Options{
		Power:         system.NewPowerManager(runner, log),
		Mixer:         system.NewCommandMixer(runner),
		Capturer:      system.NewCommandCapturer(runner, config.Screenshot.JPEGQuality),
		Stats:         stats,
		History:       history,
		ShutdownDelay: config.Power.ShutdownDelay,
		Platform:      runtime.GOOS,
		Hostname:      hostname,
		Version:       constants.Version,
		Logger:        log,
	})

	// Create a new service registry to manage services
	serviceRegistry := service_registry.NewServiceRegistry(log)
	err = serviceRegistry.RegisterServices([]service_registry.Definition{
		{
			Name:    "clipboard",
			Enabled: true,
			Constructor: func() (registry.Service, error) {
				return services.NewClipboardService(config.Clipboard.Interval, system.NewOSClipboard(), history, log), nil
			},
		},
		{
			Name:    "http",
			Enabled: true,
			Constructor: func() (registry.Service, error) {
				return services.NewAgentHTTPService(
					config.Server.Addr,
					handler.Routes(),
					config.Server.ReadTimeout,
					config.Server.WriteTimeout,
					config.Server.ShutdownTimeout,
					log,
				), nil
			},
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register services")
	}

	// Start all registered services in the registry
	if err := serviceRegistry.StartServices(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start services")
	}
	log.Info().Str("version", constants.Version).Str("platform", runtime.GOOS).Msg("All services started successfully")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stopCh
	log.Info().Str("signal", sig.String()).Msg("Shutting down agent")

	if err := serviceRegistry.StopServices(); err != nil {
		log.Error().Err(err).Msg("Some services did not stop cleanly")
		os.Exit(1)
	}
	log.Info().Msg("Agent stopped")
}
