package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"dev.hon.one/nbsync/common"
	"dev.hon.one/nbsync/db"
	"dev.hon.one/nbsync/http"
	"dev.hon.one/nbsync/syncing"
	"dev.hon.one/nbsync/util"
)

var dbReadyTimeout = 10 * time.Second

type flags struct {
	debug      bool
	configPath string
	inputPath  string
	dryRun     bool
	interval   float64
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.WithError(err).Error("Exiting")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cliFlags flags
	command := &cobra.Command{
		Use:   "nbsync",
		Short: "Reconcile collected device facts into NetBox",
		Long: `NBSync reads collected switch facts (hostname, inventory, interfaces and
IPv4 addresses) and creates the matching devices, virtual chassis, interfaces,
VLANs, prefixes and IP addresses in NetBox.

Runs once by default. With a sync interval it keeps running and serves metrics.`,
		Version:       common.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cliFlags)
		},
	}

	command.Flags().BoolVar(&cliFlags.debug, "debug", false, "Show debug messages.")
	command.Flags().StringVar(&cliFlags.configPath, "config", "", "Config file path.")
	command.Flags().StringVar(&cliFlags.inputPath, "input", "", "Device records file path (overrides config).")
	command.Flags().BoolVar(&cliFlags.dryRun, "dry-run", false, "Log NetBox writes instead of sending them.")
	command.Flags().Float64Var(&cliFlags.interval, "interval", 0, "Seconds between runs, 0 for a single run (overrides config).")

	return command
}

func run(cmd *cobra.Command, cliFlags flags) error {
	if cliFlags.debug {
		log.SetLevel(log.TraceLevel)
		log.Info("Debug mode enabled")
	}
	log.Infof("Starting %v version %v by %v", common.AppName, common.AppVersion, common.AppAuthor)

	// Load config
	if err := common.LoadEnvFile(".env"); err != nil {
		return err
	}
	if err := common.LoadConfig(cliFlags.configPath); err != nil {
		return err
	}
	applyFlags(cmd, cliFlags)
	if err := common.ValidateConfig(common.GlobalConfig); err != nil {
		return err
	}

	// Setup internal shutdown mechanism
	shutdownChannel := make(chan os.Signal, 1)
	signal.Notify(shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
	shutdown := util.NewShutdownChannelDistributor(shutdownChannel)

	// Run internal services in background and wait for all to finish
	var waitGroup sync.WaitGroup
	metrics := syncing.NewMetrics()
	dbReady := db.StartClient(&waitGroup, shutdown)

	if common.GlobalConfig.SyncInterval() > 0 {
		if common.GlobalConfig.HTTPEndpoint != "" {
			http.StartServer(&waitGroup, shutdown, metrics.Registry)
		}
		syncing.StartSyncer(&waitGroup, shutdown, metrics)
		waitGroup.Wait()
		return nil
	}

	// Single run, interrupted by the shutdown signal
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shutdownListener := make(chan bool, 1)
	if shutdown.AddListener(shutdownListener) {
		go func() {
			<-shutdownListener
			cancel()
		}()
	}
	waitForDB(ctx, dbReady)
	err := syncing.RunOnce(ctx, metrics)
	if common.GlobalConfig.PushgatewayURL != "" {
		if pushErr := metrics.Push(common.GlobalConfig.PushgatewayURL); pushErr != nil {
			log.WithError(pushErr).Error("Failed to push metrics")
		}
	}
	shutdown.Shutdown()
	waitGroup.Wait()
	return err
}

// waitForDB gives the DB client a bounded time to come up, so the run history is stored.
func waitForDB(ctx context.Context, ready <-chan struct{}) bool {
	waitContext, cancel := context.WithTimeout(ctx, dbReadyTimeout)
	defer cancel()
	if !db.WaitReady(waitContext, ready) {
		log.Warn("Database not ready, run history will not be stored")
		return false
	}
	return true
}

// applyFlags overrides the config with the flags given on the command line.
func applyFlags(cmd *cobra.Command, cliFlags flags) {
	if cmd.Flags().Changed("input") {
		common.GlobalConfig.InputPath = cliFlags.inputPath
	}
	if cmd.Flags().Changed("dry-run") {
		common.GlobalConfig.DryRun = cliFlags.dryRun
	}
	if cmd.Flags().Changed("interval") {
		common.GlobalConfig.SyncIntervalSeconds = cliFlags.interval
	}
}
