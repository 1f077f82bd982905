package commands

import (
	"os"
	"path/filepath"

	"github.com/arvidn/peer-ordering/src/export"
	"github.com/arvidn/peer-ordering/src/service"
	"github.com/arvidn/peer-ordering/src/simulator"
	"github.com/arvidn/peer-ordering/src/store"
	lfshook "github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRunCmd returns the command that runs a simulation
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run a simulation",
		PreRunE: loadConfig,
		RunE:    runSimulation,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runSimulation(cmd *cobra.Command, args []string) error {
	logger := _config.Logger("swarmsim")

	var runStore store.RunStore
	if _config.Store {
		badgerStore, err := store.NewBadgerStore(_config.CacheSize, _config.DatabaseDir)
		if err != nil {
			logger.WithError(err).Error("Cannot open database")
			return err
		}
		runStore = badgerStore
	} else {
		runStore = store.NewInmemStore(_config.CacheSize)
	}
	defer runStore.Close()

	exporter, err := export.NewExporter(_config)
	if err != nil {
		logger.WithError(err).Error("Cannot initialize exporter")
		return err
	}

	sim := simulator.New(_config, runStore, exporter)

	if !_config.NoService {
		serviceServer := service.NewService(_config.ServiceAddr, sim, _config.Logger("service"))
		go serviceServer.Serve()
	}

	return sim.Run()
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

// AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {

	cmd.Flags().String("datadir", _config.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.LogLevel, "debug, info, warn, error, fatal, panic")

	// Swarm
	cmd.Flags().Int("max-peers", _config.MaxPeers, "Connection limit per peer")
	cmd.Flags().Int("swarm-size", _config.SwarmSize, "Target swarm population")
	cmd.Flags().Int("peers-from-tracker", _config.PeersFromTracker, "Peers in a tracker response")
	cmd.Flags().Int("half-open-limit", _config.HalfOpenLimit, "Outstanding connection attempts per peer")
	cmd.Flags().Bool("peer-ordering", _config.PeerOrdering, "Use the global connection ranking")
	cmd.Flags().Bool("global-knowledge", _config.GlobalKnowledge, "Every peer knows every other peer")
	cmd.Flags().Int64("seed", _config.Seed, "Random seed")

	// Store
	cmd.Flags().Bool("store", _config.Store, "Persist snapshots with badgerDB")
	cmd.Flags().String("db", _config.DatabaseDir, "Database directory")
	cmd.Flags().Int("cache-size", _config.CacheSize, "Number of items in LRU caches")

	// Service
	cmd.Flags().Bool("no-service", _config.NoService, "Disable the HTTP service")
	cmd.Flags().StringP("service-listen", "s", _config.ServiceAddr, "Listen IP:Port for the HTTP service")

	// Export
	cmd.Flags().Bool("plot-graph", _config.PlotGraph, "Render topology frames with sfdp (requires graphviz)")
	cmd.Flags().Bool("plot-rank-histogram", _config.PlotRankHistogram, "Write the edge-rank histogram")
	cmd.Flags().Bool("plot-graph-diameter", _config.PlotGraphDiameter, "Track and write the graph diameter")
	cmd.Flags().Bool("render-attempts", _config.RenderAttempts, "Include connection attempts in frames")
	cmd.Flags().String("plots-dir", _config.PlotsDir, "Directory for plot artifacts")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --db or --plots-dir, this
	// will update the default directories to be inside the new datadir
	_config.SetDataDir(_config.DataDir)

	if err := logToDataDir(); err != nil {
		return err
	}

	_config.Logger("swarmsim").WithFields(logrus.Fields{
		"DataDir":           _config.DataDir,
		"LogLevel":          _config.LogLevel,
		"MaxPeers":          _config.MaxPeers,
		"SwarmSize":         _config.SwarmSize,
		"PeersFromTracker":  _config.PeersFromTracker,
		"HalfOpenLimit":     _config.HalfOpenLimit,
		"PeerOrdering":      _config.PeerOrdering,
		"GlobalKnowledge":   _config.GlobalKnowledge,
		"Seed":              _config.Seed,
		"Store":             _config.Store,
		"ServiceAddr":       _config.ServiceAddr,
		"PlotGraph":         _config.PlotGraph,
		"PlotRankHistogram": _config.PlotRankHistogram,
		"PlotGraphDiameter": _config.PlotGraphDiameter,
		"RenderAttempts":    _config.RenderAttempts,
		"PlotsDir":          _config.PlotsDir,
	}).Debug("RUN")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all
	// other persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/swarmsim.toml (.json, .yaml also work)
	viper.SetConfigName("swarmsim")      // name of config file (without extension)
	viper.AddConfigPath(_config.DataDir) // search root directory

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Logger("swarmsim").Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Logger("swarmsim").Debugf("No config file found in: %s", _config.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from the config file
	return viper.Unmarshal(_config)
}

// logToDataDir tees the run log into [datadir]/swarmsim.log.
func logToDataDir() error {
	if _config.DataDir == "" {
		return nil
	}
	if err := os.MkdirAll(_config.DataDir, 0700); err != nil {
		return err
	}

	logPath := filepath.Join(_config.DataDir, "swarmsim.log")

	hook := lfshook.NewHook(lfshook.PathMap{
		logrus.DebugLevel: logPath,
		logrus.InfoLevel:  logPath,
		logrus.WarnLevel:  logPath,
		logrus.ErrorLevel: logPath,
		logrus.FatalLevel: logPath,
		logrus.PanicLevel: logPath,
	}, &logrus.JSONFormatter{})

	_config.Logger("swarmsim").Logger.Hooks.Add(hook)

	return nil
}
