package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/arvidn/peer-ordering/src/common"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultBadgerFile is the default name of the folder containing the
	// Badger database of a run.
	DefaultBadgerFile = "badger_db"

	// DefaultPlotsFile is the default name of the folder receiving dot
	// frames and gnuplot data files.
	DefaultPlotsFile = "plots"
)

// Default configuration values.
const (
	DefaultLogLevel         = "debug"
	DefaultMaxPeers         = 10
	DefaultSwarmSize        = 300
	DefaultPeersFromTracker = 40
	DefaultHalfOpenLimit    = 10
	DefaultPeerOrdering     = true
	DefaultGlobalKnowledge  = true
	DefaultSeed             = int64(42)
	DefaultStore            = false
	DefaultCacheSize        = 131072
	DefaultServiceAddr      = "127.0.0.1:8000"
)

// Config contains all the configuration properties of a simulation run.
type Config struct {
	// DataDir is the top-level directory containing configuration and run
	// data.
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// MaxPeers is the maximum number of established plus in-flight
	// connections each peer maintains.
	MaxPeers int `mapstructure:"max-peers"`

	// SwarmSize is the target population. One peer joins every other tick
	// until it is reached, and the run lasts SwarmSize*3 ticks so the
	// topology can settle after the last join.
	SwarmSize int `mapstructure:"swarm-size"`

	// PeersFromTracker caps the random peer sample handed to a newcomer
	// when global knowledge is disabled.
	PeersFromTracker int `mapstructure:"peers-from-tracker"`

	// HalfOpenLimit is the maximum number of unresolved dials a peer may
	// have outstanding.
	HalfOpenLimit int `mapstructure:"half-open-limit"`

	// PeerOrdering enables the global pairwise connection ranking. With it
	// off, every peer accepts connections first-come-first-served, which is
	// the clustering-prone baseline.
	PeerOrdering bool `mapstructure:"peer-ordering"`

	// GlobalKnowledge makes every peer magically aware of every other peer,
	// standing in for DHT and PEX. With it off, newcomers only receive a
	// tracker sample and learn of further peers by being dialed.
	GlobalKnowledge bool `mapstructure:"global-knowledge"`

	// Seed initializes the run's random source. Runs with the same seed and
	// settings produce identical statistics.
	Seed int64 `mapstructure:"seed"`

	// Store activates persistent storage of per-tick snapshots.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	// CacheSize is the max number of items in in-memory caches (pair ranks,
	// recent snapshots).
	CacheSize int `mapstructure:"cache-size"`

	// NoService disables the HTTP inspection service.
	NoService bool `mapstructure:"no-service"`

	// ServiceAddr is the address:port of the optional HTTP service.
	ServiceAddr string `mapstructure:"service-listen"`

	// PlotGraph renders a PNG frame of the topology every tick, which
	// requires graphviz (sfdp) on the system. Dot frames are written
	// regardless.
	PlotGraph bool `mapstructure:"plot-graph"`

	// PlotRankHistogram writes the rank distribution of established edges
	// at the end of the run.
	PlotRankHistogram bool `mapstructure:"plot-rank-histogram"`

	// PlotGraphDiameter enables per-tick diameter analysis and its data
	// file. The analysis is quadratic in the population, so it is the
	// expensive toggle.
	PlotGraphDiameter bool `mapstructure:"plot-graph-diameter"`

	// RenderAttempts includes in-flight connection attempts in the dot
	// frames, as red dotted directed edges.
	RenderAttempts bool `mapstructure:"render-attempts"`

	// PlotsDir is the directory receiving dot frames and gnuplot data
	// files.
	PlotsDir string `mapstructure:"plots-dir"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:          DefaultDataDir(),
		LogLevel:         DefaultLogLevel,
		MaxPeers:         DefaultMaxPeers,
		SwarmSize:        DefaultSwarmSize,
		PeersFromTracker: DefaultPeersFromTracker,
		HalfOpenLimit:    DefaultHalfOpenLimit,
		PeerOrdering:     DefaultPeerOrdering,
		GlobalKnowledge:  DefaultGlobalKnowledge,
		Seed:             DefaultSeed,
		Store:            DefaultStore,
		DatabaseDir:      DefaultDatabaseDir(),
		CacheSize:        DefaultCacheSize,
		ServiceAddr:      DefaultServiceAddr,
		PlotsDir:         DefaultPlotsDir(),
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t)
	return config
}

// SetDataDir sets the top-level directory, and updates the database and
// plots directories if they are currently set to the default values. If they
// are not, the user has explicitely set them to something else, so avoid
// changing them again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
	if c.PlotsDir == DefaultPlotsDir() {
		c.PlotsDir = filepath.Join(dataDir, DefaultPlotsFile)
	}
}

// Ticks returns the total run length.
func (c *Config) Ticks() int {
	return c.SwarmSize * 3
}

// Logger returns a formatted logrus Entry with the given prefix.
func (c *Config) Logger(prefix string) *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
	}
	return c.logger.WithField("prefix", prefix)
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultPlotsDir returns the default path for plot artifacts.
func DefaultPlotsDir() string {
	return filepath.Join(DefaultDataDir(), DefaultPlotsFile)
}

// DefaultDataDir returns the default directory name for top-level swarmsim
// data based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Swarmsim")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Swarmsim")
		} else {
			return filepath.Join(home, ".swarmsim")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
