// Package simulator drives a swarm through a complete run.
//
// The run is a single sequential loop: every tick it resolves the previous
// tick's connection attempts, grows the population on schedule, lets every
// peer top up its dials, samples statistics, and hands a read-only snapshot
// to the store and the exporter. A coarse lock around each tick lets the
// HTTP service read consistent state from another goroutine.
package simulator

import (
	"math/rand"
	"strconv"
	"sync"

	"github.com/arvidn/peer-ordering/src/config"
	"github.com/arvidn/peer-ordering/src/store"
	"github.com/arvidn/peer-ordering/src/swarm"
	"github.com/sirupsen/logrus"
)

// DiameterSample is one point of the diameter time series.
type DiameterSample struct {
	Tick     int `json:"tick"`
	Diameter int `json:"diameter"`
}

// RunSummary is the end-of-run output handed to the exporter.
type RunSummary struct {
	Counters  []swarm.TickCounters
	Diameters []DiameterSample
	Ramp      []swarm.RampRow

	// EdgeRanks holds the rank of every established edge at the end of the
	// run, for the rank histogram.
	EdgeRanks []swarm.Rank
}

// Exporter consumes per-tick snapshots and the end-of-run summary. The
// export package provides the graphviz/gnuplot implementation.
type Exporter interface {
	ExportFrame(snap *swarm.TickSnapshot) error
	ExportRun(summary *RunSummary) error
}

// Simulator owns all the simulation state and runs the tick loop.
type Simulator struct {
	coreLock sync.Mutex

	conf      *config.Config
	state     *swarm.State
	oracle    *swarm.PriorityOracle
	discovery *swarm.Discovery
	scheduler *swarm.Scheduler
	admission *swarm.Admission
	stats     *swarm.Stats
	runStore  store.RunStore
	exporter  Exporter

	tick      int
	diameters []DiameterSample

	logger *logrus.Entry
}

// New creates a Simulator from the configuration. The run store is required;
// the exporter may be nil.
func New(conf *config.Config, runStore store.RunStore, exporter Exporter) *Simulator {
	rng := rand.New(rand.NewSource(conf.Seed))
	oracle := swarm.NewPriorityOracle(conf.CacheSize)

	return &Simulator{
		conf:   conf,
		state:  swarm.NewState(),
		oracle: oracle,
		discovery: swarm.NewDiscovery(
			conf.GlobalKnowledge,
			conf.PeersFromTracker,
			rng,
			conf.Logger("discovery"),
		),
		scheduler: swarm.NewScheduler(
			conf.MaxPeers,
			conf.HalfOpenLimit,
			conf.PeerOrdering,
			oracle,
			rng,
			conf.Logger("scheduler"),
		),
		admission: swarm.NewAdmission(
			conf.MaxPeers,
			conf.PeerOrdering,
			oracle,
			conf.Logger("admission"),
		),
		stats:    swarm.NewStats(),
		runStore: runStore,
		exporter: exporter,
		logger:   conf.Logger("simulator"),
	}
}

// Run executes the whole simulation: SwarmSize*3 ticks, then the end-of-run
// export.
func (s *Simulator) Run() error {
	ticks := s.conf.Ticks()

	s.logger.WithFields(logrus.Fields{
		"swarm_size":       s.conf.SwarmSize,
		"max_peers":        s.conf.MaxPeers,
		"half_open_limit":  s.conf.HalfOpenLimit,
		"peer_ordering":    s.conf.PeerOrdering,
		"global_knowledge": s.conf.GlobalKnowledge,
		"seed":             s.conf.Seed,
		"ticks":            ticks,
	}).Info("Starting run")

	for i := 0; i < ticks; i++ {
		if err := s.Step(); err != nil {
			return err
		}
	}

	if s.exporter != nil {
		if err := s.exporter.ExportRun(s.Summary()); err != nil {
			s.logger.WithError(err).Error("Exporting run summary")
		}
	}

	s.logger.WithField("peers", s.state.Len()).Info("Run complete")

	return nil
}

// Step advances the simulation by one tick.
func (s *Simulator) Step() error {
	s.coreLock.Lock()
	defer s.coreLock.Unlock()

	s.tick++
	s.stats.BeginTick()

	s.admission.ResolveTick(s.state, s.stats)

	// one newcomer every other tick until the target population is reached
	if s.tick%2 == 1 && s.state.Len() < s.conf.SwarmSize {
		s.discovery.Join(s.state, s.tick)
	}

	for _, id := range s.state.IDs() {
		s.scheduler.Fill(s.state, s.stats, s.state.Peer(id))
	}

	s.admission.SampleRamp(s.state, s.stats, s.tick)

	snap := swarm.Capture(s.state, s.tick, s.conf.PlotGraphDiameter)
	if snap.HasDiameter {
		s.diameters = append(s.diameters, DiameterSample{
			Tick:     snap.Tick,
			Diameter: snap.Diameter,
		})
	}

	if err := s.runStore.SetSnapshot(snap); err != nil {
		return err
	}

	// export is fire-and-forget: a failed frame never stops the run
	if s.exporter != nil {
		if err := s.exporter.ExportFrame(snap); err != nil {
			s.logger.WithError(err).WithField("tick", snap.Tick).Error("Exporting frame")
		}
	}

	s.stats.EndTick(s.tick)

	return nil
}

// Tick returns the current tick.
func (s *Simulator) Tick() int {
	s.coreLock.Lock()
	defer s.coreLock.Unlock()
	return s.tick
}

// Snapshot captures the current topology. Safe to call while the run loop is
// active.
func (s *Simulator) Snapshot() *swarm.TickSnapshot {
	s.coreLock.Lock()
	defer s.coreLock.Unlock()
	return swarm.Capture(s.state, s.tick, s.conf.PlotGraphDiameter)
}

// Summary builds the end-of-run aggregates.
func (s *Simulator) Summary() *RunSummary {
	s.coreLock.Lock()
	defer s.coreLock.Unlock()

	summary := &RunSummary{
		Counters:  s.stats.Series(),
		Diameters: s.diameters,
		Ramp:      s.stats.RampTable(),
	}

	for _, id := range s.state.IDs() {
		for _, c := range s.state.Peer(id).Established.ToSlice() {
			if id < c {
				summary.EdgeRanks = append(summary.EdgeRanks, s.oracle.Rank(id, c))
			}
		}
	}

	return summary
}

// DiameterSeries returns the diameter time series collected so far.
func (s *Simulator) DiameterSeries() []DiameterSample {
	s.coreLock.Lock()
	defer s.coreLock.Unlock()
	return append([]DiameterSample{}, s.diameters...)
}

// RampTable returns the startup percentile table built from the samples so
// far.
func (s *Simulator) RampTable() []swarm.RampRow {
	s.coreLock.Lock()
	defer s.coreLock.Unlock()
	return s.stats.RampTable()
}

// GetStats returns a coarse picture of the run for the HTTP service.
func (s *Simulator) GetStats() map[string]string {
	s.coreLock.Lock()
	defer s.coreLock.Unlock()

	edges := 0
	for _, id := range s.state.IDs() {
		edges += s.state.Peer(id).Degree()
	}
	edges /= 2

	attempts, rejects, replacements := s.stats.Current()

	return map[string]string{
		"tick":              strconv.Itoa(s.tick),
		"peers":             strconv.Itoa(s.state.Len()),
		"edges":             strconv.Itoa(edges),
		"tick_attempts":     strconv.Itoa(attempts),
		"tick_rejects":      strconv.Itoa(rejects),
		"tick_replacements": strconv.Itoa(replacements),
	}
}
