// Package service exposes a read-only HTTP API over a running simulation.
package service

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/arvidn/peer-ordering/src/simulator"
	"github.com/sirupsen/logrus"
)

// Service serves simulation state over HTTP while a run is in progress (or
// after it finished, as long as the process is up).
type Service struct {
	sync.Mutex

	bindAddress string
	sim         *simulator.Simulator
	logger      *logrus.Entry
}

// NewService creates the service and registers its handlers.
func NewService(bindAddress string, sim *simulator.Simulator, logger *logrus.Entry) *Service {
	service := Service{
		bindAddress: bindAddress,
		sim:         sim,
		logger:      logger,
	}

	service.registerHandlers()

	return &service
}

// registerHandlers registers the API handlers with the DefaultServerMux of
// the http package. It is possible that another server in the same process
// is simultaneously using the DefaultServerMux. In which case, the handlers
// will be accessible from both servers.
func (s *Service) registerHandlers() {
	s.logger.Debug("Registering API handlers")
	http.HandleFunc("/stats", s.makeHandler(s.GetStats))
	http.HandleFunc("/graph", s.makeHandler(s.GetGraph))
	http.HandleFunc("/diameter", s.makeHandler(s.GetDiameter))
	http.HandleFunc("/startup", s.makeHandler(s.GetStartup))
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		defer s.Unlock()

		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		fn(w, r)
	}
}

// Serve calls ListenAndServe. This is a blocking call. It is not necessary
// to call Serve when another server has already been started with the
// DefaultServerMux and the same address:port combination.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving API")

	// Use the DefaultServerMux
	err := http.ListenAndServe(s.bindAddress, nil)
	if err != nil {
		s.logger.Error(err)
	}
}

// GetStats returns the coarse run counters.
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := s.sim.GetStats()

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(stats)
}

// GetGraph returns the current topology snapshot.
func (s *Service) GetGraph(w http.ResponseWriter, r *http.Request) {
	snap := s.sim.Snapshot()

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(snap)
}

// GetDiameter returns the diameter time series collected so far.
func (s *Service) GetDiameter(w http.ResponseWriter, r *http.Request) {
	series := s.sim.DiameterSeries()

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(series)
}

// GetStartup returns the startup percentile table.
func (s *Service) GetStartup(w http.ResponseWriter, r *http.Request) {
	table := s.sim.RampTable()

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(table)
}
