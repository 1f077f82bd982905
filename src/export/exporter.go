// Package export turns snapshots and run summaries into visual artifacts:
// graphviz frames of the topology, optionally rendered to PNG with sfdp, and
// gnuplot-ready data files for the counter series, the diameter series, the
// startup percentile table and the edge-rank histogram.
package export

import (
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/arvidn/peer-ordering/src/config"
	"github.com/arvidn/peer-ordering/src/simulator"
	"github.com/arvidn/peer-ordering/src/swarm"
	"github.com/sirupsen/logrus"
)

// Subdirectories of the plots dir.
const (
	dotsDir   = "dots"
	framesDir = "frames"
)

// Exporter writes run artifacts under a plots directory. All methods log and
// return errors but never panic; the simulator treats export failures as
// non-fatal.
type Exporter struct {
	plotsDir       string
	renderGraph    bool
	renderAttempts bool
	plotDiameter   bool
	plotRanks      bool
	logger         *logrus.Entry
}

// NewExporter creates the plots directory layout and returns an Exporter
// configured from conf.
func NewExporter(conf *config.Config) (*Exporter, error) {
	for _, dir := range []string{
		conf.PlotsDir,
		filepath.Join(conf.PlotsDir, dotsDir),
		filepath.Join(conf.PlotsDir, framesDir),
	} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
	}

	return &Exporter{
		plotsDir:       conf.PlotsDir,
		renderGraph:    conf.PlotGraph,
		renderAttempts: conf.RenderAttempts,
		plotDiameter:   conf.PlotGraphDiameter,
		plotRanks:      conf.PlotRankHistogram,
		logger:         conf.Logger("export"),
	}, nil
}

// ExportFrame writes the dot file for one tick and, when graph plotting is
// enabled, renders it to PNG with sfdp.
func (e *Exporter) ExportFrame(snap *swarm.TickSnapshot) error {
	dotFile := filepath.Join(e.plotsDir, dotsDir, fmt.Sprintf("frame%d.dot", snap.Tick))

	if err := writeDot(dotFile, snap, e.renderAttempts); err != nil {
		return err
	}

	if !e.renderGraph {
		return nil
	}

	pngFile := filepath.Join(e.plotsDir, framesDir, fmt.Sprintf("frame%d.png", snap.Tick))

	cmd := exec.Command("sfdp", "-o"+pngFile, "-Tpng", dotFile)
	if out, err := cmd.CombinedOutput(); err != nil {
		e.logger.WithError(err).WithField("output", string(out)).Error("Rendering frame")
		return err
	}

	return nil
}

// ExportRun writes the end-of-run data files.
func (e *Exporter) ExportRun(summary *simulator.RunSummary) error {
	if err := e.writeCounters(summary.Counters); err != nil {
		return err
	}

	if err := e.writeStartupTable(summary.Ramp); err != nil {
		return err
	}

	if e.plotDiameter {
		if err := e.writeDiameters(summary.Diameters); err != nil {
			return err
		}
	}

	if e.plotRanks {
		if err := e.writeRanks(summary.EdgeRanks); err != nil {
			return err
		}
	}

	e.logger.WithField("dir", e.plotsDir).Info("Run artifacts written")

	return nil
}

// writeCounters writes the per-tick counter series:
// tick, attempts, rejects, replacements.
func (e *Exporter) writeCounters(series []swarm.TickCounters) error {
	f, err := os.Create(filepath.Join(e.plotsDir, "connection_attempts.dat"))
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintln(f, "# tick attempts rejects replacements")
	for _, c := range series {
		fmt.Fprintf(f, "%d %d %d %d\n", c.Tick, c.Attempts, c.Rejects, c.Replacements)
	}

	return nil
}

func (e *Exporter) writeDiameters(series []simulator.DiameterSample) error {
	f, err := os.Create(filepath.Join(e.plotsDir, "diameter.dat"))
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintln(f, "# tick diameter")
	for _, d := range series {
		fmt.Fprintf(f, "%d %d\n", d.Tick, d.Diameter)
	}

	return nil
}

// writeStartupTable writes one row per age bucket:
// bucket, min, max, 10th through 90th percentile.
func (e *Exporter) writeStartupTable(rows []swarm.RampRow) error {
	f, err := os.Create(filepath.Join(e.plotsDir, "startup.dat"))
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintln(f, "# bucket min max p10 p20 p30 p40 p50 p60 p70 p80 p90")
	for _, r := range rows {
		fmt.Fprintf(f, "%d %d %d", r.Bucket, r.Min, r.Max)
		for _, p := range r.Percentiles {
			fmt.Fprintf(f, " %g", p)
		}
		fmt.Fprintln(f)
	}

	return nil
}

// writeRanks writes one normalized rank per established edge, for
// histogramming. A uniform ranking function produces a flat histogram.
func (e *Exporter) writeRanks(ranks []swarm.Rank) error {
	f, err := os.Create(filepath.Join(e.plotsDir, "rank_histogram.dat"))
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintln(f, "# normalized edge rank")
	for _, r := range ranks {
		fmt.Fprintf(f, "%g\n", normalizeRank(r))
	}

	return nil
}

// normalizeRank maps a rank to [0, 1) using its leading 8 bytes.
func normalizeRank(r swarm.Rank) float64 {
	return float64(binary.BigEndian.Uint64(r[:8])) / float64(1<<64)
}
