package export

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arvidn/peer-ordering/src/config"
	"github.com/arvidn/peer-ordering/src/simulator"
	"github.com/arvidn/peer-ordering/src/swarm"
)

func testExporter(t *testing.T, mutate func(*config.Config)) (*Exporter, string) {
	dir, err := ioutil.TempDir("", "export")
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	conf := config.NewTestConfig(t)
	conf.PlotsDir = dir
	if mutate != nil {
		mutate(conf)
	}

	e, err := NewExporter(conf)
	if err != nil {
		t.Fatal(err)
	}
	return e, dir
}

func readArtifact(t *testing.T, path string) string {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func TestExportFrameDot(t *testing.T) {
	e, dir := testExporter(t, func(conf *config.Config) {
		conf.RenderAttempts = true
	})
	defer os.RemoveAll(dir)

	snap := &swarm.TickSnapshot{
		Tick:  3,
		Peers: 3,
		Edges: []swarm.Edge{{A: 0, B: 1}, {A: 1, B: 2}},
		Dials: []swarm.Dial{{From: 2, To: 0}},
	}

	if err := e.ExportFrame(snap); err != nil {
		t.Fatal(err)
	}

	content := readArtifact(t, filepath.Join(dir, "dots", "frame3.dot"))

	for _, want := range []string{
		"graph swarm {",
		"\"2\";",
		"\"0\" -- \"1\" [splines=true];",
		"\"1\" -- \"2\" [splines=true];",
		"\"2\" -- \"0\" [dirType=\"forward\", color=red, constraint=false, style=dotted, weight=0];",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("dot file missing %q:\n%s", want, content)
		}
	}
}

func TestExportFrameWithoutAttempts(t *testing.T) {
	e, dir := testExporter(t, nil)
	defer os.RemoveAll(dir)

	snap := &swarm.TickSnapshot{
		Tick:  1,
		Peers: 2,
		Edges: []swarm.Edge{{A: 0, B: 1}},
		Dials: []swarm.Dial{{From: 1, To: 0}},
	}

	if err := e.ExportFrame(snap); err != nil {
		t.Fatal(err)
	}

	content := readArtifact(t, filepath.Join(dir, "dots", "frame1.dot"))
	if strings.Contains(content, "dotted") {
		t.Fatalf("attempt edges should be omitted by default:\n%s", content)
	}
}

func TestExportRun(t *testing.T) {
	e, dir := testExporter(t, func(conf *config.Config) {
		conf.PlotGraphDiameter = true
		conf.PlotRankHistogram = true
	})
	defer os.RemoveAll(dir)

	summary := &simulator.RunSummary{
		Counters: []swarm.TickCounters{
			{Tick: 1, Attempts: 4, Rejects: 1},
			{Tick: 2, Attempts: 2, Replacements: 1},
		},
		Diameters: []simulator.DiameterSample{{Tick: 2, Diameter: 3}},
		Ramp: []swarm.RampRow{
			{Bucket: 0, Samples: 2, Min: 1, Max: 2,
				Percentiles: [9]float64{1, 1, 1, 1, 1.5, 2, 2, 2, 2}},
		},
		EdgeRanks: []swarm.Rank{{}},
	}

	if err := e.ExportRun(summary); err != nil {
		t.Fatal(err)
	}

	counters := readArtifact(t, filepath.Join(dir, "connection_attempts.dat"))
	if !strings.Contains(counters, "1 4 1 0\n") || !strings.Contains(counters, "2 2 0 1\n") {
		t.Fatalf("counter series =>\n%s", counters)
	}

	startup := readArtifact(t, filepath.Join(dir, "startup.dat"))
	if !strings.Contains(startup, "0 1 2 1 1 1 1 1.5 2 2 2 2\n") {
		t.Fatalf("startup table =>\n%s", startup)
	}

	diameter := readArtifact(t, filepath.Join(dir, "diameter.dat"))
	if !strings.Contains(diameter, "2 3\n") {
		t.Fatalf("diameter series =>\n%s", diameter)
	}

	// the zero rank normalizes to the bottom of the interval
	ranks := readArtifact(t, filepath.Join(dir, "rank_histogram.dat"))
	if !strings.Contains(ranks, "0\n") {
		t.Fatalf("rank histogram =>\n%s", ranks)
	}
}

func TestExportRunSkipsDisabledFiles(t *testing.T) {
	e, dir := testExporter(t, nil)
	defer os.RemoveAll(dir)

	if err := e.ExportRun(&simulator.RunSummary{}); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"diameter.dat", "rank_histogram.dat"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Fatalf("%s should not be written when its plot is disabled", name)
		}
	}
}
