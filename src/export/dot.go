package export

import (
	"bufio"
	"fmt"
	"os"

	"github.com/arvidn/peer-ordering/src/swarm"
)

// writeDot writes one topology frame in graphviz format: every peer as a
// node, established connections as plain edges and, when withAttempts is
// set, in-flight dials as red dotted directed edges that do not constrain
// the layout.
func writeDot(path string, snap *swarm.TickSnapshot, withAttempts bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	fmt.Fprintln(w, "graph swarm {")

	for id := 0; id < snap.Peers; id++ {
		fmt.Fprintf(w, "\"%d\";\n", id)
	}

	for _, edge := range snap.Edges {
		fmt.Fprintf(w, "\"%d\" -- \"%d\" [splines=true];\n", edge.A, edge.B)
	}

	if withAttempts {
		for _, dial := range snap.Dials {
			fmt.Fprintf(w, "\"%d\" -- \"%d\" [dirType=\"forward\", color=red, constraint=false, style=dotted, weight=0];\n",
				dial.From, dial.To)
		}
	}

	fmt.Fprintln(w, "}")

	return w.Flush()
}
