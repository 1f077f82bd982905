package swarm

// Diameter estimates the diameter of the established-connection graph: the
// maximum, over all peers, of the greatest shortest-path distance to any
// reachable peer. Unreachable peers are simply not counted, so on a
// disconnected graph this is the largest diameter among the reachable
// neighborhoods rather than infinity.
//
// Cost is O(V*(V+E)), one BFS per source. Fine at simulation scale.
func Diameter(s *State) int {
	diameter := 0

	for _, source := range s.IDs() {
		if ecc := eccentricity(s, source); ecc > diameter {
			diameter = ecc
		}
	}

	return diameter
}

// eccentricity runs a breadth-first flood from source over established edges
// and returns the greatest hop distance reached.
func eccentricity(s *State, source PeerID) int {
	dist := map[PeerID]int{source: 0}
	queue := []PeerID{source}

	max := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		d := dist[cur]
		if d > max {
			max = d
		}

		for _, next := range sortedIDs(s.Peer(cur).Established) {
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = d + 1
			queue = append(queue, next)
		}
	}

	return max
}

// DegreeHistogram returns the number of peers at each established degree.
func DegreeHistogram(s *State) map[int]int {
	hist := make(map[int]int)

	for _, id := range s.IDs() {
		hist[s.Peer(id).Degree()]++
	}

	return hist
}
