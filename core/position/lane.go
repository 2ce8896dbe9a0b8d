package position

import "hash/fnv"

// laneSlots spreads parallel tracks across a small set of visual offsets.
const laneSlots = 7

// LaneOffset returns a deterministic visual offset in [-0.5, 0.5] for the
// given route and track. Hashing the route keeps re-renders stable; an
// unseeded random offset here would make trains jump between frames.
func LaneOffset(fromStation, toStation string, trackIndex int) float64 {
	h := fnv.New32a()
	h.Write([]byte(fromStation))
	h.Write([]byte{0})
	h.Write([]byte(toStation))
	h.Write([]byte{0, byte(trackIndex)})
	slot := h.Sum32() % laneSlots
	return float64(slot)/float64(laneSlots-1) - 0.5
}
