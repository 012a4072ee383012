package behavior

import (
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes engagement across the retained log. It backs the debug
// surface only; nothing in the composition pipeline depends on it.
type Stats struct {
	TotalEvents   int               `json:"totalEvents"`
	CountsByType  map[EventType]int `json:"countsByType"`
	DistinctPaths int               `json:"distinctPaths"`
	MeanDwellMS   float64           `json:"meanDwellMs"`
	MeanScrollPct float64           `json:"meanScrollPct"`
}

// ComputeStats aggregates engagement statistics over the given events.
func ComputeStats(events []Event) Stats {
	s := Stats{
		TotalEvents:  len(events),
		CountsByType: make(map[EventType]int),
	}

	paths := make(map[string]bool)
	var dwells, scrolls []float64

	for _, e := range events {
		s.CountsByType[e.Type]++

		switch e.Type {
		case EventView:
			paths[e.Path] = true
		case EventTime:
			dwells = append(dwells, float64(e.DurationMS))
		case EventScroll:
			scrolls = append(scrolls, float64(e.ScrollPct))
		}
	}

	s.DistinctPaths = len(paths)
	if len(dwells) > 0 {
		s.MeanDwellMS = stat.Mean(dwells, nil)
	}
	if len(scrolls) > 0 {
		s.MeanScrollPct = stat.Mean(scrolls, nil)
	}

	return s
}
