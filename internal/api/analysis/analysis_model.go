package analysis

import (
	"encoding/json"
)

// Metrics tracked per year.
const (
	MetricTrade     = "trade"
	MetricDefense   = "defense"
	MetricAlliances = "alliances"
)

// Record is one year of analysis data with every metric.
type Record struct {
	Year      int     `json:"year"`
	Trade     float64 `json:"trade"`
	Defense   float64 `json:"defense"`
	Alliances float64 `json:"alliances"`
}

// MetricValue returns the named metric, reporting whether it exists.
func (r Record) MetricValue(metric string) (float64, bool) {
	switch metric {
	case MetricTrade:
		return r.Trade, true
	case MetricDefense:
		return r.Defense, true
	case MetricAlliances:
		return r.Alliances, true
	default:
		return 0, false
	}
}

// MetricPoint is the flat response shape the chart consumes: the year plus a
// single metric keyed by its name, e.g. {"year": 2024, "trade": 95}.
type MetricPoint struct {
	Year   int
	Metric string
	Value  float64
}

func (p MetricPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"year":   p.Year,
		p.Metric: p.Value,
	})
}
