// Package handlers holds the per-sector data analysis. Every method is pure
// over its inputs: datasets are never mutated and repeated calls on the same
// snapshot yield identical results.
package handlers

import (
	"fmt"
	"math"

	"orchestrateiq/internal/models"
)

// Dashboard exposes the static per-sector dashboard snapshot.
type Dashboard interface {
	Metrics() map[string]interface{}
	Trends() []map[string]interface{}
	Alerts() []map[string]interface{}
}

// ForSector returns the dashboard handler for a sector, false when the
// sector has none (cross_sector has no dashboard of its own).
func ForSector(sector models.Sector) (Dashboard, bool) {
	switch sector {
	case models.SectorHR:
		return &HRHandler{}, true
	case models.SectorSales:
		return &SalesHandler{}, true
	case models.SectorService:
		return &ServiceHandler{}, true
	case models.SectorFinance:
		return &FinanceHandler{}, true
	}
	return nil, false
}

// money renders a float as a comma-grouped whole-dollar figure.
func money(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}

	s := fmt.Sprintf("%d", n)
	var out []byte
	for i, digit := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digit)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
