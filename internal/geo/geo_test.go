package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want, delta            float64
	}{
		{"same point", 48.85, 2.34, 48.85, 2.34, 0, 1e-9},
		{"paris to london", 48.8566, 2.3522, 51.5074, -0.1278, 343.5, 2},
		{"montreal to quebec", 45.5017, -73.5673, 46.8139, -71.2080, 233, 3},
		{"antipodes", 0, 0, 0, 180, 20015, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.want, got, tt.delta)
			assert.InDelta(t, got, DistanceKm(tt.lat2, tt.lon2, tt.lat1, tt.lon1), 1e-9, "symmetric")
		})
	}
}
