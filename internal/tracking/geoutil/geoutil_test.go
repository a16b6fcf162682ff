package geoutil

import (
	"math"
	"testing"
)

func TestDistanceKMSamePoint(t *testing.T) {
	if d := DistanceKM(-23.5505, -46.6333, -23.5505, -46.6333); d != 0 {
		t.Fatalf("expected 0 for identical points, got %f", d)
	}
}

func TestDistanceKMKnownPairs(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64
		tolerance              float64
	}{
		{"Sao Paulo to Campinas", -23.5505, -46.6333, -22.9099, -47.0626, 83, 5},
		{"Sao Paulo to Rio de Janeiro", -23.5505, -46.6333, -22.9068, -43.1729, 360, 10},
		{"Sao Paulo to Manaus", -23.5505, -46.6333, -3.1190, -60.0217, 2690, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKM(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Fatalf("expected ~%f km, got %f", tt.want, got)
			}
		})
	}
}

func TestDistanceKMSymmetric(t *testing.T) {
	a := DistanceKM(-23.5505, -46.6333, -12.9777, -38.5016)
	b := DistanceKM(-12.9777, -38.5016, -23.5505, -46.6333)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", a, b)
	}
}
