package geo

import (
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	t.Run("Identical points", func(t *testing.T) {
		points := [][2]float64{
			{0, 0},
			{43.6777, -79.6248},
			{-33.9399, 151.1753},
			{90, 0},
		}
		for _, p := range points {
			if d := DistanceKm(p[0], p[1], p[0], p[1]); d != 0 {
				t.Errorf("DistanceKm(%v, %v, same) = %v, want 0", p[0], p[1], d)
			}
		}
	})

	t.Run("Symmetry", func(t *testing.T) {
		pairs := [][4]float64{
			{43.6777, -79.6248, 51.4700, -0.4543}, // Toronto - Heathrow
			{0, 0, 0, 10},
			{-45, 170, 45, -170},
		}
		for _, p := range pairs {
			ab := DistanceKm(p[0], p[1], p[2], p[3])
			ba := DistanceKm(p[2], p[3], p[0], p[1])
			if math.Abs(ab-ba) > 1e-9 {
				t.Errorf("DistanceKm not symmetric: %v vs %v", ab, ba)
			}
		}
	})

	t.Run("Never negative", func(t *testing.T) {
		if d := DistanceKm(-90, -180, 90, 180); d < 0 {
			t.Errorf("DistanceKm returned negative distance: %v", d)
		}
	})

	t.Run("Known distance", func(t *testing.T) {
		// One degree of longitude along the equator
		got := DistanceKm(0, 0, 0, 1)
		want := EarthRadiusKm * math.Pi / 180
		if math.Abs(got-want) > 0.01 {
			t.Errorf("DistanceKm(0,0,0,1) = %v, want ~%v", got, want)
		}
	})
}

func TestKmToNm(t *testing.T) {
	cases := []struct {
		km   float64
		want float64
	}{
		{0, 0},
		{1, 0.539957},
		{100, 53.9957},
		{1852, 1852 * 0.539957},
	}
	for _, c := range cases {
		if got := KmToNm(c.km); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("KmToNm(%v) = %v, want %v", c.km, got, c.want)
		}
	}
}

func TestDistanceNm(t *testing.T) {
	km := DistanceKm(0, 0, 0, 5)
	if got, want := DistanceNm(0, 0, 0, 5), KmToNm(km); math.Abs(got-want) > 1e-9 {
		t.Errorf("DistanceNm = %v, want %v", got, want)
	}
}
