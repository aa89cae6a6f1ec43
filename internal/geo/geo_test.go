package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	t.Run("zero distance", func(t *testing.T) {
		assert.Zero(t, Haversine(37.5044, 130.8757, 37.5044, 130.8757))
	})

	t.Run("small latitude step near Ulleung", func(t *testing.T) {
		// 0.0001 degrees of latitude is about 11 meters anywhere on the sphere.
		d := Haversine(37.5044, 130.8757, 37.5045, 130.8757)
		assert.InDelta(t, 11.1, d, 0.5)
	})

	t.Run("dodong to sadong harbor", func(t *testing.T) {
		// Roughly 2.2 km across the island's south coast.
		d := Haversine(37.4897, 130.9069, 37.4747, 130.8885)
		assert.InDelta(t, 2330, d, 120)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := Haversine(37.48, 130.90, 37.52, 130.80)
		b := Haversine(37.52, 130.80, 37.48, 130.90)
		assert.InDelta(t, a, b, 1e-9)
	})
}

func TestNearest(t *testing.T) {
	stops := []Point{
		{Lat: 37.4897, Lon: 130.9069}, // 도동
		{Lat: 37.4747, Lon: 130.8885}, // 사동
		{Lat: 37.5475, Lon: 130.8020}, // 태하
	}

	t.Run("picks the closest stop in range", func(t *testing.T) {
		got := Nearest(stops, 37.4900, 130.9070, 100)
		assert.Equal(t, 0, got)
	})

	t.Run("out of range returns -1", func(t *testing.T) {
		// Nearest stop is hundreds of meters away from this mid-road click.
		got := Nearest(stops, 37.4820, 130.8980, 100)
		assert.Equal(t, -1, got)
	})

	t.Run("empty slice returns -1", func(t *testing.T) {
		assert.Equal(t, -1, Nearest(nil, 37.49, 130.90, 100))
	})

	t.Run("tie keeps the earlier index", func(t *testing.T) {
		twin := []Point{
			{Lat: 37.4900, Lon: 130.9000},
			{Lat: 37.4900, Lon: 130.9000},
		}
		assert.Equal(t, 0, Nearest(twin, 37.4900, 130.9001, 100))
	})
}
