package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKathmanduFixture(t *testing.T) {
	// Thamel-ish to Kalimati-ish, the distance the tracking screen shows
	// while a worker crosses central Kathmandu.
	km := HaversineKm(27.7172, 85.3240, 27.7000, 85.3000)
	assert.InDelta(t, 2.2, km, 0.05)

	m := HaversineMeters(27.7172, 85.3240, 27.7000, 85.3000)
	assert.InDelta(t, 2200, m, 50)
}

func TestHaversineZeroDistance(t *testing.T) {
	assert.Zero(t, HaversineKm(27.7, 85.3, 27.7, 85.3))
}

func TestHaversineSymmetry(t *testing.T) {
	a := HaversineKm(27.7172, 85.3240, 27.7000, 85.3000)
	b := HaversineKm(27.7000, 85.3000, 27.7172, 85.3240)
	assert.InDelta(t, a, b, 1e-9)
}

func TestEtaMinutesFromKm(t *testing.T) {
	assert.Equal(t, 10, EtaMinutesFromKm(5.0))
	assert.Equal(t, 11, EtaMinutesFromKm(5.1))
	assert.Equal(t, 1, EtaMinutesFromKm(0.2))
	assert.Equal(t, 0, EtaMinutesFromKm(0))
	assert.Equal(t, 0, EtaMinutesFromKm(-3))
}

func TestValidLatLng(t *testing.T) {
	assert.True(t, ValidLatLng(27.7, 85.3))
	assert.False(t, ValidLatLng(91, 0))
	assert.False(t, ValidLatLng(0, -181))
}
