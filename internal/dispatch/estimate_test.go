package dispatch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEtaMinutes(t *testing.T) {
	for _, d := range []struct {
		name  string
		dist  float64
		speed float64
		eta   int
	}{
		{"10km_30kmh", 10, 30, 20},
		{"zero_speed_fallback", 10, 0, 20},
		{"negative_speed_fallback", 10, -5, 20},
		{"nan_speed_fallback", 10, math.NaN(), 20},
		{"already_there", 0, 40, 1},
		{"short_hop", 0.1, 60, 1},
		{"highway", 100, 100, 60},
	} {
		t.Run(d.name, func(t *testing.T) {
			assert.Equal(t, d.eta, EtaMinutes(d.dist, d.speed, DefaultSpeedKmh))
		})
	}
}

func TestProgress(t *testing.T) {
	p, ok := Progress(10, 10)
	assert.True(t, ok)
	assert.Equal(t, 0, p)

	p, ok = Progress(10, 0)
	assert.True(t, ok)
	assert.Equal(t, 100, p)

	p, ok = Progress(10, 2.5)
	assert.True(t, ok)
	assert.Equal(t, 75, p)

	p, ok = Progress(10, 15)
	assert.True(t, ok)
	assert.Equal(t, 0, p)

	_, ok = Progress(0, 3)
	assert.False(t, ok)
}
