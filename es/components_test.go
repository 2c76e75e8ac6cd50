package es_test

import (
	"testing"
	"time"

	"github.com/plus3/impstack/es"
	"github.com/plus3/impstack/scene"
	"github.com/stretchr/testify/assert"
)

func TestDecay(t *testing.T) {
	decay := es.NewDecay(epoch, 100*time.Millisecond)

	tests := []struct {
		name      string
		at        time.Duration
		expired   bool
		remaining time.Duration
		percent   float64
	}{
		{"at start", 0, false, 100 * time.Millisecond, 1},
		{"halfway", 50 * time.Millisecond, false, 50 * time.Millisecond, 0.5},
		{"at expiry", 100 * time.Millisecond, true, 0, 0},
		{"after expiry", time.Second, true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := epoch.Add(tt.at)
			assert.Equal(t, tt.expired, decay.IsExpired(now))
			assert.Equal(t, tt.remaining, decay.Remaining(now))
			assert.InDelta(t, tt.percent, decay.PercentRemaining(now), 1e-9)
		})
	}
}

func TestDecayZeroDuration(t *testing.T) {
	decay := es.NewDecay(epoch, 0)

	assert.True(t, decay.IsExpired(epoch))
	assert.Zero(t, decay.PercentRemaining(epoch.Add(-time.Second)))
}

func TestDelay(t *testing.T) {
	components := []any{es.Model{Id: "a"}}
	delay := es.NewDelay(epoch, time.Second, components...)
	components[0] = es.Model{Id: "b"}

	assert.Equal(t, []any{es.Model{Id: "a"}}, delay.Components, "components are copied")
	assert.False(t, delay.IsExpired(epoch.Add(999*time.Millisecond)))
	assert.True(t, delay.IsExpired(epoch.Add(time.Second)))
}

func TestNewPosition(t *testing.T) {
	pos := es.NewPosition(scene.Vec3{X: 1, Y: 2})

	assert.Equal(t, scene.IdentityQuat(), pos.Rotation)
	assert.Contains(t, pos.String(), "Position{")
}
