package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_IsFreshBasePlayer(t *testing.T) {
	s := New()
	assert.Equal(t, ModeBase, s.Mode)
	assert.Equal(t, 0, s.FreeSpinsRemaining)
	assert.False(t, s.IsBonusContinuation())
}

func TestNew_IsZeroValueEquivalent(t *testing.T) {
	assert.Equal(t, PlayerState{}, *New())
}

func TestIsBonusContinuation(t *testing.T) {
	cases := []struct {
		name     string
		state    PlayerState
		expected bool
	}{
		{"base mode", PlayerState{Mode: ModeBase, FreeSpinsRemaining: 5}, false},
		{"free spins with remaining", PlayerState{Mode: ModeFreeSpins, FreeSpinsRemaining: 3}, true},
		{"free spins with none remaining", PlayerState{Mode: ModeFreeSpins, FreeSpinsRemaining: 0}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.state.IsBonusContinuation())
		})
	}
}
