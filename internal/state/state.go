// Package state defines the per-player state carried between spins.
package state

// Mode is the player's current round mode.
type Mode string

const (
	ModeBase      Mode = "BASE"
	ModeFreeSpins Mode = "FREE_SPINS"
)

// PlayerState is the durable record persisted between spins for a single
// player. Zero value is a fresh BASE-mode player.
type PlayerState struct {
	Mode                   Mode `json:"mode"`
	FreeSpinsRemaining     int  `json:"freeSpinsRemaining"`
	HeatLevel              int  `json:"heatLevel"`
	BonusIsBought          bool `json:"bonusIsBought"`
	BonusContinuationCount int  `json:"bonusContinuationCount"`

	AfterpartyMeter       int  `json:"afterpartyMeter"`
	RageActive            bool `json:"rageActive"`
	RageSpinsLeft         int  `json:"rageSpinsLeft"`
	RageCooldownRemaining int  `json:"rageCooldownRemaining"`

	DeadspinsStreak int `json:"deadspinsStreak"`
	SmallwinsStreak int `json:"smallwinsStreak"`

	SpinsInWindow     int `json:"spinsInWindow"`
	EventsInWindow    int `json:"eventsInWindow"`
	BoostInWindow     int `json:"boostInWindow"`
	ExplosiveInWindow int `json:"explosiveInWindow"`
}

// New returns a fresh BASE-mode player state.
func New() *PlayerState {
	return &PlayerState{Mode: ModeBase}
}

// IsBonusContinuation reports whether a spin arriving against this state
// continues an in-progress free-spins bonus.
func (s *PlayerState) IsBonusContinuation() bool {
	return s.Mode == ModeFreeSpins && s.FreeSpinsRemaining > 0
}
