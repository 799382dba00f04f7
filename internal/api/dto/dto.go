// Package dto defines the wire shapes of the HTTP protocol: GET /init,
// POST /spin, and the shared error envelope.
package dto

import "github.com/slotmachine/backend/internal/game/engine"

const ProtocolVersion = "1.0"

// Configuration is the public, player-facing subset of the game
// configuration returned on every /init call.
type Configuration struct {
	Currency                 string    `json:"currency"`
	AllowedBets              []float64 `json:"allowedBets"`
	EnableBuyFeature         bool      `json:"enableBuyFeature"`
	BuyFeatureCostMultiplier int       `json:"buyFeatureCostMultiplier"`
	EnableTurbo              bool      `json:"enableTurbo"`
	EnableHypeModeAnteBet    bool      `json:"enableHypeModeAnteBet"`
	HypeModeCostIncrease     float64   `json:"hypeModeCostIncrease"`
}

// RestoreState describes an in-progress free-spins bonus a returning
// player should resume. Omitted entirely (null) when there is none.
type RestoreState struct {
	Mode           string `json:"mode"`
	SpinsRemaining int    `json:"spinsRemaining"`
	HeatLevel      int    `json:"heatLevel"`
}

// InitResponse is the full GET /init payload.
type InitResponse struct {
	ProtocolVersion string        `json:"protocolVersion"`
	Configuration   Configuration `json:"configuration"`
	RestoreState    *RestoreState `json:"restoreState"`
}

// SpinRequest is the POST /spin body.
type SpinRequest struct {
	ClientRequestID string  `json:"clientRequestId"`
	BetAmount       float64 `json:"betAmount"`
	Mode            string  `json:"mode"`
	HypeMode        bool    `json:"hypeMode"`
}

const (
	ModeNormal     = "NORMAL"
	ModeBuyFeature = "BUY_FEATURE"
)

// Context carries request-scoped display data that isn't part of the
// outcome itself.
type Context struct {
	Currency string `json:"currency"`
}

// Outcome is the financial summary of a spin, always present on success.
type Outcome struct {
	TotalWin  float64 `json:"totalWin"`
	TotalWinX float64 `json:"totalWinX"`
	IsCapped  bool    `json:"isCapped"`
	CapReason *string `json:"capReason"`
}

// NextState is the public projection of the player's state after the
// spin, enough for the client to render round continuation.
type NextState struct {
	Mode           string `json:"mode"`
	SpinsRemaining int    `json:"spinsRemaining"`
	HeatLevel      int    `json:"heatLevel"`
}

// SpinResponse is the full POST /spin success payload.
type SpinResponse struct {
	ProtocolVersion string          `json:"protocolVersion"`
	RoundID         string          `json:"roundId"`
	Context         Context         `json:"context"`
	Outcome         Outcome         `json:"outcome"`
	Events          []engine.Event  `json:"events"`
	NextState       NextState       `json:"nextState"`
}

// ErrorBody is the protocol error payload nested under "error".
type ErrorBody struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Recoverable bool   `json:"recoverable"`
}

// ErrorResponse is the full error envelope returned on every failure.
type ErrorResponse struct {
	ProtocolVersion string    `json:"protocolVersion"`
	Error           ErrorBody `json:"error"`
}

// HealthResponse is the ambient GET /health payload.
type HealthResponse struct {
	Status     string `json:"status"`
	ConfigHash string `json:"configHash"`
}
