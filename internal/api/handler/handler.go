// Package handler adapts fiber requests to orchestrator calls and
// translates *errors.GameError into the protocol's error envelope.
package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/slotmachine/backend/internal/api/dto"
	"github.com/slotmachine/backend/internal/orchestrator"
	"github.com/slotmachine/backend/internal/pkg/ctxutil"
	"github.com/slotmachine/backend/internal/pkg/errors"
	"github.com/slotmachine/backend/internal/pkg/logger"
)

// GameHandler exposes /init and /spin over the orchestrator.
type GameHandler struct {
	orch *orchestrator.Orchestrator
	log  *logger.Logger
}

// NewGameHandler builds a GameHandler.
func NewGameHandler(orch *orchestrator.Orchestrator, log *logger.Logger) *GameHandler {
	return &GameHandler{orch: orch, log: log}
}

// PlayerIDHeader is the header every authenticated-by-identity request
// carries; the core has no session concept of its own.
const PlayerIDHeader = "X-Player-Id"

func playerID(c *fiber.Ctx) (string, error) {
	id := c.Get(PlayerIDHeader)
	if id == "" {
		return "", errors.InvalidRequest("missing " + PlayerIDHeader + " header")
	}
	return id, nil
}

// Init handles GET /init.
func (h *GameHandler) Init(c *fiber.Ctx) error {
	id, err := playerID(c)
	if err != nil {
		return writeError(c, h.log, err)
	}

	resp, err := h.orch.Init(ctxutil.WithTraceInfo(c.Context(), c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(resp)
}

// Spin handles POST /spin.
func (h *GameHandler) Spin(c *fiber.Ctx) error {
	id, err := playerID(c)
	if err != nil {
		return writeError(c, h.log, err)
	}

	var req dto.SpinRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, h.log, errors.InvalidRequest("malformed request body"))
	}

	resp, err := h.orch.Spin(ctxutil.WithTraceInfo(c.Context(), c), id, req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(resp)
}

// Health handles GET /health.
func (h *GameHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{Status: "ok", ConfigHash: h.orch.ConfigHash()})
}

// writeError renders a *errors.GameError as the protocol error envelope,
// logging at a severity matched to the code per the error taxonomy.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	gameErr, ok := err.(*errors.GameError)
	if !ok {
		gameErr = errors.InternalError("unexpected error", err)
	}

	tracedLog := log.WithTrace(c)
	entry := tracedLog.Warn()
	if gameErr.Recoverable() {
		entry = tracedLog.Error()
	}
	entry.
		Str("code", string(gameErr.Code)).
		Str("player_id", c.Get(PlayerIDHeader)).
		Err(gameErr).
		Msg("request failed")

	return c.Status(gameErr.StatusCode()).JSON(dto.ErrorResponse{
		ProtocolVersion: dto.ProtocolVersion,
		Error: dto.ErrorBody{
			Code:        string(gameErr.Code),
			Message:     gameErr.Message,
			Recoverable: gameErr.Recoverable(),
		},
	})
}
