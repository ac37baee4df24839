package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sunny-JP/hw-ba-cafe/internal/domain"
	"github.com/Sunny-JP/hw-ba-cafe/internal/usecase"
	"github.com/gin-gonic/gin"
)

// tapUsecaser is the subset of TapUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type tapUsecaser interface {
	Submit(ctx context.Context, input usecase.SubmitInput) (*usecase.SubmitResult, error)
	Session(ctx context.Context, profileID string) (*usecase.SessionView, error)
	History(ctx context.Context, profileID string, since time.Time) ([]usecase.HistoryEntry, error)
}

type TapHandler struct {
	tapUsecase tapUsecaser
	logger     *slog.Logger
}

func NewTapHandler(tapUsecase tapUsecaser, logger *slog.Logger) *TapHandler {
	return &TapHandler{tapUsecase: tapUsecase, logger: logger.With("component", "tap_handler")}
}

// optionalTime distinguishes "field absent" from "field explicitly null".
// Ticket slots use null to clear the activation.
type optionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *optionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

type submitTapRequest struct {
	TapTime        *time.Time   `json:"tap_time"`
	Ticket1Time    optionalTime `json:"ticket1_time"`
	Ticket2Time    optionalTime `json:"ticket2_time"`
	SubscriptionID string       `json:"subscription_id"`
}

type submitTapResponse struct {
	RecordedAt time.Time `json:"recorded_at"`
	SessionEnd time.Time `json:"session_end"`
	Notify     bool      `json:"notify"`
}

// POST /tap
// 201 with the session window for a recorded tap, 200 for a ticket-only
// update, 409 when the dedup rule rejects the tap.
func (h *TapHandler) Submit(c *gin.Context) {
	var req submitTapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TapTime == nil && !req.Ticket1Time.Set && !req.Ticket2Time.Set && req.SubscriptionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty submission"})
		return
	}

	input := usecase.SubmitInput{
		ProfileID:      c.GetString("profileID"),
		TapTime:        req.TapTime,
		SubscriptionID: req.SubscriptionID,
	}
	if req.Ticket1Time.Set {
		input.Ticket1 = &usecase.TicketUpdate{ActivatedAt: req.Ticket1Time.Value}
	}
	if req.Ticket2Time.Set {
		input.Ticket2 = &usecase.TicketUpdate{ActivatedAt: req.Ticket2Time.Value}
	}

	result, err := h.tapUsecase.Submit(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateTap) {
			c.JSON(http.StatusConflict, gin.H{"error": errAlreadyTapped})
			return
		}
		h.logger.Error("submit tap", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	if !result.TapRecorded {
		c.Status(http.StatusOK)
		return
	}

	c.JSON(http.StatusCreated, submitTapResponse{
		RecordedAt: result.TappedAt,
		SessionEnd: result.SessionEnd,
		Notify:     result.Notify,
	})
}

type sessionResponse struct {
	LastTap      *time.Time `json:"last_tap,omitempty"`
	SessionEnd   *time.Time `json:"session_end,omitempty"`
	Notify       bool       `json:"notify"`
	NextBoundary time.Time  `json:"next_boundary"`

	Ticket1ReadyAt *time.Time `json:"ticket1_ready_at,omitempty"`
	Ticket2ReadyAt *time.Time `json:"ticket2_ready_at,omitempty"`
}

type historyEntry struct {
	TappedAt   time.Time `json:"tapped_at"`
	SessionEnd time.Time `json:"session_end"`
	Notify     bool      `json:"notify"`
}

type historyResponse struct {
	Taps []historyEntry `json:"taps"`
}

// GET /tap/history?since=<rfc3339>
// Returns the profile's taps oldest first, each with its resolved window.
// Omitting since returns the full history.
func (h *TapHandler) History(c *gin.Context) {
	var since time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be RFC 3339"})
			return
		}
		since = t
	}

	entries, err := h.tapUsecase.History(c.Request.Context(), c.GetString("profileID"), since)
	if err != nil {
		h.logger.Error("load tap history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	resp := historyResponse{Taps: make([]historyEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Taps = append(resp.Taps, historyEntry{
			TappedAt:   e.TappedAt,
			SessionEnd: e.SessionEnd,
			Notify:     e.Notify,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// GET /tap/session
func (h *TapHandler) Session(c *gin.Context) {
	view, err := h.tapUsecase.Session(c.Request.Context(), c.GetString("profileID"))
	if err != nil {
		h.logger.Error("load session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, sessionResponse{
		LastTap:        view.LastTap,
		SessionEnd:     view.SessionEnd,
		Notify:         view.Notify,
		NextBoundary:   view.NextBoundary,
		Ticket1ReadyAt: view.Ticket1ReadyAt,
		Ticket2ReadyAt: view.Ticket2ReadyAt,
	})
}
