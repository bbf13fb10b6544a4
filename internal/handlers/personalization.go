package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/voyagekit/tripcraft-backend/internal/platform/dbctx"
	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
	"github.com/voyagekit/tripcraft-backend/internal/services"
)

type PersonalizationHandler struct {
	log *logger.Logger
	svc services.PersonalizationService
}

func NewPersonalizationHandler(log *logger.Logger, svc services.PersonalizationService) *PersonalizationHandler {
	return &PersonalizationHandler{
		log: log.With("handler", "PersonalizationHandler"),
		svc: svc,
	}
}

func (h *PersonalizationHandler) StartSession(c *gin.Context) {
	var in services.StartSessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	session, err := h.svc.StartSession(dbctx.New(c.Request.Context()), in)
	if err != nil {
		h.log.Error("StartSession failed", "error", err, "trip_id", in.TripID)
		RespondServiceError(c, "start_session_failed", err)
		return
	}
	RespondOK(c, gin.H{"session": session})
}

func (h *PersonalizationHandler) GetDeck(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	deck, err := h.svc.GetDeck(dbctx.New(c.Request.Context()), sessionID)
	if err != nil {
		h.log.Error("GetDeck failed", "error", err, "session_id", sessionID)
		RespondServiceError(c, "load_deck_failed", err)
		return
	}
	RespondOK(c, gin.H{"deck": deck})
}

func (h *PersonalizationHandler) RecordSwipe(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	var in services.SwipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	row, err := h.svc.RecordSwipe(dbctx.New(c.Request.Context()), sessionID, in)
	if err != nil {
		h.log.Error("RecordSwipe failed", "error", err, "session_id", sessionID)
		RespondServiceError(c, "swipe_failed", err)
		return
	}
	RespondOK(c, gin.H{"interaction": row})
}

func (h *PersonalizationHandler) Complete(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	reveal, err := h.svc.Complete(dbctx.New(c.Request.Context()), sessionID)
	if err != nil {
		h.log.Error("Complete failed", "error", err, "session_id", sessionID)
		RespondServiceError(c, "complete_failed", err)
		return
	}
	RespondOK(c, gin.H{"reveal": reveal})
}

func (h *PersonalizationHandler) GetReveal(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	reveal, err := h.svc.GetReveal(dbctx.New(c.Request.Context()), sessionID)
	if err != nil {
		h.log.Error("GetReveal failed", "error", err, "session_id", sessionID)
		RespondServiceError(c, "load_reveal_failed", err)
		return
	}
	RespondOK(c, gin.H{"reveal": reveal})
}

type swapRequest struct {
	MissedActivityID uuid.UUID `json:"missed_activity_id"`
	FittedActivityID uuid.UUID `json:"fitted_activity_id"`
}

func (h *PersonalizationHandler) Swap(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	var in swapRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	result, err := h.svc.Swap(dbctx.New(c.Request.Context()), sessionID, in.MissedActivityID, in.FittedActivityID)
	if err != nil {
		h.log.Error("Swap failed", "error", err, "session_id", sessionID)
		RespondServiceError(c, "swap_failed", err)
		return
	}
	RespondOK(c, result)
}

func (h *PersonalizationHandler) Confirm(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	result, err := h.svc.Confirm(dbctx.New(c.Request.Context()), sessionID)
	if err != nil {
		h.log.Error("Confirm failed", "error", err, "session_id", sessionID)
		RespondServiceError(c, "confirm_failed", err)
		return
	}
	RespondOK(c, result)
}

func (h *PersonalizationHandler) Abandon(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	if err := h.svc.Abandon(dbctx.New(c.Request.Context()), sessionID); err != nil {
		h.log.Error("Abandon failed", "error", err, "session_id", sessionID)
		RespondServiceError(c, "abandon_failed", err)
		return
	}
	RespondOK(c, gin.H{"status": "abandoned"})
}

func (h *PersonalizationHandler) Summary(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	summary, err := h.svc.Summary(dbctx.New(c.Request.Context()), sessionID)
	if err != nil {
		h.log.Error("Summary failed", "error", err, "session_id", sessionID)
		RespondServiceError(c, "load_summary_failed", err)
		return
	}
	RespondOK(c, gin.H{"summary": summary})
}

func (h *PersonalizationHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil || id == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return uuid.Nil, false
	}
	return id, true
}
