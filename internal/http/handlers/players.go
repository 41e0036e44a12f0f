package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/scouthub/internal/domain/player"
	"github.com/geocoder89/scouthub/internal/observability"
	"github.com/gin-gonic/gin"
)

const storeTimeout = 5 * time.Second

type RegistrationService interface {
	Register(ctx context.Context, req player.RegisterRequest) (string, error)
	List(ctx context.Context) ([]player.Registration, error)
}

type PlayersHandler struct {
	svc  RegistrationService
	prom *observability.Prom
}

func NewPlayersHandler(svc RegistrationService, prom *observability.Prom) *PlayersHandler {
	return &PlayersHandler{svc: svc, prom: prom}
}

func (h *PlayersHandler) Register(ctx *gin.Context) {
	var req player.RegisterRequest

	if !BindJSON(ctx, &req) {
		h.count("invalid")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	id, err := h.svc.Register(cctx, req)

	if err != nil {
		switch {
		case errors.Is(err, player.ErrMissingRequiredFields):
			h.count("invalid")
			RespondError(ctx, http.StatusBadRequest, "missing_required_fields", "Missing required fields", fieldDetails(err))
		case errors.Is(err, player.ErrInvalidFields):
			h.count("invalid")
			RespondError(ctx, http.StatusBadRequest, "invalid_fields", "Invalid field values", fieldDetails(err))
		default:
			h.count("error")
			RespondStorageError(ctx, err)
		}
		return
	}

	h.count("created")

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"id":      id,
	})
}

func (h *PlayersHandler) List(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	players, err := h.svc.List(cctx)

	if err != nil {
		RespondStorageError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, players)
}

func (h *PlayersHandler) count(outcome string) {
	if h.prom != nil {
		h.prom.RegistrationsIn.WithLabelValues(outcome).Inc()
	}
}

func fieldDetails(err error) interface{} {
	var verr *player.ValidationError
	if !errors.As(err, &verr) {
		return nil
	}

	fields := make([]FieldError, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, FieldError{
			Field:   f.Field,
			Rule:    f.Rule,
			Param:   f.Param,
			Message: validationMessage(f.Rule, f.Param),
		})
	}

	return gin.H{"fields": fields}
}
