package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jengaest/estimation-api/internal/auth"
	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/jengaest/estimation-api/internal/service"
	"go.uber.org/zap"
)

type ShareHandler struct {
	shareService *service.ShareService
	logger       *zap.Logger
}

func NewShareHandler(shareService *service.ShareService, logger *zap.Logger) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
		logger:       logger,
	}
}

// Create godoc
// @Summary Share estimate
// @Description Issue an expiring read-only link for an owned estimate
// @Tags Shares
// @Accept json
// @Produce json
// @Param id path string true "Estimate ID" format(uuid)
// @Param request body domain.ShareEstimateRequest true "Recipient and expiry"
// @Success 201 {object} domain.EstimateShareDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates/{id}/shares [post]
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID")
		return
	}

	var req domain.ShareEstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	share, err := h.shareService.CreateShare(r.Context(), service.ActorFrom(user), id, &req)
	if err != nil {
		h.handleShareError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, share)
}

// List godoc
// @Summary List share links
// @Description Share links issued for an owned estimate
// @Tags Shares
// @Produce json
// @Param id path string true "Estimate ID" format(uuid)
// @Success 200 {array} domain.EstimateShareDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates/{id}/shares [get]
func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID")
		return
	}

	shares, err := h.shareService.ListShares(r.Context(), service.ActorFrom(user), id)
	if err != nil {
		h.handleShareError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, shares)
}

// Revoke godoc
// @Summary Revoke share link
// @Description Deactivate a share link before its expiry
// @Tags Shares
// @Param id path string true "Estimate ID" format(uuid)
// @Param shareId path string true "Share ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates/{id}/shares/{shareId} [delete]
func (h *ShareHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID")
		return
	}
	shareID, err := uuid.Parse(chi.URLParam(r, "shareId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid share ID")
		return
	}

	if err := h.shareService.RevokeShare(r.Context(), service.ActorFrom(user), id, shareID); err != nil {
		h.handleShareError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetShared godoc
// @Summary Get shared estimate
// @Description Resolve a share token to its estimate. No authentication required.
// @Tags Shares
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} domain.EstimateDTO
// @Failure 404 {object} domain.APIError
// @Failure 410 {object} domain.APIError
// @Router /shared/{token} [get]
func (h *ShareHandler) GetShared(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondWithError(w, http.StatusNotFound, "Share not found")
		return
	}

	estimate, err := h.shareService.GetSharedEstimate(r.Context(), token)
	if err != nil {
		h.handleShareError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, estimate)
}

func (h *ShareHandler) handleShareError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEstimateNotFound):
		respondWithError(w, http.StatusNotFound, "Estimate not found")
	case errors.Is(err, service.ErrShareNotFound):
		respondWithError(w, http.StatusNotFound, "Share not found")
	case errors.Is(err, service.ErrShareExpired):
		respondWithError(w, http.StatusGone, "This share link has expired")
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "You do not have access to this estimate")
	default:
		h.logger.Error("share handler error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
