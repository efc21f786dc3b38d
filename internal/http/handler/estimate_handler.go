package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jengaest/estimation-api/internal/auth"
	"github.com/jengaest/estimation-api/internal/costing"
	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/jengaest/estimation-api/internal/repository"
	"github.com/jengaest/estimation-api/internal/service"
	"go.uber.org/zap"
)

type EstimateHandler struct {
	estimateService *service.EstimateService
	logger          *zap.Logger
}

func NewEstimateHandler(estimateService *service.EstimateService, logger *zap.Logger) *EstimateHandler {
	return &EstimateHandler{
		estimateService: estimateService,
		logger:          logger,
	}
}

// List godoc
// @Summary List estimates
// @Description Get paginated list of the caller's estimates with optional filters
// @Tags Estimates
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page (max 100)" default(20)
// @Param status query string false "Filter by status" Enums(draft, pending, approved, rejected)
// @Param project_type_id query int false "Filter by project type"
// @Param location_id query int false "Filter by location"
// @Param search query string false "Match against project name or description"
// @Success 200 {object} domain.EstimateListResponse
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates [get]
func (h *EstimateHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	filter, ok := parseListFilter(w, r)
	if !ok {
		return
	}

	result, err := h.estimateService.List(r.Context(), service.ActorFrom(user), filter, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list estimates", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list estimates")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// parseListFilter reads the shared listing query parameters. On an
// invalid status it writes the error response and reports false.
func parseListFilter(w http.ResponseWriter, r *http.Request) (repository.ListFilter, bool) {
	filter := repository.ListFilter{}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.EstimateStatus(s)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Unknown status: "+s)
			return filter, false
		}
		filter.Status = &status
	}
	if pt := r.URL.Query().Get("project_type_id"); pt != "" {
		if id, err := strconv.ParseUint(pt, 10, 32); err == nil {
			v := uint(id)
			filter.ProjectTypeID = &v
		}
	}
	if loc := r.URL.Query().Get("location_id"); loc != "" {
		if id, err := strconv.ParseUint(loc, 10, 32); err == nil {
			v := uint(id)
			filter.LocationID = &v
		}
	}
	filter.Search = strings.TrimSpace(r.URL.Query().Get("search"))
	return filter, true
}

// Summaries godoc
// @Summary List estimate summaries
// @Description Get a lightweight, unpaginated listing of the caller's estimates
// @Tags Estimates
// @Produce json
// @Param status query string false "Filter by status" Enums(draft, pending, approved, rejected)
// @Param search query string false "Match against project name or description"
// @Success 200 {array} domain.EstimateSummaryDTO
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates/summaries [get]
func (h *EstimateHandler) Summaries(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	filter, ok := parseListFilter(w, r)
	if !ok {
		return
	}

	summaries, err := h.estimateService.Summaries(r.Context(), service.ActorFrom(user), filter)
	if err != nil {
		h.logger.Error("failed to list estimate summaries", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list estimates")
		return
	}

	respondJSON(w, http.StatusOK, summaries)
}

// Create godoc
// @Summary Create estimate
// @Description Create a new estimate from reference data and project inputs
// @Tags Estimates
// @Accept json
// @Produce json
// @Param request body domain.CreateEstimateRequest true "Estimate data"
// @Success 201 {object} domain.EstimateDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates [post]
func (h *EstimateHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	var req domain.CreateEstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	estimate, err := h.estimateService.Create(r.Context(), service.ActorFrom(user), &req)
	if err != nil {
		h.handleEstimateError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/estimates/"+estimate.ID.String())
	respondJSON(w, http.StatusCreated, estimate)
}

// GetByID godoc
// @Summary Get estimate by ID
// @Description Get an estimate with its items and reference data
// @Tags Estimates
// @Accept json
// @Produce json
// @Param id path string true "Estimate ID" format(uuid)
// @Success 200 {object} domain.EstimateDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates/{id} [get]
func (h *EstimateHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID")
		return
	}

	estimate, err := h.estimateService.Get(r.Context(), service.ActorFrom(user), id)
	if err != nil {
		h.handleEstimateError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, estimate)
}

// Update godoc
// @Summary Update estimate
// @Description Update fields of an owned estimate. Changing the total records a revision.
// @Tags Estimates
// @Accept json
// @Produce json
// @Param id path string true "Estimate ID" format(uuid)
// @Param request body domain.UpdateEstimateRequest true "Fields to update"
// @Success 200 {object} domain.EstimateDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates/{id} [patch]
func (h *EstimateHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID")
		return
	}

	var req domain.UpdateEstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	estimate, err := h.estimateService.Update(r.Context(), service.ActorFrom(user), id, &req)
	if err != nil {
		h.handleEstimateError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, estimate)
}

// Delete godoc
// @Summary Delete estimate
// @Description Delete an owned estimate and its items
// @Tags Estimates
// @Param id path string true "Estimate ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates/{id} [delete]
func (h *EstimateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID")
		return
	}

	if err := h.estimateService.Delete(r.Context(), service.ActorFrom(user), id); err != nil {
		h.handleEstimateError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Duplicate godoc
// @Summary Duplicate estimate
// @Description Copy an estimate and its items into a new draft
// @Tags Estimates
// @Produce json
// @Param id path string true "Estimate ID" format(uuid)
// @Success 201 {object} domain.EstimateDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates/{id}/duplicate [post]
func (h *EstimateHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID")
		return
	}

	estimate, err := h.estimateService.Duplicate(r.Context(), service.ActorFrom(user), id)
	if err != nil {
		h.handleEstimateError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/estimates/"+estimate.ID.String())
	respondJSON(w, http.StatusCreated, estimate)
}

// Statistics godoc
// @Summary Estimate statistics
// @Description Aggregate counts and totals over the caller's estimates
// @Tags Estimates
// @Produce json
// @Success 200 {object} domain.StatisticsDTO
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates/statistics [get]
func (h *EstimateHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	stats, err := h.estimateService.Statistics(r.Context(), user.UserID)
	if err != nil {
		h.logger.Error("failed to compute estimate statistics", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to compute statistics")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// Revisions godoc
// @Summary List estimate revisions
// @Description Change history recorded whenever an update moved the total cost
// @Tags Estimates
// @Produce json
// @Param id path string true "Estimate ID" format(uuid)
// @Success 200 {array} domain.EstimateRevisionDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates/{id}/revisions [get]
func (h *EstimateHandler) Revisions(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID")
		return
	}

	revisions, err := h.estimateService.Revisions(r.Context(), service.ActorFrom(user), id)
	if err != nil {
		h.handleEstimateError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, revisions)
}

// Export godoc
// @Summary Export estimate as spreadsheet
// @Description Download the estimate as an Excel workbook in the import format
// @Tags Estimates
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Estimate ID" format(uuid)
// @Success 200 {file} binary
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates/{id}/export [get]
func (h *EstimateHandler) Export(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID")
		return
	}

	data, filename, err := h.estimateService.ExportExcel(r.Context(), service.ActorFrom(user), id)
	if err != nil {
		h.handleEstimateError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// AddItem godoc
// @Summary Add estimate item
// @Description Append a cost line to an owned estimate
// @Tags Estimate Items
// @Accept json
// @Produce json
// @Param id path string true "Estimate ID" format(uuid)
// @Param request body domain.EstimateItemRequest true "Item data"
// @Success 201 {object} domain.EstimateItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates/{id}/items [post]
func (h *EstimateHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID")
		return
	}

	var req domain.EstimateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.estimateService.AddItem(r.Context(), service.ActorFrom(user), id, &req)
	if err != nil {
		h.handleEstimateError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// UpdateItem godoc
// @Summary Update estimate item
// @Description Replace a cost line's fields
// @Tags Estimate Items
// @Accept json
// @Produce json
// @Param id path string true "Estimate ID" format(uuid)
// @Param itemId path string true "Item ID" format(uuid)
// @Param request body domain.EstimateItemRequest true "Item data"
// @Success 200 {object} domain.EstimateItemDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates/{id}/items/{itemId} [put]
func (h *EstimateHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req domain.EstimateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.estimateService.UpdateItem(r.Context(), service.ActorFrom(user), id, itemID, &req)
	if err != nil {
		h.handleEstimateError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// DeleteItem godoc
// @Summary Delete estimate item
// @Description Remove a cost line from an owned estimate
// @Tags Estimate Items
// @Param id path string true "Estimate ID" format(uuid)
// @Param itemId path string true "Item ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates/{id}/items/{itemId} [delete]
func (h *EstimateHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	if err := h.estimateService.DeleteItem(r.Context(), service.ActorFrom(user), id, itemID); err != nil {
		h.handleEstimateError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EstimateHandler) handleEstimateError(w http.ResponseWriter, err error) {
	var invalid *costing.InvalidInputError
	switch {
	case errors.Is(err, service.ErrEstimateNotFound):
		respondWithError(w, http.StatusNotFound, "Estimate not found")
	case errors.Is(err, service.ErrItemNotFound):
		respondWithError(w, http.StatusNotFound, "Estimate item not found")
	case errors.Is(err, service.ErrProjectTypeNotFound):
		respondWithError(w, http.StatusBadRequest, "Project type not found")
	case errors.Is(err, service.ErrLocationNotFound):
		respondWithError(w, http.StatusBadRequest, "Location not found")
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "You do not have access to this estimate")
	case errors.Is(err, service.ErrInvalidStatus):
		respondWithError(w, http.StatusBadRequest, "Unknown estimate status")
	case errors.As(err, &invalid):
		respondFieldErrors(w, http.StatusBadRequest, "Invalid calculation input", map[string]string{invalid.Field: invalid.Reason})
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("estimate handler error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
