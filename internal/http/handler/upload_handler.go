package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jengaest/estimation-api/internal/auth"
	"github.com/jengaest/estimation-api/internal/config"
	"github.com/jengaest/estimation-api/internal/ingest"
	"github.com/jengaest/estimation-api/internal/service"
	"go.uber.org/zap"
)

type UploadHandler struct {
	uploadService *service.UploadService
	maxUploadSize int64
	logger        *zap.Logger
}

func NewUploadHandler(uploadService *service.UploadService, cfg *config.StorageConfig, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		maxUploadSize: cfg.MaxUploadSizeMB * 1024 * 1024,
		logger:        logger,
	}
}

// Upload godoc
// @Summary Import estimate from spreadsheet
// @Description Upload an Excel workbook and create an estimate from it. Rows that fail validation are reported, not fatal.
// @Tags Estimates
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Excel workbook (.xlsx)"
// @Success 201 {object} domain.UploadResultDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Router /estimates/upload [post]
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field in multipart form")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xlsm" {
		respondWithError(w, http.StatusBadRequest, "Only .xlsx workbooks are supported")
		return
	}

	result, err := h.uploadService.Process(r.Context(), user.UserID, header.Filename, file)
	if err != nil {
		h.handleUploadError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

func (h *UploadHandler) handleUploadError(w http.ResponseWriter, err error) {
	var (
		unrecognized *ingest.UnrecognizedFormatError
		missing      *ingest.MissingFieldsError
		unresolved   *ingest.UnresolvedReferenceError
	)
	switch {
	case errors.As(err, &unrecognized):
		respondWithError(w, http.StatusUnprocessableEntity, unrecognized.Error())
	case errors.As(err, &missing):
		respondFieldErrors(w, http.StatusUnprocessableEntity, "Spreadsheet is missing required fields", missing.Fields)
	case errors.As(err, &unresolved):
		respondFieldErrors(w, http.StatusUnprocessableEntity, "Spreadsheet references unknown data",
			map[string]string{unresolved.Field: "unknown " + unresolved.Field + ": " + unresolved.Value})
	default:
		h.logger.Error("upload handler error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
