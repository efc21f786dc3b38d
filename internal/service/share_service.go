package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jengaest/estimation-api/internal/config"
	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/jengaest/estimation-api/internal/mapper"
	"github.com/jengaest/estimation-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ShareService manages expiring read-only share links for estimates.
type ShareService struct {
	shareRepo    *repository.ShareRepository
	estimateRepo *repository.EstimateRepository
	cfg          *config.Config
	logger       *zap.Logger
	now          func() time.Time
}

func NewShareService(shareRepo *repository.ShareRepository, estimateRepo *repository.EstimateRepository, cfg *config.Config, logger *zap.Logger) *ShareService {
	return &ShareService{
		shareRepo:    shareRepo,
		estimateRepo: estimateRepo,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateShare issues a new share link for an owned estimate. The token
// is a random UUID; expiry defaults from configuration when the request
// does not set one.
func (s *ShareService) CreateShare(ctx context.Context, actor Actor, estimateID uuid.UUID, req *domain.ShareEstimateRequest) (*domain.EstimateShareDTO, error) {
	estimate, err := s.estimateRepo.GetByID(ctx, estimateID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEstimateNotFound
	}
	if err != nil {
		return nil, err
	}
	if !actor.owns(estimate.UserID) {
		return nil, ErrPermissionDenied
	}

	expiryDays := s.cfg.Sharing.DefaultExpiryDays
	if req.ExpiresInDays != nil {
		expiryDays = *req.ExpiresInDays
	}

	share := &domain.EstimateShare{
		EstimateID:      estimateID,
		CreatedByID:     actor.UserID,
		SharedWithEmail: strings.ToLower(strings.TrimSpace(req.Email)),
		SharedWithName:  req.Name,
		AccessToken:     uuid.New().String(),
		ExpiresAt:       s.now().Add(time.Duration(expiryDays) * 24 * time.Hour),
		IsActive:        true,
	}
	if err := s.shareRepo.Create(ctx, share); err != nil {
		return nil, fmt.Errorf("creating share: %w", err)
	}

	s.logger.Info("estimate shared",
		zap.String("estimate_id", estimateID.String()),
		zap.String("shared_with", share.SharedWithEmail),
		zap.Time("expires_at", share.ExpiresAt),
	)

	dto := mapper.ToEstimateShareDTO(share, s.shareURL(share.AccessToken))
	return &dto, nil
}

// GetSharedEstimate resolves a share token to its estimate. Expired or
// revoked links report ErrShareExpired so callers can answer 410.
func (s *ShareService) GetSharedEstimate(ctx context.Context, token string) (*domain.EstimateDTO, error) {
	share, err := s.shareRepo.GetByToken(ctx, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShareNotFound
	}
	if err != nil {
		return nil, err
	}
	if share.Expired(s.now()) {
		return nil, ErrShareExpired
	}
	if share.Estimate == nil {
		return nil, ErrEstimateNotFound
	}
	dto := mapper.ToEstimateDTO(share.Estimate)
	return &dto, nil
}

// ListShares returns the share links issued for an owned estimate.
func (s *ShareService) ListShares(ctx context.Context, actor Actor, estimateID uuid.UUID) ([]domain.EstimateShareDTO, error) {
	estimate, err := s.estimateRepo.GetByID(ctx, estimateID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEstimateNotFound
	}
	if err != nil {
		return nil, err
	}
	if !actor.owns(estimate.UserID) {
		return nil, ErrPermissionDenied
	}

	shares, err := s.shareRepo.ListByEstimate(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	dtos := make([]domain.EstimateShareDTO, 0, len(shares))
	for i := range shares {
		dtos = append(dtos, mapper.ToEstimateShareDTO(&shares[i], s.shareURL(shares[i].AccessToken)))
	}
	return dtos, nil
}

// RevokeShare deactivates a share link.
func (s *ShareService) RevokeShare(ctx context.Context, actor Actor, estimateID, shareID uuid.UUID) error {
	estimate, err := s.estimateRepo.GetByID(ctx, estimateID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrEstimateNotFound
	}
	if err != nil {
		return err
	}
	if !actor.owns(estimate.UserID) {
		return ErrPermissionDenied
	}

	shares, err := s.shareRepo.ListByEstimate(ctx, estimateID)
	if err != nil {
		return err
	}
	for i := range shares {
		if shares[i].ID == shareID {
			return s.shareRepo.Deactivate(ctx, shareID)
		}
	}
	return ErrShareNotFound
}

// CleanupExpired deactivates share links past their expiry. Run from
// the scheduler.
func (s *ShareService) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.shareRepo.DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired share links deactivated", zap.Int64("count", n))
	}
	return n, nil
}

func (s *ShareService) shareURL(token string) string {
	base := strings.TrimRight(s.cfg.App.PublicBaseURL, "/")
	return base + "/api/v1/shared/" + token
}
