package service

import (
	"context"
	"errors"

	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/jengaest/estimation-api/internal/estimator"
	"go.uber.org/zap"
)

// suggestionClient is the model backend the AI service talks to.
type suggestionClient interface {
	Estimate(ctx context.Context, details estimator.ProjectDetails) (*estimator.Suggestion, error)
}

// AIService produces model-generated cost suggestions for a project
// description. It is optional: when no client is configured every call
// answers ErrEstimatorDisabled.
type AIService struct {
	client  suggestionClient
	enabled bool
	logger  *zap.Logger
}

func NewAIService(client suggestionClient, enabled bool, logger *zap.Logger) *AIService {
	return &AIService{
		client:  client,
		enabled: enabled && client != nil,
		logger:  logger,
	}
}

// Suggest asks the model for a cost analysis of the described project.
func (s *AIService) Suggest(ctx context.Context, req *domain.AISuggestRequest) (*domain.AISuggestionDTO, error) {
	if !s.enabled {
		return nil, ErrEstimatorDisabled
	}

	suggestion, err := s.client.Estimate(ctx, estimator.ProjectDetails{
		BuildingType:       req.BuildingType,
		TotalArea:          req.TotalArea,
		LocationName:       req.LocationName,
		ConstructionType:   req.ConstructionType,
		ProjectDescription: req.ProjectDescription,
	})
	if err != nil {
		if errors.Is(err, estimator.ErrNotConfigured) {
			return nil, ErrEstimatorDisabled
		}
		s.logger.Error("cost suggestion failed",
			zap.String("building_type", req.BuildingType),
			zap.Error(err),
		)
		return nil, err
	}

	return &domain.AISuggestionDTO{
		CostAnalysis:    suggestion.CostAnalysis,
		Breakdown:       suggestion.Breakdown,
		Recommendations: suggestion.Recommendations,
		RiskFactors:     suggestion.RiskFactors,
	}, nil
}
