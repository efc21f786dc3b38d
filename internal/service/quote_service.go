package service

import (
	"context"
	"fmt"

	"github.com/jengaest/estimation-api/internal/costing"
	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/jengaest/estimation-api/internal/mapper"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReferenceReader is the slice of reference data the quote path needs.
type ReferenceReader interface {
	GetProjectType(ctx context.Context, id uint) (*domain.ProjectType, error)
	GetLocation(ctx context.Context, id uint) (*domain.Location, error)
}

// QuoteService computes interactive cost quotes. Nothing here persists;
// the same calculation feeds persisted estimates through their save path.
type QuoteService struct {
	refs   ReferenceReader
	logger *zap.Logger
}

func NewQuoteService(refs ReferenceReader, logger *zap.Logger) *QuoteService {
	return &QuoteService{refs: refs, logger: logger}
}

// Calculate prices a project from its reference data and request inputs.
func (s *QuoteService) Calculate(ctx context.Context, req *domain.CalculateCostRequest) (*domain.QuoteDTO, error) {
	pt, err := s.refs.GetProjectType(ctx, req.ProjectTypeID)
	if err != nil {
		return nil, err
	}
	loc, err := s.refs.GetLocation(ctx, req.LocationID)
	if err != nil {
		return nil, err
	}

	area, err := parseDecimalField("total_area", req.TotalArea)
	if err != nil {
		return nil, err
	}

	input := costing.Input{
		BaseCostPerSqm: pt.BaseCostPerSqm,
		CostMultiplier: loc.CostMultiplier,
		TotalArea:      area,
	}
	if req.ContingencyPercentage != nil {
		pct, err := parseDecimalField("contingency_percentage", *req.ContingencyPercentage)
		if err != nil {
			return nil, err
		}
		input.ContingencyPercentage = &pct
	}
	for i, item := range req.CustomItems {
		quantity, err := parseDecimalField(fmt.Sprintf("custom_items[%d].quantity", i), item.Quantity)
		if err != nil {
			return nil, err
		}
		unitPrice, err := parseDecimalField(fmt.Sprintf("custom_items[%d].unit_price", i), item.UnitPrice)
		if err != nil {
			return nil, err
		}
		input.CustomItems = append(input.CustomItems, costing.LineItem{
			Quantity:  quantity,
			UnitPrice: unitPrice,
		})
	}

	quote, err := costing.Calculate(input)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("quote calculated",
		zap.Uint("project_type_id", pt.ID),
		zap.Uint("location_id", loc.ID),
		zap.String("final_total", quote.FinalTotal.StringFixed(2)),
	)

	dto := mapper.ToQuoteDTO(quote, pt, loc)
	return &dto, nil
}

func parseDecimalField(field, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s is not a number", ErrInvalidInput, field)
	}
	return value, nil
}
