package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jengaest/estimation-api/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ExportExcel renders a readable estimate as a spreadsheet. The layout
// matches the upload format, so an exported file can be imported again.
func (s *EstimateService) ExportExcel(ctx context.Context, actor Actor, id uuid.UUID) ([]byte, string, error) {
	estimate, err := s.loadReadable(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}

	data, err := buildEstimateWorkbook(estimate)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("estimate-%s.xlsx", estimate.ID)
	return data, filename, nil
}

func buildEstimateWorkbook(estimate *domain.Estimate) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), "Estimate"); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "#FFFFFF",
			Size:  11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	projectType := ""
	if estimate.ProjectType != nil {
		projectType = estimate.ProjectType.Name
	}
	location := ""
	if estimate.Location != nil {
		location = estimate.Location.Name
	}

	metaHeader := []any{
		"Project Name", "Project Description", "Project Type", "Location",
		"Total Area", "Base Cost Per Sqm", "Location Multiplier", "Contingency Percentage",
	}
	if err := f.SetSheetRow("Estimate", "A1", &metaHeader); err != nil {
		return nil, fmt.Errorf("write metadata header: %w", err)
	}
	metaRow := []any{
		estimate.ProjectName,
		estimate.ProjectDescription,
		projectType,
		location,
		estimate.TotalArea.String(),
		estimate.BaseCostPerSqm.String(),
		estimate.LocationMultiplier.String(),
		estimate.ContingencyPercentage.String(),
	}
	if err := f.SetSheetRow("Estimate", "A2", &metaRow); err != nil {
		return nil, fmt.Errorf("write metadata row: %w", err)
	}
	if err := f.SetCellStyle("Estimate", "A1", "H1", headerStyle); err != nil {
		return nil, fmt.Errorf("style metadata header: %w", err)
	}
	if err := f.SetColWidth("Estimate", "A", "H", 22); err != nil {
		return nil, fmt.Errorf("set metadata col width: %w", err)
	}

	if _, err := f.NewSheet("Items"); err != nil {
		return nil, fmt.Errorf("create items sheet: %w", err)
	}
	itemHeader := []any{"Category", "Name", "Description", "Quantity", "Unit", "Unit Price", "Notes"}
	if err := f.SetSheetRow("Items", "A1", &itemHeader); err != nil {
		return nil, fmt.Errorf("write items header: %w", err)
	}
	if err := f.SetCellStyle("Items", "A1", "G1", headerStyle); err != nil {
		return nil, fmt.Errorf("style items header: %w", err)
	}
	if err := f.SetColWidth("Items", "A", "G", 18); err != nil {
		return nil, fmt.Errorf("set items col width: %w", err)
	}

	for i, item := range estimate.Items {
		row := []any{
			string(item.Category),
			item.Name,
			item.Description,
			item.Quantity.String(),
			item.Unit,
			item.UnitPrice.String(),
			item.Notes,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow("Items", cell, &row); err != nil {
			return nil, fmt.Errorf("write item row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
