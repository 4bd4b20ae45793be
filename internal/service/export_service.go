package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/navmenu-api/internal/models"
	appErrors "github.com/noah-isme/navmenu-api/pkg/errors"
	"github.com/noah-isme/navmenu-api/pkg/export"
)

// ExportFormat selects the export document type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries the rendered document and its content type.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService dumps the full menu configuration for admin audits.
type ExportService struct {
	menus  menuRepository
	items  menuItemLister
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(menus menuRepository, items menuItemLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		menus:  menus,
		items:  items,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// Export renders the configuration of every menu and item in the requested
// format.
func (s *ExportService) Export(ctx context.Context, format ExportFormat) (*ExportResult, error) {
	dataset, err := s.buildDataset(ctx)
	if err != nil {
		return nil, err
	}

	switch format {
	case ExportFormatCSV:
		payload, err := s.csv.Render(*dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{Filename: "menus.csv", ContentType: "text/csv", Payload: payload}, nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(*dataset, "Menu configuration")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{Filename: "menus.pdf", ContentType: "application/pdf", Payload: payload}, nil
	default:
		return nil, appErrors.Validation(map[string]string{"format": "must be csv or pdf"})
	}
}

func (s *ExportService) buildDataset(ctx context.Context) (*export.Dataset, error) {
	dataset := &export.Dataset{
		Headers: []string{"Menu", "Item", "Type", "URL", "Sort", "Locations", "Mode", "Roles", "Cohorts", "Operator", "Languages", "Window"},
	}

	page := 1
	for {
		menus, total, err := s.menus.List(ctx, models.MenuFilter{Page: page, PageSize: 100})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list menus")
		}
		for _, menu := range menus {
			dataset.Rows = append(dataset.Rows, []string{
				menu.Title, "", string(menu.Type), "", "",
				strings.Join(menu.Locations, " "),
				string(menu.Mode),
				joinInt64(menu.Roles), joinInt64(menu.Cohorts), string(menu.Operator),
				strings.Join(menu.Languages, " "),
				window(menu.VisibilityRules),
			})
			items, err := s.items.ListByMenu(ctx, menu.ID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list menu items")
			}
			for _, item := range items {
				dataset.Rows = append(dataset.Rows, []string{
					menu.Title, item.Title, string(item.Type), item.URL, fmt.Sprintf("%d", item.SortOrder),
					"", string(item.Mode),
					joinInt64(item.Roles), joinInt64(item.Cohorts), string(item.Operator),
					strings.Join(item.Languages, " "),
					window(item.VisibilityRules),
				})
			}
		}
		if page*100 >= total || len(menus) == 0 {
			break
		}
		page++
	}

	return dataset, nil
}

func joinInt64(values []int64) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, " ")
}

func window(rules models.VisibilityRules) string {
	var from, to string
	if rules.StartDate != nil {
		from = rules.StartDate.Format("2006-01-02")
	}
	if rules.EndDate != nil {
		to = rules.EndDate.Format("2006-01-02")
	}
	if from == "" && to == "" {
		return ""
	}
	return from + ".." + to
}
