package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/navmenu-api/internal/models"
	appErrors "github.com/noah-isme/navmenu-api/pkg/errors"
)

func exportFixtures(t *testing.T) (*stubMenuRepo, *stubItemLister) {
	t.Helper()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	menu := &models.Menu{
		ID:        "m1",
		Title:     "Main",
		Locations: pq.StringArray{"main", "footer"},
		Mode:      models.MenuModeSubmenu,
		Type:      models.MenuTypeList,
	}
	menu.Roles = pq.Int64Array{1, 2}
	menu.Operator = models.OperatorAny
	menu.StartDate = &start

	items := &stubItemLister{items: map[string][]models.MenuItem{
		"m1": {
			{ID: "i1", MenuID: "m1", Title: "Home", Type: models.ItemTypeStatic, URL: "/home", Mode: models.MenuModeInline, SortOrder: 1},
		},
	}}
	return newStubMenuRepo(menu), items
}

func TestExportServiceCSV(t *testing.T) {
	menus, items := exportFixtures(t)
	svc := NewExportService(menus, items, zap.NewNop())

	result, err := svc.Export(context.Background(), ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "menus.csv", result.Filename)
	assert.Equal(t, "text/csv", result.ContentType)

	records, err := csv.NewReader(bytes.NewReader(result.Payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Menu", records[0][0])

	menuRow := records[1]
	assert.Equal(t, "Main", menuRow[0])
	assert.Equal(t, "main footer", menuRow[5])
	assert.Equal(t, "1 2", menuRow[7])
	assert.Equal(t, "2026-03-01..", menuRow[11])

	itemRow := records[2]
	assert.Equal(t, "Main", itemRow[0])
	assert.Equal(t, "Home", itemRow[1])
	assert.Equal(t, "/home", itemRow[3])
	assert.Equal(t, "1", itemRow[4])
}

func TestExportServicePDF(t *testing.T) {
	menus, items := exportFixtures(t)
	svc := NewExportService(menus, items, zap.NewNop())

	result, err := svc.Export(context.Background(), ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "menus.pdf", result.Filename)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Payload, []byte("%PDF")))
}

func TestExportServiceUnknownFormat(t *testing.T) {
	menus, items := exportFixtures(t)
	svc := NewExportService(menus, items, zap.NewNop())

	_, err := svc.Export(context.Background(), ExportFormat("xml"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
