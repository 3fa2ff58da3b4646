package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/radarsheet/radarsheet-go/pkg/radar"
	"github.com/radarsheet/radarsheet-go/pkg/radar/logging"
	"github.com/radarsheet/radarsheet-go/pkg/radar/models"
	"github.com/xuri/excelize/v2"
)

// WorkbookReader reads a local xlsx workbook as a radar source. The first
// sheet (or the requested one) supplies the rows; the remaining sheets are
// reported as alternative tabs.
type WorkbookReader struct {
	log *logging.Logger
}

// NewWorkbookReader creates a WorkbookReader.
func NewWorkbookReader(log *logging.Logger) *WorkbookReader {
	return &WorkbookReader{log: log}
}

// Fetch opens the workbook and extracts the requested sheet as named rows.
func (w *WorkbookReader) Fetch(ctx context.Context, src models.Source) (*radar.TableData, error) {
	if err := ctx.Err(); err != nil {
		return nil, radar.NewSourceError("workbook", "open", err)
	}
	if _, err := os.Stat(src.Path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", src.Path, radar.ErrSheetNotFound)
	}

	f, err := excelize.OpenFile(src.Path)
	if err != nil {
		return nil, radar.NewSourceError("workbook", "open", err)
	}
	defer f.Close()

	sheetNames := f.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, fmt.Errorf("%s has no sheets: %w", src.Path, radar.ErrSheetNotFound)
	}

	tab := src.SheetName
	if tab == "" {
		tab = sheetNames[0]
	} else if !containsString(sheetNames, tab) {
		return nil, fmt.Errorf("sheet %q: %w", tab, radar.ErrSheetNotFound)
	}

	rows, err := f.GetRows(tab)
	if err != nil {
		return nil, radar.NewSourceError("workbook", "rows", err)
	}

	w.log.Debug("workbook read", "path", src.Path, "sheet", tab, "rows", len(rows))

	data := &radar.TableData{
		Title:        workbookTitle(src.Path),
		CurrentSheet: tab,
		SheetNames:   sheetNames,
	}
	if len(rows) == 0 {
		return data, nil
	}

	data.Header = trimAll(rows[0])
	data.Named = make([]map[string]string, 0, len(rows)-1)
	for _, rec := range rows[1:] {
		data.Named = append(data.Named, pairRow(data.Header, rec))
	}
	return data, nil
}

// workbookTitle is the workbook file name without its extension.
func workbookTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
