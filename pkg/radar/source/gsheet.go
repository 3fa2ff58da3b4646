package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/radarsheet/radarsheet-go/pkg/radar"
	"github.com/radarsheet/radarsheet-go/pkg/radar/logging"
)

// GoogleSheets reads spreadsheets through the provider API. FetchPublic
// performs the anonymous read; FetchProtected re-issues it as an
// authenticated identity.
type GoogleSheets struct {
	apiKey string
	log    *logging.Logger
	// extra client options, used by tests to point at a fake endpoint.
	extra []option.ClientOption
}

// NewGoogleSheets creates a client. apiKey may be empty, in which case the
// anonymous read goes out unauthenticated.
func NewGoogleSheets(apiKey string, log *logging.Logger, extra ...option.ClientOption) *GoogleSheets {
	return &GoogleSheets{apiKey: apiKey, log: log, extra: extra}
}

// FetchPublic attempts an anonymous read of the spreadsheet. Rows come back
// keyed by header name.
func (g *GoogleSheets) FetchPublic(ctx context.Context, id, sheetName string) (*radar.TableData, error) {
	opts := append([]option.ClientOption{}, g.extra...)
	if g.apiKey != "" {
		opts = append(opts, option.WithAPIKey(g.apiKey))
	} else {
		opts = append(opts, option.WithoutAuthentication())
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, radar.NewSourceError("google_sheet", "client", err)
	}
	return g.read(ctx, svc, id, sheetName, false)
}

// FetchProtected re-issues the read as the authenticated identity. Rows come
// back as positional value sequences.
func (g *GoogleSheets) FetchProtected(ctx context.Context, id, sheetName string, ts oauth2.TokenSource) (*radar.TableData, error) {
	opts := append([]option.ClientOption{}, g.extra...)
	opts = append(opts, option.WithTokenSource(ts))
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, radar.NewSourceError("google_sheet", "client", err)
	}
	return g.read(ctx, svc, id, sheetName, true)
}

func (g *GoogleSheets) read(ctx context.Context, svc *sheets.Service, id, sheetName string, positional bool) (*radar.TableData, error) {
	meta, err := svc.Spreadsheets.Get(id).Context(ctx).Do()
	if err != nil {
		return nil, classifyGoogleError(err, "metadata")
	}

	var sheetNames []string
	for _, s := range meta.Sheets {
		if s.Properties != nil {
			sheetNames = append(sheetNames, s.Properties.Title)
		}
	}
	if len(sheetNames) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheets: %w", id, radar.ErrSheetNotFound)
	}

	tab := sheetName
	if tab == "" {
		tab = sheetNames[0]
	} else if !containsString(sheetNames, tab) {
		return nil, fmt.Errorf("sheet %q: %w", tab, radar.ErrSheetNotFound)
	}

	vr, err := svc.Spreadsheets.Values.Get(id, tab).Context(ctx).Do()
	if err != nil {
		return nil, classifyGoogleError(err, "values")
	}

	g.log.Debug("spreadsheet read", "id", id, "sheet", tab,
		"rows", len(vr.Values), "authenticated", positional)

	title := ""
	if meta.Properties != nil {
		title = meta.Properties.Title
	}
	data := &radar.TableData{
		Title:        title,
		CurrentSheet: tab,
		SheetNames:   sheetNames,
	}
	if len(vr.Values) == 0 {
		return data, nil
	}

	data.Header = trimAll(stringifyRow(vr.Values[0]))
	if positional {
		data.Values = make([][]string, 0, len(vr.Values)-1)
		for _, row := range vr.Values[1:] {
			data.Values = append(data.Values, stringifyRow(row))
		}
	} else {
		data.Named = make([]map[string]string, 0, len(vr.Values)-1)
		for _, row := range vr.Values[1:] {
			data.Named = append(data.Named, pairRow(data.Header, stringifyRow(row)))
		}
	}
	return data, nil
}

// classifyGoogleError maps API failures onto the closed taxonomy: 404-class
// to sheet-not-found, 403-class to forbidden, everything else to a logged
// generic source error.
func classifyGoogleError(err error, op string) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound, http.StatusGone:
			return fmt.Errorf("spreadsheet: %w", radar.ErrSheetNotFound)
		case http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("spreadsheet: %w", radar.ErrForbidden)
		}
	}
	return radar.NewSourceError("google_sheet", op, err)
}

func stringifyRow(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = cellString(v)
	}
	return out
}
