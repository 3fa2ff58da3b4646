// Package source implements the tabular source collaborators: delimited and
// JSON files fetched over HTTP, local xlsx workbooks, and Google Sheets.
// Every fetch returns either a TableData payload or an error from the closed
// taxonomy in the radar package.
package source

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/radarsheet/radarsheet-go/pkg/radar"
	"github.com/radarsheet/radarsheet-go/pkg/radar/logging"
	"github.com/radarsheet/radarsheet-go/pkg/radar/models"
	"github.com/radarsheet/radarsheet-go/pkg/radar/sheet"
)

// FileClient fetches CSV and JSON radar files over HTTP.
type FileClient struct {
	httpClient *http.Client
	log        *logging.Logger
}

// NewFileClient creates a FileClient. A nil httpClient gets a default with a
// 30s timeout.
func NewFileClient(httpClient *http.Client, log *logging.Logger) *FileClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &FileClient{httpClient: httpClient, log: log}
}

// Fetch retrieves the file source and parses it into named rows.
func (c *FileClient) Fetch(ctx context.Context, src models.Source) (*radar.TableData, error) {
	c.log.Debug("fetching file source", "kind", src.Kind, "url", src.URL)
	switch src.Kind {
	case models.KindCSV:
		return c.fetchCSV(ctx, src.URL)
	case models.KindJSON:
		return c.fetchJSON(ctx, src.URL)
	default:
		return nil, radar.NewSourceError("file", "fetch",
			fmt.Errorf("unsupported source kind %q", src.Kind))
	}
}

func (c *FileClient) fetchCSV(ctx context.Context, rawURL string) (*radar.TableData, error) {
	resp, err := c.get(ctx, rawURL, "csv")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	records, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		return nil, radar.NewSourceError("csv", "parse", err)
	}
	if len(records) == 0 {
		return &radar.TableData{Title: fileTitle(rawURL)}, nil
	}

	header := trimAll(records[0])
	named := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		named = append(named, pairRow(header, rec))
	}

	return &radar.TableData{
		Title:  fileTitle(rawURL),
		Header: header,
		Named:  named,
	}, nil
}

func (c *FileClient) fetchJSON(ctx context.Context, rawURL string) (*radar.TableData, error) {
	resp, err := c.get(ctx, rawURL, "json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var raw []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, radar.NewSourceError("json", "parse", err)
	}
	if len(raw) == 0 {
		return &radar.TableData{Title: fileTitle(rawURL)}, nil
	}

	header := jsonHeader(raw[0])
	named := make([]map[string]string, 0, len(raw))
	for _, obj := range raw {
		row := make(map[string]string, len(obj))
		for k, v := range obj {
			row[strings.TrimSpace(k)] = cellString(v)
		}
		named = append(named, row)
	}

	return &radar.TableData{
		Title:  fileTitle(rawURL),
		Header: header,
		Named:  named,
	}, nil
}

func (c *FileClient) get(ctx context.Context, rawURL, kind string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, radar.NewSourceError(kind, "fetch", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, radar.NewSourceError(kind, "fetch", err)
	}
	switch {
	case resp.StatusCode == http.StatusOK:
		return resp, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", rawURL, radar.ErrSheetNotFound)
	default:
		resp.Body.Close()
		return nil, radar.NewSourceError(kind, "fetch",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}

// jsonHeader derives a header row: the canonical columns present in the
// first record in canonical order, then any extra keys sorted.
func jsonHeader(first map[string]interface{}) []string {
	canonical := []string{
		sheet.ColumnName, sheet.ColumnRing, sheet.ColumnQuadrant,
		sheet.ColumnIsNew, sheet.ColumnTopic, sheet.ColumnDescription,
	}
	known := make(map[string]bool, len(canonical))
	var header []string
	for _, col := range canonical {
		known[col] = true
		if _, ok := first[col]; ok {
			header = append(header, col)
		}
	}
	var extras []string
	for k := range first {
		if !known[k] {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	return append(header, extras...)
}

// cellString renders a JSON cell value the way a spreadsheet cell would read.
func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// pairRow zips a positional record onto the header, leaving missing trailing
// cells blank.
func pairRow(header []string, rec []string) map[string]string {
	row := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(rec) {
			row[h] = rec[i]
		} else {
			row[h] = ""
		}
	}
	return row
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

// fileTitle is the file's base name, e.g. "radar.csv".
func fileTitle(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return path.Base(u.Path)
}
