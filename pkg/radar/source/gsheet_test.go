package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/radarsheet/radarsheet-go/pkg/radar"
	"github.com/radarsheet/radarsheet-go/pkg/radar/logging"
)

// fakeSheetsServer serves just enough of the Sheets REST surface for the
// client under test.
func fakeSheetsServer(t *testing.T, metaStatus int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/values/"):
			fmt.Fprint(w, `{"range":"Languages","values":[
				["name","ring","quadrant","isNew","description"],
				["Go","Adopt","languages","TRUE","Boring"],
				["Rust","Trial","languages","false","Fast"]
			]}`)
		case metaStatus != http.StatusOK:
			w.WriteHeader(metaStatus)
			fmt.Fprintf(w, `{"error":{"code":%d,"message":"nope"}}`, metaStatus)
		default:
			fmt.Fprint(w, `{"properties":{"title":"My Radar"},"sheets":[
				{"properties":{"title":"Languages"}},
				{"properties":{"title":"Tools"}}
			]}`)
		}
	}))
}

func staticTokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
}

func newTestClient(server *httptest.Server) *GoogleSheets {
	return NewGoogleSheets("", logging.NewNop(), option.WithEndpoint(server.URL))
}

func TestFetchPublic(t *testing.T) {
	server := fakeSheetsServer(t, http.StatusOK)
	defer server.Close()

	data, err := newTestClient(server).FetchPublic(context.Background(), "abc123", "")
	if err != nil {
		t.Fatalf("FetchPublic failed: %v", err)
	}

	if data.Title != "My Radar" {
		t.Errorf("expected title %q, got %q", "My Radar", data.Title)
	}
	if data.CurrentSheet != "Languages" {
		t.Errorf("expected first tab as current sheet, got %q", data.CurrentSheet)
	}
	if len(data.SheetNames) != 2 {
		t.Errorf("expected 2 tabs, got %v", data.SheetNames)
	}
	if len(data.Named) != 2 {
		t.Fatalf("expected 2 named rows, got %d", len(data.Named))
	}
	if data.Named[0]["name"] != "Go" {
		t.Errorf("unexpected row: %+v", data.Named[0])
	}
	if data.Values != nil {
		t.Error("public reads must deliver named rows")
	}
}

func TestFetchProtectedDeliversPositionalRows(t *testing.T) {
	server := fakeSheetsServer(t, http.StatusOK)
	defer server.Close()

	data, err := newTestClient(server).FetchProtected(context.Background(), "abc123", "Languages", staticTokenSource())
	if err != nil {
		t.Fatalf("FetchProtected failed: %v", err)
	}

	if data.Named != nil {
		t.Error("protected reads must deliver positional rows")
	}
	if len(data.Values) != 2 {
		t.Fatalf("expected 2 positional rows, got %d", len(data.Values))
	}
	if data.Values[0][0] != "Go" {
		t.Errorf("unexpected row: %v", data.Values[0])
	}
}

func TestFetchPublicNotFound(t *testing.T) {
	server := fakeSheetsServer(t, http.StatusNotFound)
	defer server.Close()

	_, err := newTestClient(server).FetchPublic(context.Background(), "missing", "")
	if !errors.Is(err, radar.ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
}

func TestFetchPublicUnknownTab(t *testing.T) {
	server := fakeSheetsServer(t, http.StatusOK)
	defer server.Close()

	_, err := newTestClient(server).FetchPublic(context.Background(), "abc123", "NoSuchTab")
	if !errors.Is(err, radar.ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
}

func TestClassifyGoogleError(t *testing.T) {
	tests := []struct {
		code     int
		expected error
	}{
		{http.StatusNotFound, radar.ErrSheetNotFound},
		{http.StatusGone, radar.ErrSheetNotFound},
		{http.StatusForbidden, radar.ErrForbidden},
		{http.StatusUnauthorized, radar.ErrForbidden},
	}

	for _, tt := range tests {
		err := classifyGoogleError(&googleapi.Error{Code: tt.code}, "metadata")
		if !errors.Is(err, tt.expected) {
			t.Errorf("code %d classified as %v, expected %v", tt.code, err, tt.expected)
		}
	}

	err := classifyGoogleError(errors.New("connection reset"), "values")
	var serr *radar.SourceError
	if !errors.As(err, &serr) {
		t.Errorf("expected SourceError for unclassified failure, got %v", err)
	}
}
