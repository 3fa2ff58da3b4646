// Package resolver drives source acquisition: it picks the strategy the
// locator resolved, recovers from anonymous-read failures through the
// authentication flow, and hands validated results to the rendering
// collaborator.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/oauth2"

	"github.com/radarsheet/radarsheet-go/pkg/radar"
	"github.com/radarsheet/radarsheet-go/pkg/radar/auth"
	"github.com/radarsheet/radarsheet-go/pkg/radar/builder"
	"github.com/radarsheet/radarsheet-go/pkg/radar/locator"
	"github.com/radarsheet/radarsheet-go/pkg/radar/logging"
	"github.com/radarsheet/radarsheet-go/pkg/radar/models"
	"github.com/radarsheet/radarsheet-go/pkg/radar/output"
	"github.com/radarsheet/radarsheet-go/pkg/radar/sheet"
)

// ViewState is one of the closed display states handed to rendering.
type ViewState string

const (
	StateLoading       ViewState = "loading"
	StateMalformedData ViewState = "malformed-data"
	StateNotFound      ViewState = "not-found"
	StateUnauthorized  ViewState = "unauthorized"
	StateFormPrompt    ViewState = "form-prompt"
	StateError         ViewState = "error"
)

const (
	genericMessage  = "Oops! Something went wrong while loading your data. Please try again."
	notFoundMessage = "Oops! We can't find the spreadsheet or file you've entered."
)

// Renderer is the rendering collaborator boundary. The resolver is the only
// component that calls it.
type Renderer interface {
	Loading()
	ShowRadar(title string, r *models.Radar)
	ShowError(state ViewState, message string)
	ShowPrompt()
}

// FileFetcher retrieves a file-backed source (CSV, JSON, workbook).
type FileFetcher interface {
	Fetch(ctx context.Context, src models.Source) (*radar.TableData, error)
}

// SheetFetcher retrieves a provider-hosted spreadsheet.
type SheetFetcher interface {
	FetchPublic(ctx context.Context, id, sheetName string) (*radar.TableData, error)
	FetchProtected(ctx context.Context, id, sheetName string, ts oauth2.TokenSource) (*radar.TableData, error)
}

// Authenticator is the identity-provider collaborator boundary.
type Authenticator interface {
	Login(ctx context.Context, forceAccountPicker bool) (*auth.Identity, error)
	CurrentIdentityLabel() string
}

// Deps wires the resolver's collaborators.
type Deps struct {
	Files     FileFetcher
	Workbooks FileFetcher
	Sheets    SheetFetcher
	Auth      Authenticator
	Renderer  Renderer
	// RequiredColumns overrides sheet.RequiredColumns when non-nil.
	RequiredColumns []string
	Log             *logging.Logger
}

// Resolver is the source-resolution state machine. One ingestion flow is in
// flight at a time; a superseding flow (a switch-account retry) bumps the
// generation counter so a stale continuation can no longer touch the
// renderer.
type Resolver struct {
	files     FileFetcher
	workbooks FileFetcher
	sheets    SheetFetcher
	auth      Authenticator
	render    Renderer
	required  []string
	log       *logging.Logger

	gen atomic.Int64

	mu           sync.Mutex
	lastSheet    models.Source
	hasLastSheet bool
}

// New creates a Resolver.
func New(deps Deps) *Resolver {
	required := deps.RequiredColumns
	if required == nil {
		required = sheet.RequiredColumns()
	}
	return &Resolver{
		files:     deps.Files,
		workbooks: deps.Workbooks,
		sheets:    deps.Sheets,
		auth:      deps.Auth,
		render:    deps.Renderer,
		required:  required,
		log:       deps.Log,
	}
}

// Resolve runs one ingestion attempt for the given navigation reference.
// Nothing propagates out of it: every failure degrades to a display state.
func (r *Resolver) Resolve(ctx context.Context, reference string) {
	gen := r.gen.Add(1)
	defer r.recoverPanic(gen)

	src := locator.Parse(reference)
	r.log.Info("source resolved", "kind", src.Kind)

	switch src.Kind {
	case models.KindFormPrompt:
		r.showPrompt(gen)
	case models.KindCSV, models.KindJSON:
		r.loading(gen)
		r.ingestFile(ctx, gen, r.files, src)
	case models.KindWorkbook:
		r.loading(gen)
		r.ingestFile(ctx, gen, r.workbooks, src)
	case models.KindGoogleSheet:
		r.loading(gen)
		r.resolveSheet(ctx, gen, src)
	}
}

// SwitchAccount forces a fresh login (bypassing any cached session) and
// retries the protected read. It supersedes the prior flow.
func (r *Resolver) SwitchAccount(ctx context.Context) {
	gen := r.gen.Add(1)
	defer r.recoverPanic(gen)

	r.mu.Lock()
	src, ok := r.lastSheet, r.hasLastSheet
	r.mu.Unlock()
	if !ok {
		r.show(gen, StateError, genericMessage)
		return
	}

	r.loading(gen)
	identity, err := r.auth.Login(ctx, true)
	if err != nil {
		r.log.Error("forced login failed", "err", err)
		r.show(gen, StateError, genericMessage)
		return
	}
	r.tryProtected(ctx, gen, src, identity)
}

func (r *Resolver) ingestFile(ctx context.Context, gen int64, fetcher FileFetcher, src models.Source) {
	data, err := fetcher.Fetch(ctx, src)
	if err != nil {
		r.showFailure(gen, err)
		return
	}
	r.finish(gen, data)
}

// resolveSheet starts with an anonymous read. Absence is terminal; any other
// failure is optimistically treated as fixable by logging in.
func (r *Resolver) resolveSheet(ctx context.Context, gen int64, src models.Source) {
	data, err := r.sheets.FetchPublic(ctx, src.SheetID, src.SheetName)
	switch {
	case err == nil:
		r.finish(gen, data)
	case errors.Is(err, radar.ErrSheetNotFound):
		r.show(gen, StateNotFound, notFoundMessage)
	default:
		r.log.Info("anonymous read failed, starting login", "err", err)
		identity, lerr := r.auth.Login(ctx, false)
		if lerr != nil {
			r.log.Error("login failed", "err", lerr)
			r.show(gen, StateError, genericMessage)
			return
		}
		r.tryProtected(ctx, gen, src, identity)
	}
}

func (r *Resolver) tryProtected(ctx context.Context, gen int64, src models.Source, identity *auth.Identity) {
	r.mu.Lock()
	r.lastSheet = src
	r.hasLastSheet = true
	r.mu.Unlock()

	data, err := r.sheets.FetchProtected(ctx, src.SheetID, src.SheetName, identity.TokenSource)
	switch {
	case err == nil:
		r.finish(gen, data)
	case errors.Is(err, radar.ErrForbidden):
		msg := fmt.Sprintf(
			"You are signed in as %s, which does not have access to this sheet. Switch accounts to try again.",
			r.auth.CurrentIdentityLabel())
		r.show(gen, StateUnauthorized, msg)
	default:
		r.log.Error("protected read failed", "err", err)
		r.show(gen, StateError, genericMessage)
	}
}

// finish validates, sanitizes, and builds the radar, then hands it to
// rendering.
func (r *Resolver) finish(gen int64, data *radar.TableData) {
	title, radarModel, err := r.assemble(data)
	if err != nil {
		r.showFailure(gen, err)
		return
	}
	r.showRadar(gen, title, radarModel)
}

func (r *Resolver) assemble(data *radar.TableData) (string, *models.Radar, error) {
	if err := sheet.VerifyHeaders(data.Header, r.required); err != nil {
		return "", nil, err
	}
	if err := sheet.VerifyContent(data.RowCount()); err != nil {
		return "", nil, err
	}

	records := make([]models.BlipRecord, 0, data.RowCount())
	if data.Named != nil {
		for _, row := range data.Named {
			records = append(records, sheet.Sanitize(row))
		}
	} else {
		for _, values := range data.Values {
			records = append(records, sheet.SanitizeFromValues(values, data.Header))
		}
	}

	radarModel, err := builder.Build(records, data.CurrentSheet, siblingSheets(data))
	if err != nil {
		return "", nil, err
	}
	return output.DisplayTitle(data.Title), radarModel, nil
}

// showFailure routes a pipeline error to its display state.
func (r *Resolver) showFailure(gen int64, err error) {
	var mde *radar.MalformedDataError
	switch {
	case errors.As(err, &mde):
		r.show(gen, StateMalformedData, mde.Reason)
	case errors.Is(err, radar.ErrSheetNotFound):
		r.show(gen, StateNotFound, notFoundMessage)
	default:
		r.log.Error("ingestion failed", "err", err)
		r.show(gen, StateError, genericMessage)
	}
}

// siblingSheets lists the discovered tabs other than the current one.
func siblingSheets(data *radar.TableData) []string {
	var out []string
	for _, name := range data.SheetNames {
		if name != data.CurrentSheet {
			out = append(out, name)
		}
	}
	return out
}

// Renderer calls below are gated on the flow generation: a continuation of a
// superseded flow may not overwrite the newer result.

func (r *Resolver) current(gen int64) bool {
	return r.gen.Load() == gen
}

func (r *Resolver) loading(gen int64) {
	if !r.current(gen) {
		return
	}
	r.render.Loading()
}

func (r *Resolver) showPrompt(gen int64) {
	if !r.current(gen) {
		return
	}
	r.render.ShowPrompt()
}

func (r *Resolver) show(gen int64, state ViewState, message string) {
	if !r.current(gen) {
		r.log.Debug("dropping superseded view update", "state", state)
		return
	}
	r.render.ShowError(state, message)
}

func (r *Resolver) showRadar(gen int64, title string, radarModel *models.Radar) {
	if !r.current(gen) {
		r.log.Debug("dropping superseded radar", "title", title)
		return
	}
	r.render.ShowRadar(title, radarModel)
}

func (r *Resolver) recoverPanic(gen int64) {
	if p := recover(); p != nil {
		r.log.Error("ingestion panicked", "panic", p)
		r.show(gen, StateError, genericMessage)
	}
}
