// Package main provides the CLI entry point for radarsheet-go.
package main

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/radarsheet/radarsheet-go/pkg/radar/auth"
	"github.com/radarsheet/radarsheet-go/pkg/radar/config"
	"github.com/radarsheet/radarsheet-go/pkg/radar/logging"
	"github.com/radarsheet/radarsheet-go/pkg/radar/models"
	"github.com/radarsheet/radarsheet-go/pkg/radar/output"
	"github.com/radarsheet/radarsheet-go/pkg/radar/resolver"
	"github.com/radarsheet/radarsheet-go/pkg/radar/source"
)

var (
	outputPath string
	pretty     bool
	sheetName  string
	configPath string
	noInput    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "radarsheet [source]",
		Short: "Build a validated tech-radar model from a tabular source",
		Long: `radarsheet ingests a CSV or JSON file URL, a local xlsx workbook, or a
Google Sheet (public or access-controlled) and emits the validated radar
model as JSON. The source may also be given as a query string, e.g.
"sheetId=...&sheetName=...".`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	rootCmd.Flags().StringVar(&sheetName, "sheet", "", "Sheet/tab name to read")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file path")
	rootCmd.Flags().BoolVar(&noInput, "no-input", false, "Never prompt; fail instead of offering an account switch")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Sync()

	reference := ""
	if len(args) == 1 {
		reference = args[0]
	}
	reference = normalizeReference(reference, sheetName)

	render := &cliRenderer{}
	authn := auth.New(auth.Options{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		Scopes:       cfg.Google.Scopes,
		TokenFile:    cfg.Google.TokenFile,
		CallbackAddr: cfg.Google.CallbackAddr,
	}, log)

	r := resolver.New(resolver.Deps{
		Files:           source.NewFileClient(nil, log),
		Workbooks:       source.NewWorkbookReader(log),
		Sheets:          source.NewGoogleSheets(cfg.Google.APIKey, log),
		Auth:            authn,
		Renderer:        render,
		RequiredColumns: cfg.Columns.Required,
		Log:             log,
	})

	ctx := cmd.Context()
	r.Resolve(ctx, reference)

	for render.state == resolver.StateUnauthorized && !noInput {
		if !promptYes("Switch account and retry? [y/N] ") {
			break
		}
		r.SwitchAccount(ctx)
	}

	if render.state != "" {
		return fmt.Errorf("ingestion ended in state %q", render.state)
	}
	return nil
}

// normalizeReference turns a bare URL, file path, or spreadsheet id into the
// query-string form the locator expects. References that already carry a
// sheetId parameter pass through unchanged.
func normalizeReference(reference, sheetName string) string {
	reference = strings.TrimSpace(reference)
	if reference != "" && !strings.Contains(reference, "sheetId=") {
		reference = "sheetId=" + url.QueryEscape(reference)
	}
	if sheetName != "" && reference != "" {
		reference += "&sheetName=" + url.QueryEscape(sheetName)
	}
	return reference
}

func promptYes(prompt string) bool {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// cliRenderer writes view commands to the terminal: the radar view-model as
// JSON on success, an error view otherwise. An empty state means success.
type cliRenderer struct {
	state resolver.ViewState
}

func (c *cliRenderer) Loading() {
	c.state = resolver.StateLoading
	fmt.Fprintln(os.Stderr, "Loading data...")
}

func (c *cliRenderer) ShowRadar(title string, radarModel *models.Radar) {
	data, err := output.ToJSON(title, radarModel, pretty)
	if err != nil {
		c.state = resolver.StateError
		fmt.Fprintln(os.Stderr, "Error: serialization failed:", err)
		return
	}
	if err := writeOut(data); err != nil {
		c.state = resolver.StateError
		fmt.Fprintln(os.Stderr, "Error: writing output:", err)
		return
	}
	c.state = ""
}

func (c *cliRenderer) ShowError(state resolver.ViewState, message string) {
	c.state = state
	data, err := output.ErrorToJSON(string(state), message, pretty)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", message)
		return
	}
	fmt.Fprintln(os.Stderr, string(data))
}

func (c *cliRenderer) ShowPrompt() {
	c.state = resolver.StateFormPrompt
	fmt.Fprintln(os.Stderr, `No data source given.

Pass a source reference, e.g.:

  radarsheet https://example.com/radar.csv
  radarsheet ./radar.xlsx --sheet Q3
  radarsheet https://docs.google.com/spreadsheets/d/<id>/edit
  radarsheet "sheetId=<id>&sheetName=Languages"`)
}

func writeOut(data []byte) error {
	if outputPath != "" {
		return os.WriteFile(outputPath, data, 0644)
	}
	fmt.Println(string(data))
	return nil
}
