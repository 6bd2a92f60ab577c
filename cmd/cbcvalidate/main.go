// Command cbcvalidate validates OECD CbC XML reports from the command
// line and prints the validation report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/clearline-labs/cbcvalidate/pkg/config"
	"github.com/clearline-labs/cbcvalidate/pkg/findings"
	"github.com/clearline-labs/cbcvalidate/pkg/observability"
	"github.com/clearline-labs/cbcvalidate/pkg/validation"
	"github.com/clearline-labs/cbcvalidate/pkg/validation/rules"
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the entrypoint, split out for testing.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		usage(stderr)
		return 2
	}

	switch args[1] {
	case "validate":
		return runValidate(args[2:], stdout, stderr)
	case "rules":
		return runRules(stdout)
	case "profile":
		return runProfile(args[2:], stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[1])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `usage: cbcvalidate <command> [flags]

commands:
  validate <file.xml>   validate a CbC report and print the JSON result
  rules                 list the registered rule validators
  profile <code>        show a named validation profile`)
}

func runValidate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		profileCode = fs.String("profile", "", "validation profile code to apply")
		failFast    = fs.Bool("fail-fast", false, "stop at the first critical finding")
		maxIssues   = fs.Int("max-issues", 0, "truncate results after N findings (0 = no limit)")
		minSeverity = fs.String("min-severity", "", "drop findings below this severity")
		skipRules   = fs.String("skip", "", "comma-separated validator IDs to skip")
		noPillar2   = fs.Bool("no-pillar2", false, "disable safe harbour screening")
		testMode    = fs.Bool("test-mode", false, "accept OECD1x test-data indicators")
		otelEnable  = fs.Bool("otel", false, "export traces and metrics via OTLP")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "validate: exactly one XML file is required")
		return 2
	}

	cfg := config.Load()
	logger := newLogger(cfg.LogLevel, stderr)

	opts := validation.DefaultOptions()
	if *profileCode != "" {
		profile, err := config.LoadProfile(cfg.ProfilesDir, *profileCode)
		if err != nil {
			fmt.Fprintf(stderr, "validate: %v\n", err)
			return 2
		}
		opts = profile.Options()
	}
	opts.FailFast = opts.FailFast || *failFast
	if *maxIssues > 0 {
		opts.MaxIssues = *maxIssues
	}
	if *minSeverity != "" {
		opts.MinSeverity = findings.Severity(*minSeverity)
	}
	if *skipRules != "" {
		opts.SkipRules = append(opts.SkipRules, strings.Split(*skipRules, ",")...)
	}
	if *noPillar2 || !cfg.EnablePillar2 {
		opts.EnablePillar2 = false
	}
	opts.TestMode = opts.TestMode || *testMode

	path := fs.Arg(0)
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(stderr, "validate: %v\n", err)
		return 2
	}
	if info.Size() > cfg.MaxFileSize {
		fmt.Fprintf(stderr, "validate: %s exceeds the %d byte size limit\n", path, cfg.MaxFileSize)
		return 2
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "validate: %v\n", err)
		return 2
	}

	ctx := context.Background()
	var provider *observability.Provider
	if *otelEnable {
		provider, err = observability.New(ctx, observability.DefaultConfig())
		if err != nil {
			fmt.Fprintf(stderr, "validate: observability: %v\n", err)
			return 2
		}
		defer provider.Shutdown(ctx)
	}

	engine := validation.NewEngine(rules.Default(), validation.WithLogger(logger))

	var report *findings.ValidationReport
	if provider != nil {
		spanCtx, span := provider.StartSpan(ctx, "cbcvalidate.validate")
		report = engine.Validate(string(raw), info.Name(), opts)
		span.End()
		provider.RecordValidation(spanCtx, report)
	} else {
		report = engine.Validate(string(raw), info.Name(), opts)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(stderr, "validate: encode report: %v\n", err)
		return 2
	}

	if !report.IsValid {
		return 1
	}
	return 0
}

func runRules(stdout io.Writer) int {
	type ruleInfo struct {
		ID          string `json:"id"`
		Category    string `json:"category"`
		Severity    string `json:"default_severity"`
		Enabled     bool   `json:"enabled"`
		Description string `json:"description"`
	}
	var out []ruleInfo
	for _, v := range rules.Default() {
		md := v.Metadata()
		out = append(out, ruleInfo{
			ID:          md.ID,
			Category:    string(md.Category),
			Severity:    string(md.DefaultSeverity),
			Enabled:     md.Enabled,
			Description: md.Description,
		})
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
	return 0
}

func runProfile(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "profile: exactly one profile code is required")
		return 2
	}
	cfg := config.Load()
	profile, err := config.LoadProfile(cfg.ProfilesDir, args[0])
	if err != nil {
		fmt.Fprintf(stderr, "profile: %v\n", err)
		return 2
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(profile)
	return 0
}

func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
