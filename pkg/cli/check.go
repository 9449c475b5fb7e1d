package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/funvibe/tycheck/internal/analyzer"
	"github.com/funvibe/tycheck/internal/diagnostics"
	"github.com/funvibe/tycheck/internal/forest"
	"github.com/funvibe/tycheck/internal/pipeline"
	"github.com/funvibe/tycheck/internal/store"
	"github.com/google/uuid"
	"github.com/sanity-io/litter"
)

const (
	ansiBold  = "\x1b[1m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

func handleCheck(args []string, e *env) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	var project projectFlags
	project.register(fs)
	dump := fs.Bool("dump", false, "print the checked trees")
	record := fs.String("record", "", "history database to record the run in (overrides the config)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	dir, err := dirArg(fs)
	if err != nil {
		e.errorf("%v", err)
		return exitUsage
	}
	cfg, err := project.load(dir)
	if err != nil {
		e.errorf("%v", err)
		return exitUsage
	}
	if *record != "" {
		cfg.Database = *record
	}

	started := time.Now()
	ctx := pipeline.New(&forest.LoadProcessor{}, &analyzer.TypeCheckProcessor{}).Run(pipeline.NewPipelineContext(cfg))
	if ctx.Failed() {
		e.errorf("%v", ctx.Failure)
		return exitDiagnostics
	}
	if cfg.Verbose {
		for _, timing := range ctx.Timings {
			e.logger.Printf("%-10s %s", timing.Stage, timing.Duration)
		}
	}

	printDiagnostics(e.stdout, ctx.Errors, useColor(cfg.Color, e.stdout))
	if *dump {
		if checked, ok := ctx.Checked.(*analyzer.CheckedForest); ok {
			fmt.Fprintln(e.stdout, dumpOptions.Sdump(checked.Modules))
		}
	}
	if path := cfg.DatabasePath(); path != "" {
		run := &store.Run{
			Session:    uuid.New(),
			StartedAt:  started,
			SourceRoot: cfg.SourceRoot(),
			Modules:    len(ctx.Forest),
			Duration:   time.Since(started),
		}
		if err := recordRun(path, run, ctx.Errors); err != nil {
			e.errorf("%v", err)
			return exitDiagnostics
		}
		if cfg.Verbose {
			e.logger.Printf("recorded run %s in %s", run.ID, path)
		}
	}

	if len(ctx.Errors) > 0 {
		fmt.Fprintf(e.stderr, "Found %d errors in %d modules.\n", len(ctx.Errors), len(ctx.Forest))
		return exitDiagnostics
	}
	fmt.Fprintf(e.stdout, "Checked %d modules, no errors.\n", len(ctx.Forest))
	return exitOK
}

var dumpOptions = litter.Options{StripPackageNames: true}

func recordRun(path string, run *store.Run, errs []*diagnostics.DiagnosticError) error {
	history, err := store.Open(path)
	if err != nil {
		return err
	}
	defer history.Close()
	return history.RecordRun(context.Background(), run, errs)
}

func printDiagnostics(w io.Writer, errs []*diagnostics.DiagnosticError, color bool) {
	for _, err := range errs {
		if !color {
			fmt.Fprintln(w, err.Error())
			continue
		}
		fmt.Fprintf(w, "%s%s:%s:%s %s[%s]%s: %s\n",
			ansiBold, err.Module.FileName(), err.Range, ansiReset,
			ansiRed, err.Code, ansiReset, err.Message)
	}
}
