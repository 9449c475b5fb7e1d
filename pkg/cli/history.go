package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/funvibe/tycheck/internal/store"
	"github.com/google/uuid"
)

func handleHistory(args []string, e *env) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	var project projectFlags
	project.register(fs)
	limit := fs.Int("n", 10, "number of runs to list")
	runID := fs.String("run", "", "print the diagnostics of this run")
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
	path := cfg.DatabasePath()
	if path == "" {
		e.errorf("no history database configured (set `database` in the config file)")
		return exitUsage
	}
	history, err := store.Open(path)
	if err != nil {
		e.errorf("%v", err)
		return exitDiagnostics
	}
	defer history.Close()
	ctx := context.Background()

	if *runID != "" {
		id, err := uuid.Parse(*runID)
		if err != nil {
			e.errorf("invalid run id %q: %v", *runID, err)
			return exitUsage
		}
		errs, err := history.RunDiagnostics(ctx, id)
		if err != nil {
			e.errorf("%v", err)
			return exitDiagnostics
		}
		printDiagnostics(e.stdout, errs, useColor(cfg.Color, e.stdout))
		return exitOK
	}

	runs, err := history.RecentRuns(ctx, *limit)
	if err != nil {
		e.errorf("%v", err)
		return exitDiagnostics
	}
	w := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tMODULES\tDIAGNOSTICS\tDURATION")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", run.ID, run.StartedAt.Local().Format(time.DateTime),
			run.Modules, run.Diagnostics, run.Duration.Round(time.Microsecond))
	}
	w.Flush()
	return exitOK
}
