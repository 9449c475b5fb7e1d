package cli

import (
	"flag"
	"fmt"
	"strings"

	"github.com/funvibe/tycheck/internal/analyzer"
	"github.com/funvibe/tycheck/internal/forest"
	"github.com/funvibe/tycheck/internal/modules"
	"github.com/funvibe/tycheck/internal/typesystem"
	"github.com/samber/lo"
)

func handleDeps(args []string, e *env) int {
	fs := flag.NewFlagSet("deps", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	var project projectFlags
	project.register(fs)
	affected := fs.String("affected", "", "print the modules re-checked when this module changes")
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
	sources, err := forest.LoadForest(cfg)
	if err != nil {
		e.errorf("%v", err)
		return exitDiagnostics
	}
	tracker := analyzer.BuildDependencyTracker(sources)

	if *affected != "" {
		ref, err := forest.ParseModulePath(*affected)
		if err != nil {
			e.errorf("%v", err)
			return exitUsage
		}
		for _, m := range tracker.AffectedBy(ref) {
			fmt.Fprintln(e.stdout, m)
		}
		return exitOK
	}

	order, cycles := modules.TopologicalOrder(sources.Refs(), tracker)
	for _, ref := range order {
		deps := tracker.Forward(ref)
		if len(deps) == 0 {
			fmt.Fprintln(e.stdout, ref)
			continue
		}
		fmt.Fprintf(e.stdout, "%s <- %s\n", ref, joinRefs(deps, ", "))
	}
	for _, component := range cycles {
		path := modules.CyclePath(component[0], component, tracker)
		fmt.Fprintf(e.stdout, "cycle: %s\n", joinRefs(path, " -> "))
	}
	if len(cycles) > 0 {
		return exitDiagnostics
	}
	return exitOK
}

func joinRefs(refs []typesystem.ModuleReference, sep string) string {
	return strings.Join(lo.Map(refs, func(ref typesystem.ModuleReference, _ int) string {
		return ref.String()
	}), sep)
}
