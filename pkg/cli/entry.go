package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/funvibe/tycheck/internal/config"
)

const usage = `Usage: tycheck <command> [flags] [dir]

Commands:
  check     type-check the module tree of a project
  deps      print the module dependency order and import cycles
  history   list recorded check runs, or the diagnostics of one run
  version   print the version
  help      print this message

Run 'tycheck <command> -h' for the flags of a command.
`

// Exit codes.
const (
	exitOK          = 0
	exitDiagnostics = 1
	exitUsage       = 2
)

// env is what a command writes to.
type env struct {
	stdout io.Writer
	stderr io.Writer
	logger *log.Logger
}

func newEnv(stdout, stderr io.Writer) *env {
	return &env{stdout: stdout, stderr: stderr, logger: log.New(stderr, "", 0)}
}

func (e *env) errorf(format string, args ...interface{}) {
	fmt.Fprintf(e.stderr, "Error: "+format+"\n", args...)
}

// Run is the tycheck entry point.
func Run() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	e := newEnv(stdout, stderr)
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}
	switch args[0] {
	case "check":
		return handleCheck(args[1:], e)
	case "deps":
		return handleDeps(args[1:], e)
	case "history":
		return handleHistory(args[1:], e)
	case "version", "-version", "--version":
		fmt.Fprintln(stdout, "tycheck "+config.Version)
		return exitOK
	case "help", "-help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		e.errorf("unknown command %q", args[0])
		fmt.Fprint(stderr, usage)
		return exitUsage
	}
}
