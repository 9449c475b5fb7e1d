package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/funvibe/tycheck/internal/config"
	"github.com/mattn/go-isatty"
)

// projectFlags are shared by every command that works on a project.
type projectFlags struct {
	configPath string
	color      string
	verbose    bool
}

func (p *projectFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&p.configPath, "config", "", "path to "+config.ConfigFileName+" (default: searched from dir upwards)")
	fs.StringVar(&p.color, "color", "", "color output: auto, always or never")
	fs.BoolVar(&p.verbose, "v", false, "log stage timings")
}

// load finds and reads the project configuration and applies the flag overrides. Without a
// config file the defaults are used with dir as the source root.
func (p *projectFlags) load(dir string) (*config.Config, error) {
	path := p.configPath
	if path == "" {
		found, err := config.FindConfig(dir)
		if err != nil {
			return nil, err
		}
		path = found
	}
	var cfg *config.Config
	if path == "" {
		cfg = config.Default(dir)
	} else {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	switch p.color {
	case "":
	case config.ColorAuto, config.ColorAlways, config.ColorNever:
		cfg.Color = p.color
	default:
		return nil, fmt.Errorf("-color must be one of %s, %s, %s; got %q", config.ColorAuto, config.ColorAlways, config.ColorNever, p.color)
	}
	if p.verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// dirArg returns the single optional directory argument.
func dirArg(fs *flag.FlagSet) (string, error) {
	switch fs.NArg() {
	case 0:
		return ".", nil
	case 1:
		return fs.Arg(0), nil
	default:
		return "", fmt.Errorf("expected at most one directory, got %d arguments", fs.NArg())
	}
}

// useColor decides whether output written to w gets ANSI colors.
func useColor(mode string, w interface{}) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
