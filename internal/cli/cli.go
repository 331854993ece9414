package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/scriptforge/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app
// Config, a boolean indicating if the program should exit cleanly, or an
// ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("scriptforge", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
ScriptForge - an action-script compiler and asset-generation engine.

Usage:
  scriptforge [options] SCRIPT_PATH

Arguments:
  SCRIPT_PATH
    Path to a JSON action script.

Options:
`)
		flagSet.PrintDefaults()
	}

	scriptFlag := flagSet.String("script", "", "Path to the action script.")
	sFlag := flagSet.String("s", "", "Path to the action script (shorthand).")
	dryRunFlag := flagSet.Bool("dry-run", false, "Parse and print the graph without executing.")
	cacheDirFlag := flagSet.String("cache-dir", "", "Directory for the persistent asset store. Empty keeps assets in memory.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *scriptFlag != "" {
		path = *scriptFlag
	} else if *sFlag != "" {
		path = *sFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	return &app.Config{
		ScriptPath: path,
		CacheDir:   *cacheDirFlag,
		DryRun:     *dryRunFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
	}, false, nil
}
