// Command inflective installs Wiktionary-derived dictionaries into
// PostgreSQL and serves them over HTTP.
//
// Usage:
//
//	inflective upgrade <language> [--dry-run] [--config FILE]
//	inflective list [--installed | --available] [--config FILE]
//	inflective run [--port N] [--config FILE]
//	inflective version
//
// Exit codes: 0 = success, 1 = error, 2 = usage error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/heartmarshall/inflective/internal/app"
	"github.com/heartmarshall/inflective/internal/app/seeder"
	"github.com/heartmarshall/inflective/internal/config"
	"github.com/heartmarshall/inflective/internal/domain"
	"github.com/heartmarshall/inflective/internal/service/lexicon"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// command is a parsed invocation, ready to run against an App.
type command struct {
	name       string
	configPath string
	lang       string
	dryRun     bool
	port       int
	filter     lexicon.Filter
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd, err := parseArgs(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		usage(stderr)
		return exitUsage
	}

	if cmd.name == "version" {
		fmt.Fprintln(stdout, app.BuildVersion())
		return exitOK
	}

	cfg, err := config.Load(cmd.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitError
	}
	logger := app.NewLogger(cfg.Log)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, explain(err, cfg))
		return exitError
	}
	defer a.Close()

	switch cmd.name {
	case "upgrade":
		err = upgrade(ctx, a, cmd, stdout)
	case "list":
		err = list(ctx, a, cmd.filter, stdout)
	case "run":
		err = a.Serve(ctx, cmd.port)
	}
	if err != nil {
		logger.Error(cmd.name+" failed", slog.String("error", err.Error()))
		fmt.Fprintln(stderr, explain(err, cfg))
		return exitError
	}
	return exitOK
}

func parseArgs(args []string, stderr io.Writer) (command, error) {
	if len(args) == 0 {
		return command{}, errors.New("missing command")
	}

	cmd := command{name: args[0]}
	fs := flag.NewFlagSet(cmd.name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cmd.configPath, "config", "", "YAML config file (default: $CONFIG_PATH or "+config.DefaultPath+")")

	switch cmd.name {
	case "upgrade":
		fs.BoolVar(&cmd.dryRun, "dry-run", false, "fetch and parse the export without writing to the database")
		// Accept the language before or after the flags.
		rest := args[1:]
		if len(rest) > 0 && len(rest[0]) > 0 && rest[0][0] != '-' {
			cmd.lang, rest = rest[0], rest[1:]
		}
		if err := fs.Parse(rest); err != nil {
			return command{}, err
		}
		if cmd.lang == "" && fs.NArg() > 0 {
			cmd.lang = fs.Arg(0)
		}
		if cmd.lang == "" {
			return command{}, errors.New("upgrade: missing language")
		}
	case "list":
		installed := fs.Bool("installed", false, "only installed languages")
		available := fs.Bool("available", false, "only languages not installed yet")
		if err := fs.Parse(args[1:]); err != nil {
			return command{}, err
		}
		switch {
		case *installed && *available:
			return command{}, errors.New("list: --installed and --available are exclusive")
		case *installed:
			cmd.filter = lexicon.FilterInstalled
		case *available:
			cmd.filter = lexicon.FilterNotInstalled
		}
	case "run":
		fs.IntVar(&cmd.port, "port", 0, "listen port (default: server.port from config)")
		if err := fs.Parse(args[1:]); err != nil {
			return command{}, err
		}
		if cmd.port < 0 || cmd.port > 65535 {
			return command{}, fmt.Errorf("run: port must be in 1..65535 (got %d)", cmd.port)
		}
	case "version":
	case "help", "-h", "--help":
		return command{}, flag.ErrHelp
	default:
		return command{}, fmt.Errorf("unknown command %q", cmd.name)
	}
	return cmd, nil
}

func upgrade(ctx context.Context, a *app.App, cmd command, stdout io.Writer) error {
	results, err := a.Upgrade(ctx, cmd.lang, cmd.dryRun)
	if err != nil {
		return err
	}
	if cmd.dryRun {
		fmt.Fprintf(stdout, "%s: dry run, %d entries parsed, nothing written\n",
			cmd.lang, results[seeder.PhaseParse].Inserted)
		return nil
	}
	fmt.Fprintf(stdout, "%s: installed %d entries and %d inflection stubs\n",
		cmd.lang, results[seeder.PhaseWords].Inserted, results[seeder.PhaseInflections].Inserted)
	return nil
}

func list(ctx context.Context, a *app.App, filter lexicon.Filter, stdout io.Writer) error {
	langs, err := a.Lexicon().ListLanguages(ctx, filter)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tVERSION\tSTATUS")
	for _, l := range langs {
		version := l.Version
		if version == "" {
			version = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Code, l.Name, version, l.Status)
	}
	return tw.Flush()
}

// explain turns the failures a user can act on into instructions.
func explain(err error, cfg *config.Config) string {
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		return fmt.Sprintf("%v\nThe database role cannot create or drop tables. "+
			"Run as the schema owner or grant CREATE on schema public.", err)
	case errors.Is(err, domain.ErrUnknownLanguage):
		return fmt.Sprintf("%v\nRun `inflective list` to see installable languages.", err)
	case errors.Is(err, domain.ErrNetworkFailure):
		return fmt.Sprintf("%v\nCheck access to %s or place the export in %s.",
			err, cfg.Import.SourceURL, cfg.Import.CacheDir)
	case errors.Is(err, domain.ErrMalformedRecord):
		return fmt.Sprintf("%v\nThe cached export looks corrupt; delete it from %s and retry.",
			err, cfg.Import.CacheDir)
	default:
		return err.Error()
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage:
  inflective upgrade <language> [--dry-run]   install or reinstall a language
  inflective list [--installed|--available]   show languages and their status
  inflective run [--port N]                   serve the HTTP API
  inflective version                          print the build version

upgrade, list and run accept --config FILE.
`)
}
