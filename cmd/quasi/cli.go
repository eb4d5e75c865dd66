package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/alexflint/go-arg"
	"github.com/randalmurphal/quasi/pkg/quasi/cache"
	"github.com/spf13/afero"
)

const version = "0.1.0"

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type renderCmd struct {
	Mode    string   `arg:"-m,--mode" help:"transform: q, qq, w or ww [default: qq]"`
	Vars    []string `arg:"--vars,separate" placeholder:"FILE" help:"YAML or JSON variables file (repeatable)"`
	Set     []string `arg:"-s,--set,separate" placeholder:"KEY=VALUE" help:"set a variable (repeatable)"`
	Missing string   `arg:"--missing" help:"undefined variables: error, empty or keep [default: error]"`
	JSON    bool     `arg:"--json" help:"write the result as JSON"`
	Cache   string   `arg:"--cache" placeholder:"DB" help:"SQLite render cache"`
	Watch   bool     `arg:"-w,--watch" help:"re-render whenever FILE changes"`
	File    string   `arg:"positional" help:"template file; stdin when omitted or -"`
}

type escapeCmd struct {
	Words bool   `arg:"--words" help:"treat each input line as one word"`
	File  string `arg:"positional" help:"text file; stdin when omitted or -"`
}

type funcsCmd struct{}

type cacheCmd struct {
	Purge bool   `arg:"--purge" help:"remove every entry instead of listing"`
	DB    string `arg:"positional,required" help:"SQLite render cache"`
}

type cliArgs struct {
	Render  *renderCmd `arg:"subcommand:render" help:"render a template"`
	Escape  *escapeCmd `arg:"subcommand:escape" help:"encode text as a template that renders back to it"`
	Funcs   *funcsCmd  `arg:"subcommand:funcs" help:"list the functions interpolations can call"`
	Cache   *cacheCmd  `arg:"subcommand:cache" help:"list or purge a render cache"`
	Config  string     `arg:"-c,--config,env:QUASI_CONFIG" help:"YAML or JSON config file"`
	Verbose bool       `arg:"-v,--verbose" help:"log debug output to stderr"`
}

func (cliArgs) Version() string {
	return "quasi " + version
}

func (cliArgs) Description() string {
	return "quasi renders quasi-quoted string and word-list templates."
}

// app holds the process environment so commands can run against a memory
// filesystem and buffers in tests.
type app struct {
	fs        afero.Fs
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	logger    *slog.Logger
	openStore func(path string) (cache.Store, error)
}

func newApp(fs afero.Fs, stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		fs:     fs,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		openStore: func(path string) (cache.Store, error) {
			return cache.NewSQLiteStore(path)
		},
	}
}

// run parses argv and dispatches to a subcommand, returning the exit code.
func (a *app) run(ctx context.Context, argv []string) int {
	var args cliArgs
	parser, err := arg.NewParser(arg.Config{Program: "quasi"}, &args)
	if err != nil {
		fmt.Fprintf(a.stderr, "quasi: cli config error: %v\n", err)
		return exitError
	}

	err = parser.Parse(argv)
	if errors.Is(err, arg.ErrHelp) {
		parser.WriteHelp(a.stdout)
		return exitOK
	}
	if errors.Is(err, arg.ErrVersion) {
		fmt.Fprintln(a.stdout, args.Version())
		return exitOK
	}
	if err != nil {
		parser.WriteUsage(a.stderr)
		fmt.Fprintf(a.stderr, "quasi: %v\n", err)
		return exitUsage
	}

	a.logger = newLogger(a.stderr, args.Verbose)

	switch {
	case args.Render != nil:
		err = a.render(ctx, args.Config, args.Render)
	case args.Escape != nil:
		err = a.escape(args.Escape)
	case args.Funcs != nil:
		err = a.funcs()
	case args.Cache != nil:
		err = a.cache(args.Cache)
	default:
		parser.WriteHelp(a.stderr)
		return exitUsage
	}

	if err != nil {
		fmt.Fprintf(a.stderr, "quasi: %v\n", err)
		return exitError
	}
	return exitOK
}

// newLogger logs text to w at Debug when verbose and Warn otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// readInput reads path from the filesystem, or stdin when path is empty
// or "-".
func (a *app) readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return string(data), nil
}
