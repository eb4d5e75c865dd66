package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/randalmurphal/quasi/pkg/quasi"
	"github.com/randalmurphal/quasi/pkg/quasi/cache"
	"github.com/randalmurphal/quasi/pkg/quasi/config"
	"github.com/randalmurphal/quasi/pkg/quasi/expr"
	"github.com/randalmurphal/quasi/pkg/quasi/observability"
)

// renderJob is a fully resolved render command.
type renderJob struct {
	mode     quasi.Mode
	missing  expr.MissingAction
	vars     map[string]any
	settings config.Settings
	json     bool
	file     string
}

// resolveRender merges the config file, variable files and flags. Flags
// override the config file.
func (a *app) resolveRender(configPath string, cmd *renderCmd) (*renderJob, error) {
	s := config.DefaultSettings()
	if configPath != "" {
		cfg, err := config.FromFile(a.fs, configPath)
		if err != nil {
			return nil, err
		}
		s = cfg.Settings()
	}
	if cmd.Mode != "" {
		s.Mode = cmd.Mode
	}
	if cmd.Missing != "" {
		s.Missing = cmd.Missing
	}
	if cmd.Cache != "" {
		s.Cache = cmd.Cache
	}

	mode, err := quasi.ParseMode(s.Mode)
	if err != nil {
		return nil, err
	}
	missing, ok := expr.ParseMissingAction(s.Missing)
	if !ok {
		return nil, fmt.Errorf("unknown missing action: %q", s.Missing)
	}

	vars := make(map[string]any, len(s.Vars))
	maps.Copy(vars, s.Vars)
	fileVars, err := config.LoadVars(a.fs, slices.Concat(s.VarsFiles, cmd.Vars)...)
	if err != nil {
		return nil, err
	}
	maps.Copy(vars, fileVars)

	for _, kv := range cmd.Set {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --set %q: want KEY=VALUE", kv)
		}
		vars[strings.TrimSpace(key)] = expr.Resolve(val, vars)
	}

	return &renderJob{
		mode:     mode,
		missing:  missing,
		vars:     vars,
		settings: s,
		json:     cmd.JSON,
		file:     cmd.File,
	}, nil
}

// variant names everything besides the template and variables that
// changes the output, for use in cache keys.
func (j *renderJob) variant() string {
	return fmt.Sprintf("%s;missing=%s;hash=%t", j.mode, j.settings.Missing, j.settings.HashEscapeInWords)
}

func (a *app) render(ctx context.Context, configPath string, cmd *renderCmd) error {
	job, err := a.resolveRender(configPath, cmd)
	if err != nil {
		return err
	}
	if cmd.Watch && (job.file == "" || job.file == "-") {
		return errors.New("--watch requires a template FILE")
	}

	var store cache.Store
	if job.settings.Cache != "" {
		store, err = a.openStore(job.settings.Cache)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer store.Close()
	}

	if !cmd.Watch {
		return a.renderOnce(ctx, job, store)
	}
	return a.watch(ctx, job.file, func() {
		if err := a.renderOnce(ctx, job, store); err != nil {
			fmt.Fprintf(a.stderr, "quasi: %v\n", err)
		}
	})
}

// renderOnce reads the template, serves it from store when possible and
// writes the formatted result.
func (a *app) renderOnce(ctx context.Context, job *renderJob, store cache.Store) error {
	text, err := a.readInput(job.file)
	if err != nil {
		return err
	}

	var key string
	if store != nil {
		key, err = cache.Key(job.variant(), text, job.vars)
		if err != nil {
			observability.LogCacheError(a.logger, "key", err)
		} else if out, ok := a.lookup(store, key, job.settings.CacheTTL); ok {
			return a.write(job, out)
		}
	}

	done := observability.TimedOperation()
	r := quasi.NewRenderer(
		quasi.WithEvaluator(expr.New(
			expr.WithVars(job.vars),
			expr.WithMissingAction(job.missing),
		)),
		quasi.WithLogger(a.logger),
		quasi.WithHashEscapeInWords(job.settings.HashEscapeInWords),
	)
	res, err := r.Render(ctx, job.mode, text)
	if err != nil {
		return fmt.Errorf("render %s: %w", displayName(job.file), err)
	}
	a.logger.Debug("rendered", "file", displayName(job.file), "duration_ms", done())

	out, err := encodeResult(res)
	if err != nil {
		return err
	}
	if store != nil && key != "" {
		if err := store.Put(key, cache.Entry{Mode: job.mode.String(), Output: out}); err != nil {
			observability.LogCacheError(a.logger, "put", err)
		}
	}
	return a.write(job, out)
}

// lookup returns the cached output for key. Expired entries are deleted.
// Cache failures are logged and treated as a miss.
func (a *app) lookup(store cache.Store, key string, ttl time.Duration) ([]byte, bool) {
	e, err := store.Get(key)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		observability.LogCacheError(a.logger, "get", err)
		return nil, false
	}
	if e.Expired(ttl, time.Now()) {
		if err := store.Delete(key); err != nil {
			observability.LogCacheError(a.logger, "delete", err)
		}
		return nil, false
	}
	observability.LogCacheHit(a.logger, key)
	return e.Output, true
}

// encodeResult stores a result as a JSON string or array, independent of
// the output format.
func encodeResult(res quasi.Result) ([]byte, error) {
	var v any = res.Text
	if res.Mode.Words() {
		v = res.Words
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return out, nil
}

// write prints encoded output: as-is with --json, otherwise the string
// verbatim or one word per line.
func (a *app) write(job *renderJob, encoded []byte) error {
	if job.json {
		_, err := fmt.Fprintf(a.stdout, "%s\n", encoded)
		return err
	}
	if job.mode.Words() {
		var words []string
		if err := json.Unmarshal(encoded, &words); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
		for _, w := range words {
			if _, err := fmt.Fprintln(a.stdout, w); err != nil {
				return err
			}
		}
		return nil
	}
	var text string
	if err := json.Unmarshal(encoded, &text); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	_, err := io.WriteString(a.stdout, text)
	return err
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "<stdin>"
	}
	return path
}
