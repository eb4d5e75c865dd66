package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/randalmurphal/quasi/pkg/quasi"
	"github.com/randalmurphal/quasi/pkg/quasi/cache"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sharedStore keeps a memory store open across runs.
type sharedStore struct {
	cache.Store
}

func (sharedStore) Close() error { return nil }

type testEnv struct {
	fs     afero.Fs
	store  *cache.MemoryStore
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv(t *testing.T, files map[string]string) *testEnv {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return &testEnv{
		fs:     fs,
		store:  cache.NewMemoryStore(),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
}

func (e *testEnv) run(stdin string, argv ...string) int {
	e.stdout.Reset()
	e.stderr.Reset()
	a := newApp(e.fs, strings.NewReader(stdin), e.stdout, e.stderr)
	a.openStore = func(string) (cache.Store, error) {
		return sharedStore{e.store}, nil
	}
	return a.run(context.Background(), argv)
}

// TestRun_HelpAndVersion verifies help, version and usage exit codes.
func TestRun_HelpAndVersion(t *testing.T) {
	env := newTestEnv(t, nil)

	assert.Equal(t, exitOK, env.run("", "--help"))
	assert.Contains(t, env.stdout.String(), "render")

	assert.Equal(t, exitOK, env.run("", "--version"))
	assert.Equal(t, "quasi "+version+"\n", env.stdout.String())

	assert.Equal(t, exitUsage, env.run("", "--bogus"))
	assert.Contains(t, env.stderr.String(), "bogus")

	assert.Equal(t, exitUsage, env.run(""))
}

// TestRender verifies the render command across modes and variable sources.
func TestRender(t *testing.T) {
	files := map[string]string{
		"/greet.q":    "Hello, #{name}!\n",
		"/words.q":    `foo bar #{ reverse("zab") } a\ b`,
		"/vars.yaml":  "name: Alice\nlang: go\n",
		"/raw.q":      `C:\dir #{x}`,
		"/missing.q":  "[#{nobody}]",
		"/nested.q":   "#{ upper(user.name) }",
		"/nested.yml": "user:\n  name: bob\n",
	}

	tests := []struct {
		name  string
		stdin string
		argv  []string
		want  string
	}{
		{
			name: "set variable",
			argv: []string{"render", "--set", "name=Brian", "/greet.q"},
			want: "Hello, Brian!\n",
		},
		{
			name: "vars file",
			argv: []string{"render", "--vars", "/vars.yaml", "/greet.q"},
			want: "Hello, Alice!\n",
		},
		{
			name: "set overrides vars file",
			argv: []string{"render", "--vars", "/vars.yaml", "-s", "name=Bob", "/greet.q"},
			want: "Hello, Bob!\n",
		},
		{
			name: "set resolves other variables",
			argv: []string{"render", "--vars", "/vars.yaml", "--set", "name=lang", "/greet.q"},
			want: "Hello, go!\n",
		},
		{
			name:  "stdin",
			stdin: "#{ 1 < 2 }",
			argv:  []string{"render"},
			want:  "true",
		},
		{
			name:  "dash is stdin",
			stdin: `a\tb`,
			argv:  []string{"render", "-"},
			want:  "a\tb",
		},
		{
			name: "words one per line",
			argv: []string{"render", "--mode", "ww", "/words.q"},
			want: "foo\nbar\nbaz\na b\n",
		},
		{
			name: "words as json",
			argv: []string{"render", "-m", "ww", "--json", "/words.q"},
			want: `["foo","bar","baz","a b"]` + "\n",
		},
		{
			name: "raw words",
			argv: []string{"render", "--mode", "w", "/raw.q"},
			want: "C:\\dir\n#{x}\n",
		},
		{
			name: "raw string",
			argv: []string{"render", "--mode", "q", "/raw.q"},
			want: `C:\dir #{x}`,
		},
		{
			name: "string as json",
			argv: []string{"render", "--json", "--set", "name=Brian", "/greet.q"},
			want: `"Hello, Brian!\n"` + "\n",
		},
		{
			name: "missing keep",
			argv: []string{"render", "--missing", "keep", "/missing.q"},
			want: "[nobody]",
		},
		{
			name: "missing empty",
			argv: []string{"render", "--missing", "empty", "/missing.q"},
			want: "[]",
		},
		{
			name: "nested variables",
			argv: []string{"render", "--vars", "/nested.yml", "/nested.q"},
			want: "BOB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, files)
			code := env.run(tt.stdin, tt.argv...)
			require.Equal(t, exitOK, code, "stderr: %s", env.stderr.String())
			assert.Equal(t, tt.want, env.stdout.String())
		})
	}
}

// TestRender_Errors verifies failures exit nonzero with a located message and no output.
func TestRender_Errors(t *testing.T) {
	files := map[string]string{
		"/bad.q":      "Hello #{oops",
		"/escape.q":   "line one\nbad \\q",
		"/undef.q":    "#{nobody}",
		"/bad.yaml":   "mode: [",
		"/greet.q":    "hi",
		"/strict.yml": "mode: ww\nhash_escape_in_words: false\n",
		"/hash.q":     `\#{x}`,
	}

	tests := []struct {
		name    string
		stdin   string
		argv    []string
		wantErr string
	}{
		{
			name:    "unterminated interpolation",
			argv:    []string{"render", "/bad.q"},
			wantErr: `render /bad.q: UnterminatedInterpolation at line 1, column 7 (offset 6): "#{oops"`,
		},
		{
			name:    "invalid escape position",
			argv:    []string{"render", "/escape.q"},
			wantErr: "InvalidEscapeSequence at line 2, column 5 (offset 13)",
		},
		{
			name:    "undefined variable",
			argv:    []string{"render", "/undef.q"},
			wantErr: "InterpolationEvaluationError",
		},
		{
			name:    "stdin error name",
			stdin:   `\q`,
			argv:    []string{"render"},
			wantErr: "render <stdin>:",
		},
		{
			name:    "unknown mode",
			argv:    []string{"render", "--mode", "zz", "/greet.q"},
			wantErr: `unknown mode: "zz"`,
		},
		{
			name:    "unknown missing action",
			argv:    []string{"render", "--missing", "maybe", "/greet.q"},
			wantErr: `unknown missing action: "maybe"`,
		},
		{
			name:    "invalid set",
			argv:    []string{"render", "--set", "novalue", "/greet.q"},
			wantErr: `invalid --set "novalue"`,
		},
		{
			name:    "missing template",
			argv:    []string{"render", "/none.q"},
			wantErr: "read template",
		},
		{
			name:    "missing vars file",
			argv:    []string{"render", "--vars", "/none.yaml", "/greet.q"},
			wantErr: "load vars /none.yaml",
		},
		{
			name:    "bad config",
			argv:    []string{"--config", "/bad.yaml", "render", "/greet.q"},
			wantErr: "parse yaml",
		},
		{
			name:    "hash escape disabled by config",
			argv:    []string{"-c", "/strict.yml", "render", "/hash.q"},
			wantErr: "InvalidEscapeSequence",
		},
		{
			name:    "watch needs a file",
			argv:    []string{"render", "--watch"},
			wantErr: "--watch requires a template FILE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, files)
			code := env.run(tt.stdin, tt.argv...)
			assert.Equal(t, exitError, code)
			assert.Contains(t, env.stderr.String(), tt.wantErr)
			assert.Empty(t, env.stdout.String(), "no partial output")
		})
	}
}

// TestRender_ConfigFile verifies config file settings and flag overrides.
func TestRender_ConfigFile(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"/quasi.yaml": "mode: ww\nmissing: keep\nvars:\n  who: world\n",
		"/t.q":        "hello #{who} #{other}",
	})

	require.Equal(t, exitOK, env.run("", "--config", "/quasi.yaml", "render", "/t.q"), env.stderr.String())
	assert.Equal(t, "hello\nworld\nother\n", env.stdout.String())

	require.Equal(t, exitOK, env.run("", "--config", "/quasi.yaml", "render", "--mode", "qq", "/t.q"), env.stderr.String())
	assert.Equal(t, "hello world other", env.stdout.String(), "flags override the config file")
}

// TestRender_Cache verifies renders are stored and served from the cache.
func TestRender_Cache(t *testing.T) {
	env := newTestEnv(t, map[string]string{"/t.q": "#{ upper(name) }"})

	argv := []string{"--verbose", "render", "--cache", "cache.db", "--set", "name=brian", "/t.q"}
	require.Equal(t, exitOK, env.run("", argv...), env.stderr.String())
	assert.Equal(t, "BRIAN", env.stdout.String())
	assert.NotContains(t, env.stderr.String(), "cache hit")

	infos, err := env.store.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "qq", infos[0].Mode)

	require.Equal(t, exitOK, env.run("", argv...), env.stderr.String())
	assert.Equal(t, "BRIAN", env.stdout.String())
	assert.Contains(t, env.stderr.String(), "cache hit")

	// Different variables miss.
	require.Equal(t, exitOK, env.run("", "render", "--cache", "cache.db", "--set", "name=al", "/t.q"))
	assert.Equal(t, "AL", env.stdout.String())
	infos, err = env.store.List()
	require.NoError(t, err)
	assert.Len(t, infos, 2)
}

// TestRender_CacheServesStoredOutput verifies a cache hit skips rendering.
func TestRender_CacheServesStoredOutput(t *testing.T) {
	env := newTestEnv(t, map[string]string{"/t.q": "a b"})

	job := &renderJob{mode: quasi.ModeRawWords}
	job.settings.Missing = "error"
	job.settings.HashEscapeInWords = true
	key, err := cache.Key(job.variant(), "a b", map[string]any{})
	require.NoError(t, err)
	require.NoError(t, env.store.Put(key, cache.Entry{Mode: "w", Output: []byte(`["from","cache"]`)}))

	require.Equal(t, exitOK, env.run("", "render", "--mode", "w", "--cache", "c.db", "/t.q"), env.stderr.String())
	assert.Equal(t, "from\ncache\n", env.stdout.String())
}

// TestRender_CacheOpenFailure verifies a cache that cannot be opened fails the command.
func TestRender_CacheOpenFailure(t *testing.T) {
	env := newTestEnv(t, map[string]string{"/t.q": "x"})
	a := newApp(env.fs, strings.NewReader(""), env.stdout, env.stderr)
	a.openStore = func(string) (cache.Store, error) {
		return nil, errors.New("disk full")
	}

	assert.Equal(t, exitError, a.run(context.Background(), []string{"render", "--cache", "c.db", "/t.q"}))
	assert.Contains(t, env.stderr.String(), "open cache: disk full")
}

// TestEscape verifies escaped output renders back to the input.
func TestEscape(t *testing.T) {
	input := "tab\there #{not} \"q\"\n"
	env := newTestEnv(t, map[string]string{"/in.txt": input})

	require.Equal(t, exitOK, env.run("", "escape", "/in.txt"))
	encoded := env.stdout.String()
	assert.Equal(t, `tab\there \#{not} \"q\"\n`, encoded)

	got, err := quasi.Interpolated(context.Background(), encoded, nil)
	require.NoError(t, err)
	assert.Equal(t, input, got)
}

// TestEscape_Words verifies each input line becomes one word.
func TestEscape_Words(t *testing.T) {
	env := newTestEnv(t, nil)

	require.Equal(t, exitOK, env.run("one word\n\nsecond\tword\n", "escape", "--words"))
	line := strings.TrimSuffix(env.stdout.String(), "\n")
	assert.Equal(t, `one\ word second\tword`, line)

	words, err := quasi.InterpolatedWords(context.Background(), line, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"one word", "second\tword"}, words)
}

// TestFuncs verifies the function listing is sorted.
func TestFuncs(t *testing.T) {
	env := newTestEnv(t, nil)

	require.Equal(t, exitOK, env.run("", "funcs"))
	names := strings.Fields(env.stdout.String())
	assert.Contains(t, names, "reverse")
	assert.Contains(t, names, "upper")
	assert.IsIncreasing(t, names)
}

// TestCacheCommand verifies cache listing and purging.
func TestCacheCommand(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.store.Put("0123456789abcdef", cache.Entry{Mode: "ww", Output: []byte(`["a"]`)}))

	require.Equal(t, exitOK, env.run("", "cache", "c.db"))
	out := env.stdout.String()
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "0123456789ab ")
	assert.NotContains(t, out, "0123456789abc")
	assert.Contains(t, out, "ww")

	require.Equal(t, exitOK, env.run("", "cache", "--purge", "c.db"))
	infos, err := env.store.List()
	require.NoError(t, err)
	assert.Empty(t, infos)

	assert.Equal(t, exitUsage, env.run("", "cache"), "DB is required")
}

// watchHarness runs watchLoop on a fake event stream. Each render records
// the file content current at that moment.
type watchHarness struct {
	events  chan fsnotify.Event
	errs    chan error
	renders chan string
	cancel  context.CancelFunc
	done    chan struct{}

	mu        sync.Mutex
	content   string
	watchErrs []error
}

func newWatchHarness(path string) *watchHarness {
	ctx, cancel := context.WithCancel(context.Background())
	h := &watchHarness{
		events:  make(chan fsnotify.Event, 10),
		errs:    make(chan error, 1),
		renders: make(chan string, 10),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go func() {
		defer close(h.done)
		watchLoop(ctx, path, h.events, h.errs, func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.renders <- h.content
		}, func(err error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.watchErrs = append(h.watchErrs, err)
		})
	}()
	return h
}

// save sets the file content and reports a change event for it.
func (h *watchHarness) save(name, content string, op fsnotify.Op) {
	h.mu.Lock()
	h.content = content
	h.mu.Unlock()
	h.events <- fsnotify.Event{Name: name, Op: op}
}

func (h *watchHarness) stop() {
	h.cancel()
	<-h.done
}

func waitRender(t *testing.T, renders <-chan string) string {
	t.Helper()
	select {
	case got := <-renders:
		return got
	case <-time.After(time.Second):
		t.Fatal("expected a render")
		return ""
	}
}

func assertNoRender(t *testing.T, renders <-chan string) {
	t.Helper()
	select {
	case got := <-renders:
		t.Fatalf("unexpected render of %q", got)
	case <-time.After(3 * watchDebounce):
	}
}

// TestWatchLoop_RendersFinalContent verifies a burst of saves renders once,
// after the burst, with the last saved content.
func TestWatchLoop_RendersFinalContent(t *testing.T) {
	h := newWatchHarness("/tmp/t.q")
	defer h.stop()

	// Truncate then write, as many editors do on save.
	h.save("/tmp/t.q", "", fsnotify.Write)
	time.Sleep(10 * time.Millisecond)
	h.save("/tmp/./t.q", "final", fsnotify.Write)

	assert.Equal(t, "final", waitRender(t, h.renders))
	assertNoRender(t, h.renders)

	h.save("/tmp/t.q", "recreated", fsnotify.Create)
	assert.Equal(t, "recreated", waitRender(t, h.renders))
}

// TestWatchLoop_IgnoresUnrelatedEvents verifies other files and metadata
// changes never trigger a render and watcher errors are reported.
func TestWatchLoop_IgnoresUnrelatedEvents(t *testing.T) {
	h := newWatchHarness("/tmp/t.q")

	h.save("/tmp/other.q", "x", fsnotify.Write)
	h.save("/tmp/t.q", "x", fsnotify.Chmod)
	h.errs <- errors.New("overflow")
	assertNoRender(t, h.renders)

	h.stop()
	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.watchErrs, 1)
	assert.EqualError(t, h.watchErrs[0], "overflow")
}

// TestWatchLoop_StopsOnCancel verifies a pending render is dropped when the
// context is cancelled.
func TestWatchLoop_StopsOnCancel(t *testing.T) {
	h := newWatchHarness("/tmp/t.q")
	h.save("/tmp/t.q", "x", fsnotify.Write)
	h.stop()

	assert.Empty(t, h.renders)
}

// TestEncodeResult verifies results are stored as JSON.
func TestEncodeResult(t *testing.T) {
	out, err := encodeResult(quasi.Result{Mode: quasi.ModeRawWords, Words: []string{"a", "b c"}})
	require.NoError(t, err)

	var words []string
	require.NoError(t, json.Unmarshal(out, &words))
	assert.Equal(t, []string{"a", "b c"}, words)

	out, err = encodeResult(quasi.Result{Mode: quasi.ModeInterpolated, Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, `"x"`, string(out))
}
