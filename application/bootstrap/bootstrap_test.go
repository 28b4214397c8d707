package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaic-dev/loader/domain/entities"
	domainerrors "github.com/mosaic-dev/loader/domain/errors"
	"github.com/mosaic-dev/loader/internal/testutil"
)

type fakePrompter struct {
	choice  int
	err     error
	offered []string
	notes   []string
}

func (p *fakePrompter) IsInteractive() bool { return false }

func (p *fakePrompter) SelectModule(candidates []string) (int, error) {
	p.offered = candidates
	return p.choice, p.err
}

func (p *fakePrompter) Progress(msg string) { p.notes = append(p.notes, msg) }

func threeModules(third []byte) fstest.MapFS {
	return fstest.MapFS{
		"one.wasm":   {Data: testutil.NotWasm},
		"two.wasm":   {Data: testutil.NotWasm},
		"three.wasm": {Data: third},
	}
}

func threeCandidates() entities.Config {
	return entities.NewConfig(entities.WithCandidates("one.wasm", "two.wasm", "three.wasm"))
}

func TestRun_ThirdOfThree(t *testing.T) {
	term := testutil.NewFakeTerminal(testutil.Keys("x", "q")...)
	prompter := &fakePrompter{choice: 2}

	b := New(threeModules(testutil.EchoModule()), term, prompter, WithConfig(threeCandidates()))
	require.NoError(t, b.Run(context.Background()))

	assert.Equal(t, []string{"one.wasm", "two.wasm", "three.wasm"}, prompter.offered)
	require.Len(t, prompter.notes, 1)
	assert.Contains(t, prompter.notes[0], "three.wasm")

	screen := term.Screen()
	assert.Contains(t, screen, entities.DefaultSeed)
	assert.Contains(t, screen, "started")
	assert.Contains(t, screen, `"char":"x"`)
	assert.NotContains(t, screen, `"char":"q"`)
	assert.Equal(t, 1, term.Enables)
	assert.True(t, term.Balanced())
}

func TestRun_CompileFailureNeverTouchesTerminal(t *testing.T) {
	term := testutil.NewFakeTerminal(testutil.Keys("q")...)
	prompter := &fakePrompter{choice: 2}

	b := New(threeModules(testutil.NotWasm), term, prompter, WithConfig(threeCandidates()))
	err := b.Run(context.Background())

	testutil.RequireSetupStage(t, err, domainerrors.StageCompile)
	assert.NotZero(t, domainerrors.ExitCode(err))
	assert.Zero(t, term.Enables)
	assert.Zero(t, term.Disables)
}

func TestRun_SetupFailures(t *testing.T) {
	tests := []struct {
		name     string
		files    fstest.MapFS
		cfg      entities.Config
		prompter *fakePrompter
		stage    domainerrors.Stage
	}{
		{
			name:     "selection error",
			files:    threeModules(testutil.HelloModule()),
			cfg:      threeCandidates(),
			prompter: &fakePrompter{err: errors.New("no selection made")},
			stage:    domainerrors.StageSelect,
		},
		{
			name:     "selection out of range",
			files:    threeModules(testutil.HelloModule()),
			cfg:      threeCandidates(),
			prompter: &fakePrompter{choice: 3},
			stage:    domainerrors.StageSelect,
		},
		{
			name:     "no candidates",
			files:    fstest.MapFS{},
			cfg:      entities.NewConfig(entities.WithCandidates("build/*.wasm")),
			prompter: &fakePrompter{},
			stage:    domainerrors.StageSelect,
		},
		{
			name:     "missing file",
			files:    fstest.MapFS{},
			cfg:      entities.NewConfig(entities.WithCandidates("gone.wasm")),
			prompter: &fakePrompter{},
			stage:    domainerrors.StageRead,
		},
		{
			name:     "missing handle_key",
			files:    fstest.MapFS{"m.wasm": {Data: testutil.NoHandleKeyModule()}},
			cfg:      entities.NewConfig(entities.WithCandidates("m.wasm")),
			prompter: &fakePrompter{},
			stage:    domainerrors.StageExport,
		},
		{
			name:     "trap while priming",
			files:    fstest.MapFS{"m.wasm": {Data: testutil.TrapModule()}},
			cfg:      entities.NewConfig(entities.WithCandidates("m.wasm")),
			prompter: &fakePrompter{},
			stage:    domainerrors.StagePrime,
		},
		{
			name:     "bad quit key",
			files:    threeModules(testutil.HelloModule()),
			cfg:      entities.NewConfig(entities.WithCandidates("one.wasm"), entities.WithQuitKey("hyper+q")),
			prompter: &fakePrompter{},
			stage:    domainerrors.StageConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := testutil.NewFakeTerminal(testutil.Keys("q")...)
			err := New(tt.files, term, tt.prompter, WithConfig(tt.cfg)).Run(context.Background())

			testutil.RequireSetupStage(t, err, tt.stage)
			assert.Equal(t, 2, domainerrors.ExitCode(err))
			assert.Zero(t, term.Enables)
		})
	}
}

func TestRun_LoopErrorRestoresTerminal(t *testing.T) {
	// The script runs dry without a quit key, so the read fails.
	term := testutil.NewFakeTerminal(testutil.Keys("a")...)
	cfg := entities.NewConfig(entities.WithCandidates("m.wasm"))

	err := New(fstest.MapFS{"m.wasm": {Data: testutil.HelloModule()}}, term, &fakePrompter{}, WithConfig(cfg)).
		Run(context.Background())

	var ioErr *domainerrors.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, 1, domainerrors.ExitCode(err))
	assert.Equal(t, 1, term.Enables)
	assert.True(t, term.Balanced())
}

func TestRun_AbsoluteCandidate(t *testing.T) {
	module := filepath.Join(t.TempDir(), "echo.wasm")
	require.NoError(t, os.WriteFile(module, testutil.EchoModule(), 0o600))

	term := testutil.NewFakeTerminal(testutil.Keys("q")...)
	prompter := &fakePrompter{}
	cfg := entities.NewConfig(entities.WithCandidates(module))

	require.NoError(t, New(fstest.MapFS{}, term, prompter, WithConfig(cfg)).Run(context.Background()))
	assert.Contains(t, term.Screen(), "started")
	assert.True(t, term.Balanced())
}

func TestRun_ParentDirectoryCandidate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "echo.wasm"), testutil.EchoModule(), 0o600))
	work := filepath.Join(root, "work")
	require.NoError(t, os.Mkdir(work, 0o700))
	t.Chdir(work)

	term := testutil.NewFakeTerminal(testutil.Keys("q")...)
	prompter := &fakePrompter{}
	cfg := entities.NewConfig(entities.WithCandidates("../echo.wasm"))

	require.NoError(t, New(os.DirFS("."), term, prompter, WithConfig(cfg)).Run(context.Background()))
	assert.Contains(t, term.Screen(), "started")
}

func TestRun_DotSlashCandidate(t *testing.T) {
	term := testutil.NewFakeTerminal(testutil.Keys("q")...)
	prompter := &fakePrompter{}
	cfg := entities.NewConfig(entities.WithCandidates("./echo.wasm"))
	fsys := fstest.MapFS{"echo.wasm": {Data: testutil.EchoModule()}}

	require.NoError(t, New(fsys, term, prompter, WithConfig(cfg)).Run(context.Background()))
	assert.Contains(t, term.Screen(), "started")
}
