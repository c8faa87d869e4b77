package launch

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/beacon/internal/result"
)

type capturedCmd struct {
	name string
	args []string
}

func newCapturingLauncher() (*Launcher, *[]capturedCmd, *[]string) {
	var cmds []capturedCmd
	var copies []string
	l := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	l.run = func(_ context.Context, name string, args ...string) error {
		cmds = append(cmds, capturedCmd{name: name, args: args})
		return nil
	}
	l.copyText = func(text string) error {
		copies = append(copies, text)
		return nil
	}
	return l, &cmds, &copies
}

func TestActivateApp(t *testing.T) {
	t.Parallel()

	l, cmds, _ := newCapturingLauncher()
	err := l.Activate(context.Background(), result.Result{
		Name:   "Firefox",
		Target: `firefox --new-window "https://example.com"`,
		Kind:   result.KindApp,
	})
	require.NoError(t, err)
	require.Len(t, *cmds, 1)
	assert.Equal(t, "firefox", (*cmds)[0].name)
	assert.Equal(t, []string{"--new-window", "https://example.com"}, (*cmds)[0].args)
}

func TestActivateAppEmptyCommandLine(t *testing.T) {
	t.Parallel()

	l, cmds, _ := newCapturingLauncher()
	err := l.Activate(context.Background(), result.Result{Kind: result.KindApp})
	require.Error(t, err)
	assert.Empty(t, *cmds)
}

func TestActivateFileAndWebUseOpener(t *testing.T) {
	t.Parallel()

	l, cmds, _ := newCapturingLauncher()
	require.NoError(t, l.Activate(context.Background(), result.Result{
		Target: "/home/user/notes.txt",
		Kind:   result.KindFile,
	}))
	require.NoError(t, l.Activate(context.Background(), result.Result{
		Target: "https://www.google.com/search?q=test",
		Kind:   result.KindWeb,
	}))
	require.Len(t, *cmds, 2)
	for _, c := range *cmds {
		switch runtime.GOOS {
		case "darwin":
			assert.Equal(t, "open", c.name)
		case "windows":
			assert.Equal(t, "cmd", c.name)
		default:
			assert.Equal(t, "xdg-open", c.name)
		}
	}
	assert.Contains(t, (*cmds)[0].args, "/home/user/notes.txt")
	assert.Contains(t, (*cmds)[1].args, "https://www.google.com/search?q=test")
}

func TestActivateCalcCopiesValue(t *testing.T) {
	t.Parallel()

	l, cmds, copies := newCapturingLauncher()
	require.NoError(t, l.Activate(context.Background(), result.Result{
		Name:   "= 4",
		Target: "4",
		Kind:   result.KindCalc,
	}))
	assert.Empty(t, *cmds)
	assert.Equal(t, []string{"4"}, *copies)
}

func TestActivateInfoIsNoop(t *testing.T) {
	t.Parallel()

	l, cmds, copies := newCapturingLauncher()
	require.NoError(t, l.Activate(context.Background(), result.Result{
		Name: "No results",
		Kind: result.KindInfo,
	}))
	assert.Empty(t, *cmds)
	assert.Empty(t, *copies)
}

func TestActivateActionDispatches(t *testing.T) {
	t.Parallel()

	for _, verb := range []string{"lock", "sleep", "restart", "shutdown", "logout", "emptytrash"} {
		l, cmds, _ := newCapturingLauncher()
		err := l.Activate(context.Background(), result.Result{Target: verb, Kind: result.KindAction})
		require.NoError(t, err, "verb %q", verb)
		require.Len(t, *cmds, 1, "verb %q", verb)
		assert.NotEmpty(t, (*cmds)[0].name)
	}
}

func TestActivateUnknownActionVerb(t *testing.T) {
	t.Parallel()

	l, cmds, _ := newCapturingLauncher()
	err := l.Activate(context.Background(), result.Result{Target: "hibernate", Kind: result.KindAction})
	require.Error(t, err)
	assert.Empty(t, *cmds)
}

func TestSystemCommandCoversAllPlatforms(t *testing.T) {
	t.Parallel()

	verbs := []string{"lock", "sleep", "restart", "shutdown", "logout", "emptytrash"}
	for _, goos := range []string{"linux", "darwin", "windows"} {
		for _, verb := range verbs {
			cmdline, ok := systemCommand(verb, goos)
			require.True(t, ok, "%s/%s", goos, verb)
			require.NotEmpty(t, cmdline)
		}
	}
}
