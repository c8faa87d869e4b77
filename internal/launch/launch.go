// Package launch activates search results: starting applications, opening
// files and URLs, dispatching system actions, and copying calculator
// results. The query engine itself never performs side effects; this
// package is the caller-side activator.
package launch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/google/shlex"

	"github.com/runger/beacon/internal/result"
)

// Launcher activates results. The command runner is injectable so tests
// can capture dispatches without spawning processes.
type Launcher struct {
	logger *slog.Logger

	// run starts a detached command. Defaults to exec.Command + Start.
	run func(ctx context.Context, name string, args ...string) error

	// copyText places text on the system clipboard.
	copyText func(text string) error
}

// New builds a Launcher.
func New(logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		logger:   logger,
		run:      startDetached,
		copyText: clipboard.WriteAll,
	}
}

func startDetached(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return err
	}
	// Detach: the launched program outlives us.
	return cmd.Process.Release()
}

// Activate performs the effect for one result. The Kind switch is
// exhaustive over the closed enum; there is no unknown-kind branch.
func (l *Launcher) Activate(ctx context.Context, res result.Result) error {
	l.logger.Info("activating result", "name", res.Name, "kind", res.Kind.String())

	switch res.Kind {
	case result.KindApp:
		return l.startCommandLine(ctx, res.Target)
	case result.KindFile:
		return l.openTarget(ctx, res.Target)
	case result.KindWeb:
		return l.openTarget(ctx, res.Target)
	case result.KindCalc:
		return l.copyText(res.Target)
	case result.KindAction:
		return l.systemAction(ctx, res.Target)
	case result.KindInfo:
		return nil
	}
	// Unreachable: Kind is a closed enum.
	return fmt.Errorf("unhandled result kind %v", res.Kind)
}

// startCommandLine launches an application command line (a cleaned
// .desktop Exec value or a plain executable path).
func (l *Launcher) startCommandLine(ctx context.Context, cmdline string) error {
	argv, err := shlex.Split(cmdline)
	if err != nil {
		return fmt.Errorf("parse command line %q: %w", cmdline, err)
	}
	if len(argv) == 0 {
		return fmt.Errorf("empty command line")
	}
	if err := l.run(ctx, argv[0], argv[1:]...); err != nil {
		return fmt.Errorf("launch %q: %w", argv[0], err)
	}
	return nil
}

// openTarget hands a path or URL to the platform opener.
func (l *Launcher) openTarget(ctx context.Context, target string) error {
	switch runtime.GOOS {
	case "darwin":
		return l.run(ctx, "open", target)
	case "windows":
		return l.run(ctx, "cmd", "/c", "start", "", target)
	default:
		return l.run(ctx, "xdg-open", target)
	}
}

// systemAction dispatches a system command verb (the Target of an Action
// result) to the platform facility.
func (l *Launcher) systemAction(ctx context.Context, verb string) error {
	cmdline, ok := systemCommand(verb, runtime.GOOS)
	if !ok {
		return fmt.Errorf("unknown system action %q", verb)
	}
	if err := l.run(ctx, cmdline[0], cmdline[1:]...); err != nil {
		return fmt.Errorf("system action %q: %w", verb, err)
	}
	return nil
}

// systemCommand maps an action verb to the platform command line.
func systemCommand(verb, goos string) ([]string, bool) {
	switch goos {
	case "darwin":
		switch verb {
		case "lock":
			return []string{"pmset", "displaysleepnow"}, true
		case "sleep":
			return []string{"pmset", "sleepnow"}, true
		case "restart":
			return []string{"osascript", "-e", `tell app "System Events" to restart`}, true
		case "shutdown":
			return []string{"osascript", "-e", `tell app "System Events" to shut down`}, true
		case "logout":
			return []string{"osascript", "-e", `tell app "System Events" to log out`}, true
		case "emptytrash":
			return []string{"osascript", "-e", `tell app "Finder" to empty trash`}, true
		}
	case "windows":
		switch verb {
		case "lock":
			return []string{"rundll32.exe", "user32.dll,LockWorkStation"}, true
		case "sleep":
			return []string{"rundll32.exe", "powrprof.dll,SetSuspendState", "0", "1", "0"}, true
		case "restart":
			return []string{"shutdown", "/r", "/t", "0"}, true
		case "shutdown":
			return []string{"shutdown", "/s", "/t", "0"}, true
		case "logout":
			return []string{"shutdown", "/l"}, true
		case "emptytrash":
			return []string{"powershell", "-Command", "Clear-RecycleBin", "-Force", "-ErrorAction", "SilentlyContinue"}, true
		}
	default: // linux and friends
		switch verb {
		case "lock":
			return []string{"loginctl", "lock-session"}, true
		case "sleep":
			return []string{"systemctl", "suspend"}, true
		case "restart":
			return []string{"systemctl", "reboot"}, true
		case "shutdown":
			return []string{"systemctl", "poweroff"}, true
		case "logout":
			return []string{"loginctl", "terminate-user", os.Getenv("USER")}, true
		case "emptytrash":
			return []string{"gio", "trash", "--empty"}, true
		}
	}
	return nil, false
}
