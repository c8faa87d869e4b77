// Package intent recognizes special query interpretations: literal system
// commands, arithmetic expressions, and web-search shortcuts. Classifiers
// return nil on no-match and never return errors.
package intent

import (
	"strings"

	"github.com/runger/beacon/internal/result"
)

// ClassifySystemAction matches the query against the fixed system command
// vocabulary. A hit is a hard short-circuit for the whole pipeline: the
// engine returns the action row alone.
func ClassifySystemAction(query string) *result.Result {
	switch strings.ToLower(strings.TrimSpace(query)) {
	case "lock":
		return &result.Result{
			Name:        "Lock Computer",
			Description: "Lock your workstation",
			Target:      "lock",
			Kind:        result.KindAction,
		}
	case "sleep":
		return &result.Result{
			Name:        "Sleep",
			Description: "Put computer to sleep",
			Target:      "sleep",
			Kind:        result.KindAction,
		}
	case "restart", "reboot":
		return &result.Result{
			Name:        "Restart",
			Description: "Restart your computer",
			Target:      "restart",
			Kind:        result.KindAction,
		}
	case "shutdown", "shut down":
		return &result.Result{
			Name:        "Shutdown",
			Description: "Shut down your computer",
			Target:      "shutdown",
			Kind:        result.KindAction,
		}
	case "logout", "sign out", "logoff":
		return &result.Result{
			Name:        "Sign Out",
			Description: "Sign out of your account",
			Target:      "logout",
			Kind:        result.KindAction,
		}
	case "empty trash", "empty recycle bin":
		return &result.Result{
			Name:        "Empty Trash",
			Description: "Permanently delete items in the trash",
			Target:      "emptytrash",
			Kind:        result.KindAction,
		}
	}
	return nil
}
