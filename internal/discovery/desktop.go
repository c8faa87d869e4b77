// Package discovery populates the launcher catalog. It scans XDG desktop
// entries, executables on PATH, and user-configured folders, then
// publishes the merged snapshot wholesale; the engine never sees a
// half-built catalog.
package discovery

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"

	"github.com/runger/beacon/internal/catalog"
	"github.com/runger/beacon/internal/result"
)

// parseDesktopFile reads a freedesktop .desktop file and converts it into
// a catalog entry. It returns (nil, nil) for entries that should not be
// listed: non-Application types, NoDisplay/Hidden entries, and entries
// whose Exec line is empty after field-code stripping.
func parseDesktopFile(path string) (*catalog.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open desktop file: %w", err)
	}
	defer f.Close()

	var (
		name, comment, genericName, exec, entryType string
		noDisplay, hidden                           bool
		inDesktopEntry                              bool
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inDesktopEntry = line == "[Desktop Entry]"
			continue
		}
		if !inDesktopEntry {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "Name":
			name = strings.TrimSpace(value)
		case "Comment":
			comment = strings.TrimSpace(value)
		case "GenericName":
			genericName = strings.TrimSpace(value)
		case "Exec":
			exec = strings.TrimSpace(value)
		case "Type":
			entryType = strings.TrimSpace(value)
		case "NoDisplay":
			noDisplay = strings.TrimSpace(value) == "true"
		case "Hidden":
			hidden = strings.TrimSpace(value) == "true"
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read desktop file: %w", err)
	}

	if entryType != "Application" || noDisplay || hidden || name == "" {
		return nil, nil
	}

	cmdline := stripFieldCodes(exec)
	argv, err := shlex.Split(cmdline)
	if err != nil || len(argv) == 0 {
		return nil, nil
	}

	description := comment
	if description == "" {
		description = genericName
	}
	if description == "" {
		description = "Application"
	}

	return &catalog.Entry{
		Name:        name,
		Target:      cmdline,
		Description: description,
		Kind:        result.KindApp,
	}, nil
}

// stripFieldCodes removes freedesktop Exec field codes (%f, %U, %c, ...)
// and unescapes doubled percent signs.
func stripFieldCodes(exec string) string {
	fields := strings.Fields(exec)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) == 2 && f[0] == '%' && f[1] != '%' {
			continue
		}
		out = append(out, strings.ReplaceAll(f, "%%", "%"))
	}
	return strings.Join(out, " ")
}
