package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// isolateEnv points every path the commands touch at a temp directory so
// tests never read or write the real user environment. It returns the
// base directory.
func isolateEnv(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))
	t.Setenv("XDG_DATA_DIRS", filepath.Join(base, "share"))
	t.Setenv("XDG_RUNTIME_DIR", filepath.Join(base, "run"))
	t.Setenv("PATH", filepath.Join(base, "bin"))
	t.Setenv("BEACON_SOCKET", "")

	for _, dir := range []string{"config", "data", "share", "run", "bin"} {
		if err := os.MkdirAll(filepath.Join(base, dir), 0o700); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
	}
	return base
}

// writeDesktopFile drops a .desktop fixture into dir.
func writeDesktopFile(t *testing.T, dir, file, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() failed: %v", err)
	}
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()
	_ = w.Close()
	os.Stdout = old
	out := <-outC
	_ = r.Close()
	return out
}
