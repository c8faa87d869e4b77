package discovery

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/runger/beacon/internal/catalog"
	"github.com/runger/beacon/internal/config"
	"github.com/runger/beacon/internal/result"
)

// Scanner discovers launchable targets. Zero-value fields are filled from
// the environment by NewScanner; tests set them directly.
type Scanner struct {
	// AppDirs are directories holding .desktop entries.
	AppDirs []string
	// PathDirs are directories holding executables (usually $PATH).
	PathDirs []string
	// Folders are user-configured directories indexed as File entries.
	Folders []string
	// Excluded folders are skipped entirely.
	Excluded []string

	Logger *slog.Logger
}

// NewScanner builds a Scanner from the search configuration and the
// environment (XDG data dirs and PATH).
func NewScanner(search config.SearchConfig, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		AppDirs:  applicationDirs(),
		PathDirs: filepath.SplitList(os.Getenv("PATH")),
		Folders:  search.Folders,
		Excluded: search.ExcludedFolders,
		Logger:   logger,
	}
}

// applicationDirs returns the XDG application directories, user dir first.
func applicationDirs() []string {
	var dirs []string

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataHome = filepath.Join(home, ".local", "share")
		}
	}
	if dataHome != "" {
		dirs = append(dirs, filepath.Join(dataHome, "applications"))
	}

	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}
	for _, d := range filepath.SplitList(dataDirs) {
		if d != "" {
			dirs = append(dirs, filepath.Join(d, "applications"))
		}
	}
	return dirs
}

// Scan walks every configured root concurrently and returns the merged,
// deduplicated catalog snapshot. Unreadable roots are skipped, not fatal.
func (s *Scanner) Scan(ctx context.Context) (*catalog.Snapshot, error) {
	pool, err := ants.NewPool(runtime.NumCPU())
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		entries []catalog.Entry
		wg      sync.WaitGroup
	)
	collect := func(batch []catalog.Entry) {
		mu.Lock()
		entries = append(entries, batch...)
		mu.Unlock()
	}

	submit := func(task func()) {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			task()
		}); err != nil {
			// Pool rejected the task (released); run inline.
			task()
			wg.Done()
		}
	}

	// PATH batches are kept per directory so precedence survives the
	// concurrent scan: the first dir containing a name wins.
	pathBatches := make([][]catalog.Entry, len(s.PathDirs))

	for _, dir := range s.AppDirs {
		dir := dir
		submit(func() { collect(s.scanDesktopDir(ctx, dir)) })
	}
	for i, dir := range s.PathDirs {
		i, dir := i, dir
		submit(func() { pathBatches[i] = s.scanPathDir(ctx, dir) })
	}
	for _, dir := range s.Folders {
		dir := dir
		submit(func() { collect(s.scanFolder(ctx, dir)) })
	}

	wg.Wait()

	entries = append(entries, dedupePathEntries(pathBatches)...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return catalog.NewSnapshot(dedupe(entries)), nil
}

// scanDesktopDir parses every .desktop file directly inside dir.
func (s *Scanner) scanDesktopDir(ctx context.Context, dir string) []catalog.Entry {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var entries []catalog.Entry
	for _, item := range items {
		if ctx.Err() != nil {
			return entries
		}
		if item.IsDir() || !strings.HasSuffix(item.Name(), ".desktop") {
			continue
		}
		path := filepath.Join(dir, item.Name())
		entry, err := parseDesktopFile(path)
		if err != nil {
			s.Logger.Debug("skipping desktop file", "path", path, "error", err)
			continue
		}
		if entry != nil {
			entries = append(entries, *entry)
		}
	}
	return entries
}

// scanPathDir lists executables directly inside a PATH directory.
func (s *Scanner) scanPathDir(ctx context.Context, dir string) []catalog.Entry {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var entries []catalog.Entry
	for _, item := range items {
		if ctx.Err() != nil {
			return entries
		}
		if item.IsDir() {
			continue
		}
		info, err := item.Info()
		if err != nil || info.Mode()&0o111 == 0 {
			continue
		}
		entries = append(entries, catalog.Entry{
			Name:        item.Name(),
			Target:      filepath.Join(dir, item.Name()),
			Description: "Command (" + dir + ")",
			Kind:        result.KindApp,
		})
	}
	return entries
}

// scanFolder indexes regular files under a user folder as File entries,
// skipping excluded and hidden directories.
func (s *Scanner) scanFolder(ctx context.Context, root string) []catalog.Entry {
	var entries []catalog.Entry

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, keep going
		}
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || s.isExcluded(path)) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		entries = append(entries, catalog.Entry{
			Name:        d.Name(),
			Target:      path,
			Description: filepath.Dir(path),
			Kind:        result.KindFile,
		})
		return nil
	})
	return entries
}

func (s *Scanner) isExcluded(path string) bool {
	for _, ex := range s.Excluded {
		if ex == "" {
			continue
		}
		if path == ex || strings.HasPrefix(path, strings.TrimSuffix(ex, "/")+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// dedupePathEntries flattens per-directory PATH batches keeping one entry
// per executable name, in PATH order.
func dedupePathEntries(batches [][]catalog.Entry) []catalog.Entry {
	seen := make(map[string]struct{})
	var out []catalog.Entry
	for _, batch := range batches {
		for _, e := range batch {
			if _, dup := seen[e.Name]; dup {
				continue
			}
			seen[e.Name] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// dedupe removes duplicate name+target pairs and sorts entries by name
// (then target) so catalog order is deterministic across scans.
func dedupe(entries []catalog.Entry) []catalog.Entry {
	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		key := e.Name + "\x00" + e.Target
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Target < out[j].Target
	})
	return out
}
