package which

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no executable matches a command name.
var ErrNotFound = errors.New("executable not found")

// Which resolves command names against a list of search directories.
type Which struct {
	paths   []string
	usePATH bool
	getenv  func(string) string
}

// New creates a Which that searches paths before $PATH.
func New(paths ...string) *Which {
	return &Which{
		paths:   append([]string(nil), paths...),
		usePATH: true,
		getenv:  os.Getenv,
	}
}

// Path appends search directories. They are consulted in insertion order,
// ahead of $PATH.
func (w *Which) Path(dirs ...string) *Which {
	w.paths = append(w.paths, dirs...)
	return w
}

// Paths returns a copy of the configured search directories.
func (w *Which) Paths() []string {
	return append([]string(nil), w.paths...)
}

// WithoutSystemPath stops the lookup from falling back to $PATH.
func (w *Which) WithoutSystemPath() *Which {
	w.usePATH = false
	return w
}

// Resolve returns the absolute path of the executable named name.
//
// A name containing a path separator is checked as-is (relative names are
// taken relative to the process working directory). Otherwise each search
// directory is tried in turn. The returned error wraps ErrNotFound when no
// candidate is an executable regular file.
func (w *Which) Resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty command name", ErrNotFound)
	}

	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		if p, ok := executable(name); ok {
			return p, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	for _, dir := range w.searchDirs() {
		// Absolute directories keep Join from collapsing "./name" into a
		// bare name, which LookPath would search on $PATH instead.
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		if p, ok := executable(filepath.Join(abs, name)); ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (w *Which) searchDirs() []string {
	dirs := make([]string, 0, len(w.paths)+8)
	dirs = append(dirs, w.paths...)
	if w.usePATH {
		for _, dir := range filepath.SplitList(w.getenv("PATH")) {
			if dir == "" {
				// An empty PATH entry means the current directory.
				dir = "."
			}
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// executable reports whether candidate is an executable regular file and
// returns its absolute path. exec.LookPath handles the platform rules
// (exec bits on unix, PATHEXT on windows) for names with a separator.
func executable(candidate string) (string, bool) {
	p, err := exec.LookPath(candidate)
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", false
	}
	return abs, true
}
