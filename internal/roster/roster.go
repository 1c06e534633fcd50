package roster

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// ErrInvalidName is returned when a player name is empty after trimming.
var ErrInvalidName = errors.New("roster: player name must not be empty")

// DefaultPlayers is the roster used when no players file exists yet.
var DefaultPlayers = []string{"U1", "U2", "U3", "U4", "U5", "U6", "U7", "U8"}

// Logger defines the logging interface used by the roster.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// playersFile is the YAML layout of the players file.
type playersFile struct {
	Players []string `yaml:"players"`
}

// Roster is the editable list of player names operators assign to runs.
//
// It is backed by an optional YAML file. Edits made through the API are
// written back; edits made to the file by hand are picked up by Watch.
// Roster is safe for concurrent use.
type Roster struct {
	mu      sync.RWMutex
	path    string
	players []string
	logger  Logger
}

// Open loads the roster from path. An empty path gives an in-memory
// roster; a missing file gives DefaultPlayers and is created on the
// first save.
func Open(path string) (*Roster, error) {
	r := &Roster{path: path, logger: noopLogger{}}
	if path == "" {
		r.players = append([]string(nil), DefaultPlayers...)
		return r, nil
	}

	players, err := readFile(path)
	if errors.Is(err, os.ErrNotExist) {
		r.players = append([]string(nil), DefaultPlayers...)
		return r, nil
	}
	if err != nil {
		return nil, err
	}
	r.players = players
	return r, nil
}

// SetLogger sets the logger for the roster.
func (r *Roster) SetLogger(logger Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Path returns the backing file path, empty for an in-memory roster.
func (r *Roster) Path() string { return r.path }

// List returns the player names in roster order.
func (r *Roster) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.players...)
}

// Replace sets the whole roster and saves it. Blank names are dropped,
// the rest are trimmed and deduplicated.
func (r *Roster) Replace(names []string) ([]string, error) {
	cleaned := normalize(names)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.saveLocked(cleaned); err != nil {
		return nil, err
	}
	r.players = cleaned
	return append([]string(nil), cleaned...), nil
}

// Add appends one player and saves the roster. Adding a name already
// present is a no-op.
func (r *Roster) Add(name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p == name {
			return append([]string(nil), r.players...), nil
		}
	}
	next := append(append([]string(nil), r.players...), name)
	if err := r.saveLocked(next); err != nil {
		return nil, err
	}
	r.players = next
	return append([]string(nil), next...), nil
}

// Reload re-reads the backing file.
func (r *Roster) Reload() error {
	if r.path == "" {
		return nil
	}
	players, err := readFile(r.path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.players = players
	r.logger.Info("players reloaded", "count", len(players))
	return nil
}

// Watch reloads the roster whenever its file is written, until ctx is
// cancelled. The parent directory is watched so editors that replace the
// file are handled. Watch returns nil for an in-memory roster.
func (r *Roster) Watch(ctx context.Context) error {
	if r.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(r.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				r.getLogger().Debug("players file changed", "op", event.Op.String())
				if err := r.Reload(); err != nil {
					r.getLogger().Warn("players reload failed", "error", err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.getLogger().Error("fsnotify error", "error", err)
		}
	}
}

func (r *Roster) getLogger() Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logger
}

// saveLocked writes names to the backing file through a temp file and
// rename. Caller holds r.mu.
func (r *Roster) saveLocked(names []string) error {
	if r.path == "" {
		return nil
	}
	data, err := yaml.Marshal(playersFile{Players: names})
	if err != nil {
		return fmt.Errorf("encoding players: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { //nolint:gosec // roster is not secret
		return fmt.Errorf("writing players file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replacing players file: %w", err)
	}
	return nil
}

func readFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading players file: %w", err)
	}
	var f playersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing players file: %w", err)
	}
	return normalize(f.Players), nil
}

func normalize(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
