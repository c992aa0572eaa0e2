// Package prefs handles submatch user preferences persistence.
// Preferences are stored in ~/.config/submatch/prefs.toml.
package prefs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/submatch/internal/listview"
)

// Prefs holds user preferences for submatch.
type Prefs struct {
	Theme   string `toml:"theme"`
	LastTab string `toml:"last_tab,omitempty"`
	// ItemsPerPage is keyed by tab anchor, e.g. "#pins".
	ItemsPerPage map[string]int `toml:"items_per_page,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/submatch/prefs.toml"
	defaultTheme     = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Defaults returns the preferences used when nothing is stored.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme, ItemsPerPage: map[string]int{}}
}

// PageSize returns the stored page size for a tab, or zero when none is stored.
func (p Prefs) PageSize(tab string) int {
	return p.ItemsPerPage[tab]
}

// SetPageSize records a tab's page size.
func (p *Prefs) SetPageSize(tab string, size int) {
	if p.ItemsPerPage == nil {
		p.ItemsPerPage = map[string]int{}
	}
	p.ItemsPerPage[tab] = size
}

// Load reads preferences from the given path. Missing or unreadable files
// yield defaults.
func Load(path string) Prefs {
	prefs := Defaults()

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs
	}

	file, err := os.Open(resolved)
	if err != nil {
		return prefs
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Defaults()
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	prefs.LastTab = strings.TrimSpace(prefs.LastTab)
	if prefs.ItemsPerPage == nil {
		prefs.ItemsPerPage = map[string]int{}
	}
	for tab, size := range prefs.ItemsPerPage {
		if !slices.Contains(listview.PageSizes, size) {
			delete(prefs.ItemsPerPage, tab)
		}
	}

	return prefs
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
