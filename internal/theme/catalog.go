package theme

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrThemeNotFound is returned when no bundled or user theme has the name.
var ErrThemeNotFound = errors.New("theme not found")

// ThemesDir returns the path to the user's themes directory.
func ThemesDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "themekit", "themes"), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "themekit", "themes"), nil
}

// Catalog resolves theme names to stylesheets.
//
// Resolution order is the user themes directory, then the bundled themes, so a
// user file overrides a bundled theme of the same name. Resolved themes are
// cached until Invalidate is called for them.
type Catalog struct {
	mu     sync.RWMutex
	dir    string
	logger *slog.Logger
	cache  map[string]*Theme
}

// NewCatalog creates a catalog over the bundled themes and dir.
// An empty dir serves bundled themes only.
func NewCatalog(dir string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		dir:    dir,
		logger: logger,
		cache:  make(map[string]*Theme),
	}
}

// Dir returns the user themes directory, which may be empty.
func (c *Catalog) Dir() string {
	return c.dir
}

// List returns the names of all available themes, sorted.
func (c *Catalog) List() []string {
	seen := make(map[string]bool)
	var names []string

	for _, name := range BundledNames() {
		seen[name] = true
		names = append(names, name)
	}
	for _, name := range c.userThemes() {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names
}

// Has reports whether name resolves to a theme.
func (c *Catalog) Has(name string) bool {
	_, err := c.Get(name)
	return err == nil
}

// CSS returns the stylesheet of the named theme with imports inlined.
func (c *Catalog) CSS(name string) (string, error) {
	t, err := c.Get(name)
	if err != nil {
		return "", err
	}
	return t.CSS, nil
}

// Get resolves the named theme.
func (c *Catalog) Get(name string) (*Theme, error) {
	if !validName(name) || strings.HasPrefix(name, "_") {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}

	c.mu.RLock()
	t, ok := c.cache[name]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}

	t, err := c.resolve(name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[name] = t
	c.mu.Unlock()
	return t, nil
}

func (c *Catalog) resolve(name string) (*Theme, error) {
	if c.dir != "" {
		path := filepath.Join(c.dir, name+".css")
		if _, err := os.Stat(path); err == nil {
			t, err := loadFile(name, path)
			if err == nil {
				c.logger.Debug("loaded user theme", "name", name, "path", path)
				return t, nil
			}
			c.logger.Warn("failed to load user theme, trying bundled", "theme", name, "error", err)
		}
	}

	if t, ok := loadEmbedded(name); ok {
		c.logger.Debug("loaded bundled theme", "name", name)
		return t, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
}

// Invalidate drops the cached stylesheet of name. An empty name drops all.
func (c *Catalog) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" {
		c.cache = make(map[string]*Theme)
		return
	}
	delete(c.cache, name)
}

// Info describes every available theme.
func (c *Catalog) Info() ([]ThemeInfo, error) {
	var infos []ThemeInfo
	for _, name := range c.List() {
		t, err := c.Get(name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, ThemeInfo{
			Name:      name,
			Path:      t.Path,
			Size:      int64(len(t.CSS)),
			ModTime:   t.ModTime,
			IsDefault: name == DefaultTheme,
			IsBundled: t.Bundled,
			Overrides: !t.Bundled && IsBundled(name),
		})
	}
	return infos, nil
}

// CreateDir creates the user themes directory if it doesn't exist.
func (c *Catalog) CreateDir() error {
	if c.dir == "" {
		return nil
	}
	return os.MkdirAll(c.dir, 0755)
}

func (c *Catalog) userThemes() []string {
	if c.dir == "" {
		return nil
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Debug("failed to read themes directory", "error", err)
		}
		return nil
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") || filepath.Ext(name) != ".css" {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".css"))
	}
	return names
}
