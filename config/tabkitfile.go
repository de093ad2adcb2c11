package config

// .tabkit.yaml configuration file support.
//
// The file is optional. Every setting can also come from the environment
// (TABKIT_* variables), which overrides the file. Relative paths are
// resolved against the directory holding the file.

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .tabkit.yaml structure.
type File struct {
	// AppRoot is the host application root (default: the project root).
	AppRoot string `yaml:"app_root,omitempty" env:"TABKIT_APP_ROOT"`
	// AppTranslations is the resource directory of the "app" pseudo-group
	// (default "<app_root>/translations").
	AppTranslations string `yaml:"app_translations,omitempty" env:"TABKIT_APP_TRANSLATIONS"`
	// GroupsDir is scanned for groups: every subdirectory holding
	// Resources/translations becomes a group named after the subdirectory.
	GroupsDir string `yaml:"groups_dir,omitempty" env:"TABKIT_GROUPS_DIR"`
	// Groups are explicitly declared groups. They win over detected ones.
	Groups []GroupEntry `yaml:"groups,omitempty"`
	// Format is the extension of resource files created by import (default "yml").
	Format string `yaml:"format,omitempty" env:"TABKIT_FORMAT"`
	// Separator is the default table delimiter (default TAB).
	Separator string `yaml:"separator,omitempty" env:"TABKIT_SEPARATOR"`
	// ReferenceLocale is the default reference locale of export.
	ReferenceLocale string `yaml:"reference_locale,omitempty" env:"TABKIT_REFERENCE_LOCALE"`
	// Locales is the default locale list of export, import and status.
	Locales []string `yaml:"locales,omitempty" env:"TABKIT_LOCALES" envSeparator:","`
	// LogLevel is one of debug, info, warn, error (default "info").
	LogLevel string `yaml:"log_level,omitempty" env:"TABKIT_LOG_LEVEL"`
	// NoColor disables colored log output.
	NoColor bool `yaml:"no_color,omitempty" env:"TABKIT_NO_COLOR"`
	// NoLock disables the .tabkit.lock export record.
	NoLock bool `yaml:"no_lock,omitempty" env:"TABKIT_NO_LOCK"`

	// dir is the directory relative paths are resolved against.
	dir string
}

// GroupEntry declares one resource group.
type GroupEntry struct {
	// Name is the group name used in tables and on the command line.
	Name string `yaml:"name"`
	// Path is the group base path; its files live in Resources/translations.
	Path string `yaml:"path"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// FileName is the default config file name.
const FileName = ".tabkit.yaml"

// DefaultFormat is the resource file extension used when none is configured.
const DefaultFormat = "yml"

// Load reads .tabkit.yaml from rootDir (if present), applies environment
// overrides and defaults, and validates the result.
func Load(rootDir string) (*File, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}
	f := &File{dir: absRoot}

	path := filepath.Join(absRoot, FileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, f); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := env.Parse(f); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	// Defaults
	if f.AppRoot == "" {
		f.AppRoot = "."
	}
	f.AppRoot = f.abs(f.AppRoot)
	if f.AppTranslations == "" {
		f.AppTranslations = filepath.Join(f.AppRoot, "translations")
	}
	f.AppTranslations = f.abs(f.AppTranslations)
	if f.GroupsDir != "" {
		f.GroupsDir = f.abs(f.GroupsDir)
	}
	if f.Format == "" {
		f.Format = DefaultFormat
	}
	f.Format = strings.TrimPrefix(strings.ToLower(f.Format), ".")
	if f.LogLevel == "" {
		f.LogLevel = "info"
	}

	// Validate groups
	seen := make(map[string]bool)
	for i := range f.Groups {
		g := &f.Groups[i]
		if g.Name == "" {
			return nil, fmt.Errorf("%s: group #%d has no name", path, i+1)
		}
		if g.Name == AppGroup {
			return nil, fmt.Errorf("%s: group name %q is reserved for the application", path, AppGroup)
		}
		if strings.Contains(g.Name, ",") {
			return nil, fmt.Errorf("%s: group name %q must not contain a comma", path, g.Name)
		}
		if g.Path == "" {
			return nil, fmt.Errorf("%s: group %q has no path", path, g.Name)
		}
		if seen[g.Name] {
			return nil, fmt.Errorf("%s: group %q is declared twice", path, g.Name)
		}
		seen[g.Name] = true
		g.Path = f.abs(g.Path)
	}

	return f, nil
}

// Dir returns the directory the configuration was loaded from.
func (f *File) Dir() string { return f.dir }

func (f *File) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(f.dir, p)
}
