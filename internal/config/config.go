package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pagesmith-dev/pagesmith/internal/branding"
	"github.com/spf13/viper"
)

const fileType = "yaml"

//go:embed defaults.yaml
var defaultConfig []byte

// Config is the resolved project configuration. All paths are slash-separated
// and relative to the site root.
type Config struct {
	Version       string        `mapstructure:"version" yaml:"version"`
	Paths         Paths         `mapstructure:"paths" yaml:"paths"`
	Imports       Imports       `mapstructure:"imports" yaml:"imports"`
	PageExtension string        `mapstructure:"page_extension" yaml:"page_extension"`
	BackupSuffix  string        `mapstructure:"backup_suffix" yaml:"backup_suffix"`
	Exclude       []string      `mapstructure:"exclude" yaml:"exclude"`
	IndexPages    []IndexPage   `mapstructure:"index_pages" yaml:"index_pages"`
	DetailGroups  []DetailGroup `mapstructure:"detail_groups" yaml:"detail_groups"`

	// File is the project config file that was read. Empty when only the
	// embedded defaults apply.
	File string `mapstructure:"-" yaml:"-"`
}

// Paths locates the files the tool reads and writes.
type Paths struct {
	Pages    string `mapstructure:"pages" yaml:"pages"`
	Layout   string `mapstructure:"layout" yaml:"layout"`
	LinkList string `mapstructure:"link_list" yaml:"link_list"`
	Registry string `mapstructure:"registry" yaml:"registry"`
	Data     string `mapstructure:"data" yaml:"data"`
	Public   string `mapstructure:"public" yaml:"public"`
}

// Imports holds the module specifiers written into page preambles.
type Imports struct {
	Layout   string `mapstructure:"layout" yaml:"layout"`
	LinkList string `mapstructure:"link_list" yaml:"link_list"`
	Registry string `mapstructure:"registry" yaml:"registry"`
}

// IndexPage maps a page identity (path under Paths.Pages) to the title and
// registry list of a section index. List may be empty for sections that
// have no links yet.
type IndexPage struct {
	Page  string `mapstructure:"page" yaml:"page"`
	Title string `mapstructure:"title" yaml:"title"`
	List  string `mapstructure:"list" yaml:"list"`
}

// DetailGroup binds pages under Prefix, or matching the doublestar Pattern,
// to a registry list shown as their sidebar.
type DetailGroup struct {
	Prefix  string `mapstructure:"prefix" yaml:"prefix,omitempty"`
	Pattern string `mapstructure:"pattern" yaml:"pattern,omitempty"`
	List    string `mapstructure:"list" yaml:"list"`
}

// LoadOptions controls where Load looks for the project file.
type LoadOptions struct {
	Root string // site root; the default config file is looked up here
	File string // explicit config file; must exist when set
}

// Defaults returns the embedded default document.
func Defaults() []byte {
	return append([]byte(nil), defaultConfig...)
}

// FilePath returns the default project config path under root.
func FilePath(root string) string {
	return filepath.Join(root, branding.ConfigFile())
}

// Load layers the project file (if any) and PAGESMITH_* environment variables
// over the embedded defaults.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	v.SetConfigType(fileType)
	if err := v.ReadConfig(bytes.NewReader(defaultConfig)); err != nil {
		return nil, fmt.Errorf("reading embedded defaults: %w", err)
	}

	path := opts.File
	explicit := path != ""
	if !explicit {
		path = FilePath(opts.Root)
	}

	var used string
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := Validate(path, data); err != nil {
			return nil, err
		}
		v.SetConfigFile(path)
		v.SetConfigType(fileType)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		used = path
	case explicit || !os.IsNotExist(err):
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.File = used

	if err := CheckVersion(cfg.Version); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IndexPageFor returns the index mapping for a page identity.
func (c *Config) IndexPageFor(identity string) (IndexPage, bool) {
	for _, ip := range c.IndexPages {
		if ip.Page == identity {
			return ip, true
		}
	}
	return IndexPage{}, false
}

// DetailGroupFor returns the first detail group matching a page identity.
func (c *Config) DetailGroupFor(identity string) (DetailGroup, bool) {
	for _, g := range c.DetailGroups {
		if g.Matches(identity) {
			return g, true
		}
	}
	return DetailGroup{}, false
}

// Matches reports whether identity belongs to the group.
func (g DetailGroup) Matches(identity string) bool {
	if g.Pattern != "" {
		ok, err := doublestar.Match(g.Pattern, identity)
		return err == nil && ok
	}
	return g.Prefix != "" && strings.HasPrefix(identity, g.Prefix)
}

// Excluded reports whether a page identity matches one of the exclude globs.
func (c *Config) Excluded(identity string) bool {
	for _, pattern := range c.Exclude {
		if ok, err := doublestar.Match(pattern, identity); err == nil && ok {
			return true
		}
	}
	return false
}

// ListNames returns every registry list referenced by the mapping tables,
// in first-mention order.
func (c *Config) ListNames() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, ip := range c.IndexPages {
		add(ip.List)
	}
	for _, g := range c.DetailGroups {
		add(g.List)
	}
	return names
}
