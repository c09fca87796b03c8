package deckgen

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Engine provides the main API for building decks from definitions.
// Use New() to create a new engine instance.
type Engine struct {
	config    *Config
	cache     *TemplateMapCache
	open      SheetOpener
	now       func() time.Time
	sourceDir string
}

// New creates a new engine with default configuration.
func New() *Engine {
	return &Engine{
		config: GetGlobalConfig(),
		cache:  defaultCache,
		open:   OpenSheet,
		now:    time.Now,
	}
}

// NewWithConfig creates a new engine with custom configuration.
func NewWithConfig(config *Config) *Engine {
	return &Engine{
		config: config,
		cache:  NewTemplateMapCache(),
		open:   OpenSheet,
		now:    time.Now,
	}
}

// LoadTemplateMap loads and parses a template map from a file path.
// The map is cached if caching is enabled in the configuration.
func (e *Engine) LoadTemplateMap(path string) (*TemplateMap, error) {
	// Check cache first if enabled
	if e.config.CacheMaxSize > 0 && e.cache != nil {
		if tm, ok := e.cache.Get(path); ok {
			return tm, nil
		}
	}

	tm, err := LoadTemplateMap(path)
	if err != nil {
		return nil, err
	}

	// Store in cache if enabled
	if e.config.CacheMaxSize > 0 && e.cache != nil {
		e.cache.Set(path, tm)
	}

	return tm, nil
}

// Build parses a definition from an io.Reader and assembles a deck against
// the given template map. name identifies the definition in positions and
// error messages.
func (e *Engine) Build(r io.Reader, name string, tm *TemplateMap) (*Deck, error) {
	return e.build(r, name, tm, e.sourceDir)
}

// BuildFile parses a definition file and assembles a deck against the
// template map at mapPath. Relative import paths resolve against the
// definition file's directory unless WithSourceDir overrides it.
func (e *Engine) BuildFile(path, mapPath string) (*Deck, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open definition file: %w", err)
	}
	defer file.Close()

	tm, err := e.LoadTemplateMap(mapPath)
	if err != nil {
		return nil, err
	}

	dir := e.sourceDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	return e.build(file, path, tm, dir)
}

func (e *Engine) build(r io.Reader, name string, tm *TemplateMap, sourceDir string) (*Deck, error) {
	pres, err := NewPreprocessor(name).Process(r)
	if err != nil {
		return nil, err
	}

	builder := &deckBuilder{
		file:      name,
		tm:        tm,
		open:      e.open,
		sourceDir: sourceDir,
		now:       e.now,
		dateFmt:   e.config.DateFormat,
		strict:    e.config.StrictMode,
		diags:     &Diagnostics{},
	}
	return builder.build(pres)
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// SetConfig updates the engine's configuration.
// Note that some settings (like cache size) may not take effect immediately.
func (e *Engine) SetConfig(config *Config) {
	e.config = config
}

// ClearCache removes all template maps from the cache.
func (e *Engine) ClearCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// Close releases any resources held by the engine.
func (e *Engine) Close() error {
	// Currently no resources to release, but kept for future use
	return nil
}

// Option represents a configuration option for the engine.
type Option func(*Engine)

// WithConfig returns an option that sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		e.config = config
	}
}

// WithCache returns an option that sets the cache size (0 disables caching).
func WithCache(maxSize int) Option {
	return func(e *Engine) {
		e.config.CacheMaxSize = maxSize
	}
}

// WithSheetOpener returns an option that sets how import sources are opened.
func WithSheetOpener(open SheetOpener) Option {
	return func(e *Engine) {
		e.open = open
	}
}

// WithClock returns an option that sets the clock used for date elements.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithSourceDir returns an option that fixes the directory relative import
// paths resolve against.
func WithSourceDir(dir string) Option {
	return func(e *Engine) {
		e.sourceDir = dir
	}
}

// NewWithOptions creates a new engine with the specified options.
func NewWithOptions(opts ...Option) *Engine {
	engine := New()
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// DefaultEngine is the global default engine instance.
// It uses the global configuration.
var DefaultEngine = New()

// Module-level convenience functions that use the default engine.

// Build parses a definition from an io.Reader using the default engine.
func Build(r io.Reader, name string, tm *TemplateMap) (*Deck, error) {
	return DefaultEngine.Build(r, name, tm)
}

// BuildFile parses a definition file using the default engine.
func BuildFile(path, mapPath string) (*Deck, error) {
	return DefaultEngine.BuildFile(path, mapPath)
}

// ClearCache clears the global template map cache.
func ClearCache() {
	DefaultEngine.ClearCache()
}

// SetCacheConfig updates the global cache configuration.
func SetCacheConfig(maxSize int, ttl time.Duration) {
	config := GetGlobalConfig()
	config.CacheMaxSize = maxSize
	config.CacheTTL = ttl
	SetGlobalConfig(config)
}
