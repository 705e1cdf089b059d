package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/nestdesk/searchcore/internal/core/domain"
	"github.com/nestdesk/searchcore/internal/core/ports/driven"
	"github.com/nestdesk/searchcore/internal/logger"
)

// Ensure ConfigSource implements the interface.
var _ driven.ConfigSource = (*ConfigSource)(nil)

// fileConfig mirrors the TOML layout. Every field is optional; unset
// fields keep their defaults.
type fileConfig struct {
	Search struct {
		MinQueryLength *int               `toml:"min_query_length"`
		MaxQueryLength *int               `toml:"max_query_length"`
		PerTypeLimit   *int               `toml:"per_type_limit"`
		MaxResults     *int               `toml:"max_results"`
		DefaultLimit   *int               `toml:"default_limit"`
		TypeTimeoutMs  *int               `toml:"type_timeout_ms"`
		TypeWeights    map[string]float64 `toml:"type_weights"`
		MaxSuggestions *int               `toml:"max_suggestions"`
	} `toml:"search"`

	Sync struct {
		MaxPendingEvents *int `toml:"max_pending_events"`
	} `toml:"sync"`

	Analytics struct {
		QueueSize       *int `toml:"queue_size"`
		BatchSize       *int `toml:"batch_size"`
		FlushIntervalMs *int `toml:"flush_interval_ms"`
	} `toml:"analytics"`
}

// ConfigSource is a TOML-file implementation of driven.ConfigSource.
// Values in the file override domain.DefaultConfig; a missing file
// yields the defaults.
type ConfigSource struct {
	mu       sync.RWMutex
	filePath string
	current  domain.Config

	watcher   *fsnotify.Watcher
	stopOnce  sync.Once
	stopCh    chan struct{}
	watchDone chan struct{}
}

// NewConfigSource creates a config source reading configDir/search.toml.
// If configDir is empty, defaults to ~/.searchcore.
func NewConfigSource(configDir string) (*ConfigSource, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".searchcore")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &ConfigSource{
		filePath: filepath.Join(configDir, "search.toml"),
		current:  domain.DefaultConfig(),
		stopCh:   make(chan struct{}),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Config returns the current configuration snapshot.
func (s *ConfigSource) Config() domain.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Path returns the configuration file path.
func (s *ConfigSource) Path() string {
	return s.filePath
}

// Load reads the file and replaces the current snapshot. A missing
// file resets to defaults; a malformed file is an error and leaves the
// previous snapshot in place.
func (s *ConfigSource) Load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.current = domain.DefaultConfig()
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	cfg := domain.DefaultConfig()
	applyOverrides(&cfg, &fc)

	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
	return nil
}

// Watch starts reloading the file on change. Stop cancels it.
func (s *ConfigSource) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the directory, not the file: editors replace files on save
	// and a watch on the old inode would go stale.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching config directory: %w", err)
	}

	s.watcher = watcher
	s.watchDone = make(chan struct{})

	go s.watch()
	return nil
}

// Stop ends watching. Safe to call without a prior Watch.
func (s *ConfigSource) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	if s.watchDone != nil {
		<-s.watchDone
	}
}

// watch reloads on write or create events for the config file.
func (s *ConfigSource) watch() {
	defer close(s.watchDone)
	defer s.watcher.Close()

	// Editors emit bursts of events per save; debounce them.
	var pending <-chan time.Time

	for {
		select {
		case <-s.stopCh:
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Name != s.filePath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending = time.After(100 * time.Millisecond)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher error: %v", err)

		case <-pending:
			pending = nil
			if err := s.Load(); err != nil {
				logger.Warn("config reload failed, keeping previous values: %v", err)
				continue
			}
			logger.Info("configuration reloaded from %s", s.filePath)
		}
	}
}

// applyOverrides copies set file values onto the defaults.
func applyOverrides(cfg *domain.Config, fc *fileConfig) {
	setInt := func(dst *int, src *int) {
		if src != nil && *src > 0 {
			*dst = *src
		}
	}

	setInt(&cfg.MinQueryLength, fc.Search.MinQueryLength)
	setInt(&cfg.MaxQueryLength, fc.Search.MaxQueryLength)
	setInt(&cfg.PerTypeLimit, fc.Search.PerTypeLimit)
	setInt(&cfg.MaxResults, fc.Search.MaxResults)
	setInt(&cfg.DefaultLimit, fc.Search.DefaultLimit)
	setInt(&cfg.MaxSuggestions, fc.Search.MaxSuggestions)
	if fc.Search.TypeTimeoutMs != nil && *fc.Search.TypeTimeoutMs > 0 {
		cfg.TypeTimeout = time.Duration(*fc.Search.TypeTimeoutMs) * time.Millisecond
	}
	for name, weight := range fc.Search.TypeWeights {
		t := domain.ContentType(name)
		if t.IsValid() && weight > 0 {
			cfg.TypeWeights[t] = weight
		}
	}

	setInt(&cfg.MaxPendingEvents, fc.Sync.MaxPendingEvents)

	setInt(&cfg.AnalyticsQueueSize, fc.Analytics.QueueSize)
	setInt(&cfg.AnalyticsBatchSize, fc.Analytics.BatchSize)
	if fc.Analytics.FlushIntervalMs != nil && *fc.Analytics.FlushIntervalMs > 0 {
		cfg.AnalyticsFlushInterval = time.Duration(*fc.Analytics.FlushIntervalMs) * time.Millisecond
	}
}
