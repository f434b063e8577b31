// Package loader reads the external risk-profile document and watches it for
// edits, so operators can retune stop distances without restarting the unit.
package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"stoppilot/internal/logger"
	symbolpkg "stoppilot/internal/pkg/symbol"
	"stoppilot/internal/risk"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk profile document.
type FileConfig struct {
	Default risk.Profile            `yaml:"default"`
	Symbols map[string]risk.Profile `yaml:"symbols"`
}

// Snapshot is the immutable profile set handed to callers. Version increments
// on every successful reload.
type Snapshot struct {
	Version  int64
	LoadedAt time.Time
	Default  risk.Profile
	Symbols  map[string]risk.Profile
}

// ChangeListener is invoked after a successful hot reload.
type ChangeListener func(Snapshot)

// ProfileLoader loads risk profiles from a YAML file and hot-reloads them on
// FS events. A reload that fails validation keeps the last good snapshot;
// configuration errors are only fatal at startup.
type ProfileLoader struct {
	path string
	v    *viper.Viper

	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []ChangeListener
}

var _ risk.ProfileSource = (*ProfileLoader)(nil)

// NewProfileLoader reads the document at path and starts watching it.
func NewProfileLoader(path string) (*ProfileLoader, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("profile loader requires path")
	}
	l := &ProfileLoader{path: path}
	if err := l.reload(); err != nil {
		return nil, err
	}
	// viper only drives the FS watch; parsing stays on the strict YAML
	// decoder so typos in pip fields are caught, not silently dropped.
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("watch profile config failed: %w", err)
	}
	l.v = v
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := l.reload(); err != nil {
			logger.Errorf("risk profile reload failed (%s): %v", evt.Name, err)
			return
		}
		l.notify()
	})
	v.WatchConfig()
	return l, nil
}

// Lookup returns the effective profile for a symbol.
func (l *ProfileLoader) Lookup(symbol string) risk.Profile {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if p, ok := l.snapshot.Symbols[symbolpkg.Normalize(symbol)]; ok {
		return p
	}
	return l.snapshot.Default
}

// Snapshot returns a copy of the current profile set.
func (l *ProfileLoader) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneSnapshot(l.snapshot)
}

// Subscribe registers a listener for future reloads.
func (l *ProfileLoader) Subscribe(fn ChangeListener) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

func (l *ProfileLoader) notify() {
	l.mu.RLock()
	snap := cloneSnapshot(l.snapshot)
	listeners := append([]ChangeListener(nil), l.listeners...)
	l.mu.RUnlock()
	for _, fn := range listeners {
		go func(cb ChangeListener) {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("risk profile listener panic: %v", r)
				}
			}()
			cb(snap)
		}(fn)
	}
}

func (l *ProfileLoader) reload() error {
	cfg, err := readProfileFile(l.path)
	if err != nil {
		return err
	}
	normalized := make(map[string]risk.Profile, len(cfg.Symbols))
	for sym, p := range cfg.Symbols {
		key := symbolpkg.Normalize(sym)
		if key == "" {
			return fmt.Errorf("profile with blank symbol key")
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("profile %s: %w", key, err)
		}
		normalized[key] = p
	}
	if err := cfg.Default.Validate(); err != nil {
		return fmt.Errorf("default profile: %w", err)
	}
	l.mu.Lock()
	l.snapshot = Snapshot{
		Version:  l.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Default:  cfg.Default,
		Symbols:  normalized,
	}
	l.mu.Unlock()
	logger.Infof("Risk profiles reloaded: %d symbol overrides from %s", len(normalized), filepath.Base(l.path))
	return nil
}

func readProfileFile(path string) (FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read profile config failed: %w", err)
	}
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse profile config failed: %w", err)
	}
	return cfg, nil
}

func cloneSnapshot(src Snapshot) Snapshot {
	dst := Snapshot{
		Version:  src.Version,
		LoadedAt: src.LoadedAt,
		Default:  src.Default,
		Symbols:  make(map[string]risk.Profile, len(src.Symbols)),
	}
	for sym, p := range src.Symbols {
		dst.Symbols[sym] = p
	}
	return dst
}
