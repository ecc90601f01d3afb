package schemafile

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Holder keeps the Registry built from a schema file and rebuilds it when
// the file changes. Safe for concurrent use.
type Holder struct {
	mu       sync.RWMutex
	registry *Registry
	path     string
	opts     []BuildOption
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []func(*Registry)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHolder loads and builds the schema file.
func NewHolder(path string, logger zerolog.Logger, opts ...BuildOption) (*Holder, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	h := &Holder{
		path:   absPath,
		opts:   opts,
		logger: logger,
		stopCh: make(chan struct{}),
	}
	reg, err := h.load()
	if err != nil {
		return nil, err
	}
	h.registry = reg
	return h, nil
}

// Get returns the current registry.
func (h *Holder) Get() *Registry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.registry
}

func (h *Holder) load() (*Registry, error) {
	doc, err := Load(h.path)
	if err != nil {
		return nil, err
	}
	reg, err := doc.Build(h.opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", h.path, err)
	}
	return reg, nil
}

// Reload rebuilds the registry from disk. On error the previous registry
// stays in place.
func (h *Holder) Reload() error {
	reg, err := h.load()
	if err != nil {
		h.logger.Error().Err(err).Str("path", h.path).Msg("schema reload failed, keeping previous schema")
		return fmt.Errorf("reload schema: %w", err)
	}

	h.mu.Lock()
	old := h.registry
	h.registry = reg
	listeners := h.onChange
	h.mu.Unlock()

	h.logger.Info().
		Str("path", h.path).
		Int("tables", len(reg.Tables())).
		Int("previousTables", len(old.Tables())).
		Msg("schema reloaded")
	for _, fn := range listeners {
		fn(reg)
	}
	return nil
}

// OnChange registers a callback run after every successful reload.
func (h *Holder) OnChange(fn func(*Registry)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// WatchFile reloads the registry whenever the schema file is written.
func (h *Holder) WatchFile() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// the directory, so atomic saves by editors are seen
	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	h.watcher = watcher

	go h.watchLoop()

	h.logger.Info().Str("path", h.path).Msg("watching schema file for changes")
	return nil
}

// Stop stops watching the file.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

func (h *Holder) watchLoop() {
	filename := filepath.Base(h.path)

	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				h.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("schema file changed")
				_ = h.Reload()
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("file watcher error")

		case <-h.stopCh:
			return
		}
	}
}
