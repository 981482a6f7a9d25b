package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher publishes EventExternal when another process logs in or out by
// rewriting the token file.
type Watcher struct {
	store   *FileStore
	hub     *Hub
	watcher *fsnotify.Watcher
}

func NewWatcher(store *FileStore, hub *Hub) (*Watcher, error) {
	dir := filepath.Dir(store.Path())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create token directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// the directory is watched since the token file is replaced by rename
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	// prime the store so existing content is not reported as a change
	if _, err := store.Token(); err != nil {
		watcher.Close()
		return nil, err
	}

	return &Watcher{store: store, hub: hub, watcher: watcher}, nil
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	path := filepath.Clean(w.store.Path())
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.handleChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Token file watcher error")
		}
	}
}

func (w *Watcher) handleChange() {
	token, changed, err := w.store.refresh()
	if err != nil {
		log.Error().Err(err).Msg("Failed to reload token after external change")
		return
	}
	if !changed {
		return
	}

	event := AuthEvent{Type: EventExternal}
	if token != "" {
		profile, err := ProfileFromToken(token)
		if err != nil {
			log.Warn().Err(err).Msg("Externally written token could not be decoded")
		}
		event.User = profile
	}
	log.Info().Bool("signedIn", token != "").Msg("Session changed by another process")
	w.hub.Publish(event)
}
