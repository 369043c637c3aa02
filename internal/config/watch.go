package config

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the bursts of events editors produce on save.
const DefaultDebounce = 150 * time.Millisecond

// Watch reloads the config file at path whenever it changes and passes
// the result to onChange. The parent directory is watched so that
// rename-on-save editors keep working. Load errors are logged and the
// previous config stays in effect. The environment override applies to
// every reload. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("CONFIG | watch error err=%v", err)
		case <-timer.C:
			cfg, err := Load(abs)
			if err != nil {
				log.Printf("CONFIG | reload failed path=%s err=%v", abs, err)
				continue
			}
			cfg.ApplyEnv()
			if _, err := cfg.Options(); err != nil {
				log.Printf("CONFIG | rejected path=%s err=%v", abs, err)
				continue
			}
			log.Printf("CONFIG | reloaded path=%s", abs)
			onChange(cfg)
		}
	}
}
