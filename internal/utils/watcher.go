package utils

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// WatchConfig watches the config file and invokes onReload with the freshly
// parsed config after each change. Editors tend to emit several events per
// save, so writes are debounced before reloading. Blocks until ctx is done.
func WatchConfig(ctx context.Context, filename string, logger *logrus.Logger, onReload func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: many editors replace the file on
	// save, which drops a watch placed on the file itself.
	dir := filepath.Dir(filename)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	base := filepath.Base(filename)
	var debounce *time.Timer
	reload := func() {
		config, err := LoadConfig(filename)
		if err != nil {
			logger.Warnf("Config reload failed, keeping previous config: %v", err)
			return
		}
		logger.Infof("Reloaded configuration from %s", filename)
		onReload(config)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(250*time.Millisecond, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Errorf("Config watcher error: %v", err)
		}
	}
}
