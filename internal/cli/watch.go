package cli

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/toyz/addendum/pkg/addendum/source"
)

// Watcher reparses changed Go files of a workspace
type Watcher struct {
	ws       *Workspace
	watcher  *fsnotify.Watcher
	onChange func(path string, err error)
}

// NewWatcher watches every scanned directory of ws. onChange, when set, is
// called after each handled event.
func NewWatcher(ws *Workspace, onChange func(path string, err error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{ws: ws, watcher: fw, onChange: onChange}
	for _, target := range ws.Targets {
		if err := w.add(target); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(target ScanTarget) error {
	if !target.Recursive {
		return w.watcher.Add(target.Dir)
	}
	return filepath.WalkDir(target.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != target.Dir && source.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// Run handles events until ctx is done or the watcher fails
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !source.IsSourceFile(event.Name) {
		return
	}

	var err error
	switch {
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		w.ws.Forget(event.Name)
	case event.Op.Has(fsnotify.Write), event.Op.Has(fsnotify.Create):
		err = w.ws.Reload(event.Name)
	default:
		return
	}

	w.ws.logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Err(err).Msg("source changed")
	if w.onChange != nil {
		w.onChange(event.Name, err)
	}
}
