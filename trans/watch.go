package trans

import (
	"github.com/fsnotify/fsnotify"
)

// Watch reloads the message table whenever the file changes. Returns a stop
// function. Load errors during reload keep the previous table; onError is
// optional.
func (t *Translator) Watch(path string, onError func(error)) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err = watcher.Add(path); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					if loadErr := t.LoadFile(path); loadErr != nil && onError != nil {
						onError(loadErr)
					}
				}
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(watchErr)
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		_ = watcher.Close()
	}, nil
}
