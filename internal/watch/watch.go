package watch

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Options configures Start.
type Options struct {
	// Path is the grammar file to watch.
	Path string
	// Debounce collapses bursts of events into one OnChange call.
	Debounce time.Duration
	// OnChange runs on the watcher goroutine after a debounced change.
	OnChange func()
	Logger   *zap.Logger
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Start watches the directory holding opts.Path and calls opts.OnChange when
// the file is written, created, renamed or removed. Watching the directory
// instead of the file keeps working across editors that save by rename.
func Start(opts Options) (io.Closer, error) {
	target := strings.TrimSpace(opts.Path)
	if target == "" {
		return nil, errors.New("watch path is empty")
	}
	if opts.OnChange == nil {
		return nil, errors.New("watch callback is nil")
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	triggerCh := make(chan struct{}, 1)

	go func() {
		defer close(doneCh)
		var (
			timer  *time.Timer
			timerC <-chan time.Time
		)
		resetTimer := func() {
			if timer == nil {
				timer = time.NewTimer(opts.Debounce)
				timerC = timer.C
				return
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(opts.Debounce)
			timerC = timer.C
		}

		for {
			select {
			case <-stopCh:
				if timer != nil {
					timer.Stop()
				}
				return
			case <-timerC:
				timerC = nil
				logger.Debug("grammar changed", zap.String("path", abs))
				opts.OnChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("grammar watcher error", zap.Error(err))
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if shouldTrigger(evt, abs) {
					select {
					case triggerCh <- struct{}{}:
					default:
					}
				}
			case <-triggerCh:
				resetTimer()
			}
		}
	}()

	logger.Info("watching grammar",
		zap.String("path", abs),
		zap.Duration("debounce", opts.Debounce))
	return closerFunc(func() error {
		close(stopCh)
		err := watcher.Close()
		<-doneCh
		return err
	}), nil
}

func shouldTrigger(evt fsnotify.Event, target string) bool {
	if strings.TrimSpace(evt.Name) == "" {
		return false
	}
	if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name, err := filepath.Abs(evt.Name)
	if err != nil {
		return false
	}
	return name == target
}
