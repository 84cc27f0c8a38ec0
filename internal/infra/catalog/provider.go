package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/rakki194/nlrouter/internal/infra/hashutil"
)

const reloadDebounce = 200 * time.Millisecond

// UpdateSource tells subscribers what triggered a catalog update.
type UpdateSource string

const (
	UpdateSourceManual UpdateSource = "manual"
	UpdateSourceWatch  UpdateSource = "watch"
)

// Update carries a reloaded catalog to subscribers.
type Update struct {
	Catalog Catalog
	Source  UpdateSource
}

// Provider loads a config file and watches it for changes. Subscribers
// receive an Update whenever the file content meaningfully changes.
type Provider struct {
	logger     *zap.Logger
	loader     *Loader
	configPath string

	state   atomic.Value
	sumLock sync.Mutex
	sum     string

	subsMu sync.Mutex
	subs   map[chan Update]struct{}

	reloadMu  sync.Mutex
	watchOnce sync.Once
	watchCtx  context.Context
}

// NewProvider loads the config at path and prepares watching.
func NewProvider(ctx context.Context, path string, logger *zap.Logger) (*Provider, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	loader := NewLoader(logger)
	cat, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	provider := &Provider{
		logger:     logger.Named("catalog_provider"),
		loader:     loader,
		configPath: path,
		subs:       make(map[chan Update]struct{}),
		watchCtx:   ctx,
	}
	provider.state.Store(cat)
	provider.sum = catalogSum(cat)
	return provider, nil
}

// Current returns the most recently loaded catalog.
func (p *Provider) Current() Catalog {
	return p.state.Load().(Catalog)
}

// Watch subscribes to catalog updates. The channel is dropped when ctx ends.
func (p *Provider) Watch(ctx context.Context) <-chan Update {
	if ctx == nil {
		ctx = context.Background()
	}
	ch := make(chan Update, 1)
	p.subsMu.Lock()
	p.subs[ch] = struct{}{}
	p.subsMu.Unlock()

	p.watchOnce.Do(func() {
		go p.runWatcher(p.watchCtx)
	})

	go func() {
		<-ctx.Done()
		p.subsMu.Lock()
		delete(p.subs, ch)
		p.subsMu.Unlock()
	}()

	return ch
}

// Reload forces a reload outside the file watcher.
func (p *Provider) Reload(ctx context.Context) error {
	return p.reload(ctx, UpdateSourceManual)
}

func (p *Provider) reload(ctx context.Context, source UpdateSource) error {
	p.reloadMu.Lock()
	defer p.reloadMu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	cat, err := p.loader.Load(ctx, p.configPath)
	if err != nil {
		return err
	}

	next := catalogSum(cat)
	p.sumLock.Lock()
	unchanged := next == p.sum
	if !unchanged {
		p.sum = next
	}
	p.sumLock.Unlock()
	if unchanged {
		return nil
	}

	p.state.Store(cat)
	p.broadcast(Update{Catalog: cat, Source: source})
	return nil
}

func (p *Provider) broadcast(update Update) {
	p.subsMu.Lock()
	subs := make([]chan Update, 0, len(p.subs))
	for ch := range p.subs {
		subs = append(subs, ch)
	}
	p.subsMu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- update:
		default:
		}
	}
}

func (p *Provider) runWatcher(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Warn("config watcher failed", zap.Error(err))
		return
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file still notify.
	if err := watcher.Add(filepath.Dir(p.configPath)); err != nil {
		p.logger.Warn("config watcher add failed", zap.String("path", p.configPath), zap.Error(err))
	}

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-watcher.Errors:
			if err != nil {
				p.logger.Warn("config watcher error", zap.Error(err))
			}
		case event := <-watcher.Events:
			if filepath.Clean(event.Name) != filepath.Clean(p.configPath) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(reloadDebounce)
		case <-timerChan(timer):
			timer = nil
			if err := p.reload(ctx, UpdateSourceWatch); err != nil {
				p.logger.Warn("config reload failed", zap.Error(err))
			}
		}
	}
}

func timerChan(timer *time.Timer) <-chan time.Time {
	if timer == nil {
		return nil
	}
	return timer.C
}

func catalogSum(cat Catalog) string {
	sum, err := hashutil.Sum(cat)
	if err != nil {
		return ""
	}
	return sum
}
