package pack

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/meigma/assetpipe"
	packhttp "github.com/meigma/assetpipe/pack/http"
)

var _ assetpipe.Source = (*Library)(nil)

// Library is a set of open packs addressed by container name: a file path,
// or an http:// or https:// URL. It implements the pipeline's Source.
//
// Each pack's index is parsed once and kept until Close. Containers returned
// by Open share the library's pack; closing them is a no-op.
type Library struct {
	packOpts []Option
	httpOpts []packhttp.Option
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	packs  map[string]*Pack
	closed bool
	opens  singleflight.Group
}

// LibraryOption configures a Library.
type LibraryOption func(*Library)

// WithPackOptions sets the options used to open each pack.
func WithPackOptions(opts ...Option) LibraryOption {
	return func(l *Library) {
		l.packOpts = append(l.packOpts, opts...)
	}
}

// WithHTTPOptions sets the options used for remote packs.
func WithHTTPOptions(opts ...packhttp.Option) LibraryOption {
	return func(l *Library) {
		l.httpOpts = append(l.httpOpts, opts...)
	}
}

// WithLibraryLogger sets the logger for the library and the packs it opens.
func WithLibraryLogger(logger *slog.Logger) LibraryOption {
	return func(l *Library) {
		l.logger = logger
	}
}

// NewLibrary creates an empty library.
func NewLibrary(opts ...LibraryOption) *Library {
	l := &Library{packs: make(map[string]*Pack)}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger != nil {
		l.packOpts = append(l.packOpts, WithLogger(l.logger))
		l.httpOpts = append(l.httpOpts, packhttp.WithLogger(l.logger))
	}
	l.ctx, l.cancel = context.WithCancel(context.Background())
	return l
}

// log returns the logger, falling back to a discard logger if nil.
func (l *Library) log() *slog.Logger {
	if l.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.logger
}

// Pack returns the open pack for container, opening it on first use.
// Concurrent first uses of the same container open it once.
func (l *Library) Pack(ctx context.Context, container string) (*Pack, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrClosed
	}
	if p, ok := l.packs[container]; ok {
		l.mu.Unlock()
		return p, nil
	}
	l.mu.Unlock()

	v, err, _ := l.opens.Do(container, func() (any, error) {
		l.mu.Lock()
		p, ok := l.packs[container]
		l.mu.Unlock()
		if ok {
			return p, nil
		}

		p, err := l.open(ctx, container)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		defer l.mu.Unlock()
		if l.closed {
			_ = p.Close()
			return nil, ErrClosed
		}
		l.packs[container] = p
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Pack), nil //nolint:forcetypeassert // the group only stores *Pack
}

func (l *Library) open(ctx context.Context, container string) (*Pack, error) {
	if !isRemote(container) {
		p, err := Open(container, l.packOpts...)
		if err != nil {
			return nil, fmt.Errorf("pack: open %s: %w", container, err)
		}
		return p, nil
	}

	// The source outlives ctx; reads are bounded by the library instead.
	src, err := packhttp.NewSource(ctx, container, l.httpOpts...)
	if err != nil {
		return nil, fmt.Errorf("pack: open %s: %w", container, err)
	}
	stop := context.AfterFunc(l.ctx, func() { _ = src.Close() })
	opts := append(append([]Option(nil), l.packOpts...), WithCloser(closerFunc(func() error {
		stop()
		return src.Close()
	})))
	p, err := OpenSource(container, src, opts...)
	if err != nil {
		stop()
		_ = src.Close()
		return nil, fmt.Errorf("pack: open %s: %w", container, err)
	}
	l.log().Info("remote pack opened", "container", container, "assets", p.Len(), "size", src.Size())
	return p, nil
}

func isRemote(container string) bool {
	return strings.HasPrefix(container, "http://") || strings.HasPrefix(container, "https://")
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Open returns the container's pack as a pipeline container.
func (l *Library) Open(container string) (assetpipe.Container, error) {
	p, err := l.Pack(l.ctx, container)
	if err != nil {
		return nil, err
	}
	return sharedPack{p}, nil
}

// Locate returns the ref of an asset in container whose payload has hash.
func (l *Library) Locate(container, hash string) (assetpipe.Ref, error) {
	p, err := l.Pack(l.ctx, container)
	if err != nil {
		return assetpipe.Ref{}, err
	}
	a, ok := p.LocateHash(hash)
	if !ok {
		return assetpipe.Ref{}, fmt.Errorf("%w: %s in %s", assetpipe.ErrNotFound, hash, container)
	}
	return p.Ref(a), nil
}

// Len returns the number of open packs.
func (l *Library) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.packs)
}

// Close closes every open pack. Later calls fail with ErrClosed.
func (l *Library) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	packs := l.packs
	l.packs = nil
	l.mu.Unlock()

	l.cancel()
	var firstErr error
	for name, p := range packs {
		if err := p.Close(); err != nil {
			l.log().Warn("failed to close pack", "container", name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// sharedPack hides Close from the pipeline so the library keeps the pack
// open between groups.
type sharedPack struct {
	*Pack
}

func (sharedPack) Close() error { return nil }
