// Package revalidate tracks which dashboard routes must be re-rendered after a mutation.
package revalidate

import (
	"strings"
	"sync"
	"time"

	"github.com/acmelabs/invoice_dashboard/internal/metrics"
)

// Revalidator marks a route stale.
type Revalidator interface {
	Revalidate(path string)
}

type entry struct {
	version uint64
	at      time.Time
}

// Registry keeps a monotonic version per route. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	subs    map[int]chan string
	nextSub int
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]entry),
		subs:    make(map[int]chan string),
		now:     time.Now,
	}
}

// Revalidate bumps the version of path and notifies subscribers.
func (r *Registry) Revalidate(path string) {
	r.apply(path, "local")
}

func (r *Registry) apply(path, origin string) {
	path = Normalize(path)

	r.mu.Lock()
	e := r.entries[path]
	e.version++
	e.at = r.now()
	r.entries[path] = e
	for _, ch := range r.subs {
		select {
		case ch <- path:
		default:
		}
	}
	r.mu.Unlock()

	metrics.RecordRevalidation(origin)
}

// Version returns the current version of path; never revalidated routes are at 0.
func (r *Registry) Version(path string) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[Normalize(path)].version
}

// LastRevalidated returns when path was last revalidated.
func (r *Registry) LastRevalidated(path string) (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[Normalize(path)]
	return e.at, ok
}

// IsStale reports whether path was revalidated after version since was observed.
func (r *Registry) IsStale(path string, since uint64) bool {
	return r.Version(path) > since
}

// Subscribe returns a channel of revalidated paths and a cancel func.
// Notifications are dropped while the channel buffer is full.
func (r *Registry) Subscribe(buffer int) (<-chan string, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan string, buffer)

	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
			close(ch)
		})
	}
}

// Normalize strips query strings and trailing slashes so equivalent routes share a version.
func Normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
