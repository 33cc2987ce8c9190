package lock

import (
	"context"
	"sort"
	"sync"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
)

// Local is an in-process keyed lock. It serializes saves within one API instance.
type Local struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

var _ schedule.Locker = (*Local)(nil)

func NewLocal() *Local {
	return &Local{slots: make(map[string]chan struct{})}
}

func (l *Local) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// Lock acquires every key in sorted order, so two callers never wait on each other crosswise.
// It gives up, releasing what it holds, when ctx is done.
func (l *Local) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = core.UniqueStrings(keys...)
	sort.Strings(keys)

	held := make([]chan struct{}, 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, key := range keys {
		ch := l.slot(key)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}
