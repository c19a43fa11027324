package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"formdesk/internal/domain"
	"formdesk/internal/port"
)

const (
	draftWriteTimeout  = 10 * time.Second
	flushRetryInterval = 20 * time.Millisecond
)

type draftOpKind int

const (
	opSave draftOpKind = iota
	opDelete
	opFlush
)

type draftOp struct {
	kind  draftOpKind
	seq   uint64
	draft *domain.Draft
	key   string
	ack   chan struct{}
}

// tombstone records the latest delete queued for a key. Saves queued before
// it are skipped; a later save replaces it.
type tombstone struct {
	seq     uint64
	applied bool
}

// Autosaver persists drafts from a single background goroutine so writes
// for one key are applied in the order they were queued. Enqueueing never
// blocks the caller. A full queue drops saves, which a later save supersedes,
// but never deletes: those are kept as tombstones and applied out of band.
type Autosaver struct {
	repo   port.DraftRepository
	logger *zap.Logger
	queue  chan draftOp
	wake   chan struct{}
	done   chan struct{}

	mu     sync.Mutex
	closed bool
	seq    uint64
	tombs  map[string]tombstone
}

// NewAutosaver starts the writer goroutine. Call Close to stop it.
func NewAutosaver(repo port.DraftRepository, logger *zap.Logger, queueSize int) *Autosaver {
	if queueSize <= 0 {
		queueSize = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Autosaver{
		repo:   repo,
		logger: logger.Named("autosave"),
		queue:  make(chan draftOp, queueSize),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		tombs:  make(map[string]tombstone),
	}
	go a.run()
	return a
}

// Save queues a draft write.
func (a *Autosaver) Save(d *domain.Draft) {
	if sent, closed := a.trySend(draftOp{kind: opSave, draft: d, key: d.Key}); !sent && !closed {
		a.logger.Warn("draft queue full, dropping save", zap.String("key", d.Key))
	}
}

// Delete queues removal of the draft stored under key. It is applied even
// when the queue is full.
func (a *Autosaver) Delete(key string) {
	if sent, closed := a.trySend(draftOp{kind: opDelete, key: key}); !sent && !closed {
		select {
		case a.wake <- struct{}{}:
		default:
		}
	}
}

// Load reads a draft directly from the store.
func (a *Autosaver) Load(ctx context.Context, key string) (*domain.Draft, error) {
	return a.repo.Get(ctx, key)
}

// Flush blocks until every operation queued before the call has been applied.
func (a *Autosaver) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	for {
		sent, closed := a.trySend(draftOp{kind: opFlush, ack: ack})
		if closed {
			return nil
		}
		if sent {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(flushRetryInterval):
		}
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains the queue, applies outstanding deletes and stops the writer.
func (a *Autosaver) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.done
		return
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()
	<-a.done
}

// trySend numbers op and offers it to the queue without blocking. Deletes
// leave a tombstone whether or not the send succeeds.
func (a *Autosaver) trySend(op draftOp) (sent, closed bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return false, true
	}
	a.seq++
	op.seq = a.seq
	if op.kind == opDelete {
		a.tombs[op.key] = tombstone{seq: op.seq}
	}
	select {
	case a.queue <- op:
		return true, false
	default:
		return false, false
	}
}

func (a *Autosaver) run() {
	defer close(a.done)
	var last uint64
	for {
		select {
		case op, ok := <-a.queue:
			if !ok {
				a.applyDeletes(last)
				return
			}
			last = op.seq
			a.handle(op)
		case <-a.wake:
			a.applyDeletes(last)
		}
	}
}

func (a *Autosaver) handle(op draftOp) {
	switch op.kind {
	case opSave:
		if a.superseded(op) {
			return
		}
		a.apply(op.key, "save", func(ctx context.Context) error { return a.repo.Save(ctx, op.draft) })
	case opDelete:
		a.applyDeletes(op.seq)
	case opFlush:
		a.applyDeletes(op.seq)
		close(op.ack)
	}
}

// superseded reports whether a delete queued after op has already been
// applied to its key.
func (a *Autosaver) superseded(op draftOp) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.tombs[op.key]
	if !ok {
		return false
	}
	if t.seq > op.seq {
		return t.applied
	}
	delete(a.tombs, op.key)
	return false
}

// applyDeletes runs every tombstone not yet applied, then forgets applied
// tombstones no older queued operation can still reach.
func (a *Autosaver) applyDeletes(processed uint64) {
	a.mu.Lock()
	pending := make(map[string]uint64)
	for key, t := range a.tombs {
		if !t.applied {
			pending[key] = t.seq
		}
	}
	a.mu.Unlock()

	for key, seq := range pending {
		a.apply(key, "delete", func(ctx context.Context) error {
			err := a.repo.Delete(ctx, key)
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		})
		a.mu.Lock()
		if t, ok := a.tombs[key]; ok && t.seq == seq {
			t.applied = true
			a.tombs[key] = t
		}
		a.mu.Unlock()
	}

	a.mu.Lock()
	for key, t := range a.tombs {
		if t.applied && t.seq <= processed {
			delete(a.tombs, key)
		}
	}
	a.mu.Unlock()
}

func (a *Autosaver) apply(key, action string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), draftWriteTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		a.logger.Warn("draft write failed", zap.String("action", action), zap.String("key", key), zap.Error(err))
	}
}
