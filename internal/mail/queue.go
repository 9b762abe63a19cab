package mail

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	queueSize   = 32
	sendTimeout = 30 * time.Second
)

// Queue delivers notifications on a single background worker so callers
// never wait on SMTP.
type Queue struct {
	notifier Notifier
	log      *zap.Logger
	ch       chan ContactMessage

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
	done     chan struct{}
}

func NewQueue(n Notifier, log *zap.Logger) *Queue {
	if log == nil {
		log = zap.NewNop()
	}
	q := &Queue{
		notifier: n,
		log:      log,
		ch:       make(chan ContactMessage, queueSize),
		done:     make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for msg := range q.ch {
		q.send(msg)
	}
}

func (q *Queue) send(msg ContactMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := q.notifier.Notify(ctx, msg); err != nil {
		q.log.Error("failed to send contact email", zap.String("replyTo", msg.Email), zap.Error(err))
	}
}

// Enqueue never blocks. When the buffer is full the message is sent from its
// own goroutine instead of being dropped. It reports false after Close.
func (q *Queue) Enqueue(msg ContactMessage) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	select {
	case q.ch <- msg:
	default:
		q.log.Warn("mail queue full, sending inline")
		q.inflight.Add(1)
		go func() {
			defer q.inflight.Done()
			q.send(msg)
		}()
	}
	return true
}

// Close stops accepting messages and waits until everything queued is sent.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()
	<-q.done
	q.inflight.Wait()
}
