package service

import (
	"sync"
	"time"

	"rewards_quest_bot/internal/model"
)

type StatusSnapshot struct {
	StartedAt time.Time
	Passes    int
	Last      *model.PassReport
}

// StatusBoard keeps the latest pass report for readers outside the
// scheduler loop and fans new reports out to subscribers.
type StatusBoard struct {
	mu          sync.RWMutex
	startedAt   time.Time
	passes      int
	last        *model.PassReport
	subscribers map[chan *model.PassReport]struct{}
}

func NewStatusBoard(startedAt time.Time) *StatusBoard {
	return &StatusBoard{
		startedAt:   startedAt,
		subscribers: make(map[chan *model.PassReport]struct{}),
	}
}

func (b *StatusBoard) Update(report *model.PassReport) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.passes++
	b.last = report

	for ch := range b.subscribers {
		// Slow subscribers only ever see the newest report.
		select {
		case <-ch:
		default:
		}
		ch <- report
	}
}

func (b *StatusBoard) Snapshot() StatusSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return StatusSnapshot{StartedAt: b.startedAt, Passes: b.passes, Last: b.last}
}

// Subscribe returns a channel receiving every report published after the
// call, and a function that unsubscribes and closes it.
func (b *StatusBoard) Subscribe() (<-chan *model.PassReport, func()) {
	ch := make(chan *model.PassReport, 1)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}
