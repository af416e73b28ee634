package service

import (
	"sync"

	"github.com/spec-kit/ticketapp/internal/clock"
	"github.com/spec-kit/ticketapp/internal/domain"
)

// IDGenerator issues ticket ids that look like creation timestamps in
// milliseconds but never repeat, even for creates within one millisecond.
type IDGenerator struct {
	mu    sync.Mutex
	clock clock.Clock
	last  int64
}

// NewIDGenerator returns a generator reading time from clk.
func NewIDGenerator(clk clock.Clock) *IDGenerator {
	if clk == nil {
		clk = clock.Real()
	}
	return &IDGenerator{clock: clk}
}

// Next returns an id greater than every id it issued before and every id in
// existing.
func (g *IDGenerator) Next(existing []domain.Ticket) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.clock.Now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	for _, t := range existing {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	g.last = id
	return id
}
