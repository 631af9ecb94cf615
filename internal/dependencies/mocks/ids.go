package mocks

import (
	"fmt"

	"github.com/mcoot/gamematch/internal/dependencies/ids"
)

// MockIDs is a mock implementation of ids.Generator for testing
type MockIDs struct {
	// Queued is a queue of ids to hand out before falling back to a counter
	Queued []string
	index  int

	prefix  string
	counter int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a MockIDs that generates "<prefix>-N" once the queue is empty
func NewMockIDs(prefix string) *MockIDs {
	return &MockIDs{prefix: prefix}
}

// NewID returns the next queued id, or the next sequential id if none remain
func (g *MockIDs) NewID() string {
	if g.index < len(g.Queued) {
		id := g.Queued[g.index]
		g.index++
		return id
	}
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// Queue adds ids to the result queue
func (g *MockIDs) Queue(values ...string) {
	g.Queued = append(g.Queued, values...)
}
