package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/crownspire/mud/internal/game/encounter"
)

type recordingSink struct {
	mu      sync.Mutex
	results []encounter.TickResult
}

func (s *recordingSink) Deliver(res encounter.TickResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, res)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func TestDispatcherDeliversToAllSinks(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	d := NewDispatcher(a, b)

	results := make(chan encounter.TickResult, 2)
	results <- encounter.TickResult{EncounterID: uuid.New()}
	results <- encounter.TickResult{EncounterID: uuid.New()}
	close(results)

	d.Run(context.Background(), results)

	assert.Equal(t, 2, a.count())
	assert.Equal(t, 2, b.count())
}

func TestDispatcherStopsOnContextCancel(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink)

	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan encounter.TickResult)

	done := make(chan struct{})
	go func() {
		d.Run(ctx, results)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop on cancel")
	}
}

func TestLogSinkDeliver(t *testing.T) {
	// Smoke test: a kill result logs without panicking.
	sink := NewLogSink(zap.NewNop())
	sink.Deliver(encounter.TickResult{
		EncounterID: uuid.New(),
		PlayerID:    uuid.New(),
		MonsterDied: true,
		CombatEnded: true,
		ExpGained:   10,
	})
}
