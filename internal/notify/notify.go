// Package notify fans combat tick results out to delivery sinks. Session
// transports register as sinks; the standalone server ships with a logging
// sink so combat remains observable without a connected client.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/crownspire/mud/internal/game/encounter"
)

// Sink receives resolved tick results for delivery to players.
type Sink interface {
	Deliver(res encounter.TickResult)
}

// LogSink writes tick results to the structured log.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink on the given logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Deliver logs one tick result with its combat outcome fields.
func (s *LogSink) Deliver(res encounter.TickResult) {
	fields := []zap.Field{
		zap.String("encounter_id", res.EncounterID.String()),
		zap.String("player_id", res.PlayerID.String()),
		zap.Int("player_hp", res.PlayerHP),
		zap.Int("monster_hp", res.MonsterHP),
		zap.Bool("combat_ended", res.CombatEnded),
	}
	if res.MonsterDied {
		fields = append(fields,
			zap.Bool("monster_died", true),
			zap.Int("exp_gained", res.ExpGained),
			zap.Int("drops", len(res.Loot)),
			zap.Int("level_ups", len(res.LevelUps)),
		)
	}
	if res.PlayerDied {
		fields = append(fields, zap.Bool("player_died", true))
	}
	s.logger.Info("combat tick", fields...)
}

// Dispatcher pumps tick results from the scheduler to every sink.
type Dispatcher struct {
	sinks []Sink
}

// NewDispatcher creates a Dispatcher delivering to sinks in order.
func NewDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks}
}

// Run consumes results until the channel closes or ctx is cancelled.
// It blocks; run it in its own goroutine.
func (d *Dispatcher) Run(ctx context.Context, results <-chan encounter.TickResult) {
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-results:
			if !ok {
				return
			}
			for _, sink := range d.sinks {
				sink.Deliver(res)
			}
		}
	}
}
