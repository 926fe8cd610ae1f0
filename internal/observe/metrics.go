// Package observe holds the OpenTelemetry metric instruments for the game
// services and the Prometheus bridge that exposes them on /metrics.
//
// Tests should build their own [Metrics] with [NewMetrics] and a manual
// reader instead of touching the global provider.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/jwebster45206/dungeon-engine"

// Metrics holds every instrument the services record to. All fields are
// safe for concurrent use.
type Metrics struct {
	// RoomsEntered counts successful room entries. Attribute: room_id.
	RoomsEntered metric.Int64Counter

	// ItemsPicked counts item pickups. Attribute: item_id.
	ItemsPicked metric.Int64Counter

	// CombatRounds counts resolved rounds. Attribute: action.
	CombatRounds metric.Int64Counter

	// CombatOutcomes counts finished fights. Attribute: winner.
	CombatOutcomes metric.Int64Counter

	// ActiveEncounters tracks fights that have started but not finished.
	ActiveEncounters metric.Int64UpDownCounter

	// ActivityEvents counts activity pipeline events. Attribute: status
	// (published, publish_failed, stored, requeued, dead_lettered).
	ActivityEvents metric.Int64Counter

	// GamesFinished counts games ended with the completion bonus.
	GamesFinished metric.Int64Counter

	// HTTPRequestDuration tracks request latency. Attributes: method, route, status.
	HTTPRequestDuration metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// NewMetrics creates all instruments on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.RoomsEntered, err = m.Int64Counter("dungeon.rooms.entered",
		metric.WithDescription("Successful room entries by room."),
	); err != nil {
		return nil, err
	}
	if met.ItemsPicked, err = m.Int64Counter("dungeon.items.picked",
		metric.WithDescription("Items picked up by item."),
	); err != nil {
		return nil, err
	}
	if met.CombatRounds, err = m.Int64Counter("dungeon.combat.rounds",
		metric.WithDescription("Resolved combat rounds by action."),
	); err != nil {
		return nil, err
	}
	if met.CombatOutcomes, err = m.Int64Counter("dungeon.combat.outcomes",
		metric.WithDescription("Finished fights by winner."),
	); err != nil {
		return nil, err
	}
	if met.ActiveEncounters, err = m.Int64UpDownCounter("dungeon.combat.active",
		metric.WithDescription("Fights in progress."),
	); err != nil {
		return nil, err
	}
	if met.ActivityEvents, err = m.Int64Counter("dungeon.activity.events",
		metric.WithDescription("Activity log events by pipeline status."),
	); err != nil {
		return nil, err
	}
	if met.GamesFinished, err = m.Int64Counter("dungeon.games.finished",
		metric.WithDescription("Games completed."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("dungeon.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a package-level instance built on the global
// provider. Call InitProvider first so it records into Prometheus.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Convenience recorders. A nil *Metrics records nothing.

func (m *Metrics) RecordRoomEntered(ctx context.Context, roomID int) {
	if m == nil {
		return
	}
	m.RoomsEntered.Add(ctx, 1, metric.WithAttributes(attribute.Int("room_id", roomID)))
}

func (m *Metrics) RecordItemPicked(ctx context.Context, itemID int) {
	if m == nil {
		return
	}
	m.ItemsPicked.Add(ctx, 1, metric.WithAttributes(attribute.Int("item_id", itemID)))
}

func (m *Metrics) RecordCombatStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveEncounters.Add(ctx, 1)
}

func (m *Metrics) RecordCombatRound(ctx context.Context, action string) {
	if m == nil {
		return
	}
	m.CombatRounds.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}

func (m *Metrics) RecordCombatOutcome(ctx context.Context, winner string) {
	if m == nil {
		return
	}
	m.CombatOutcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("winner", winner)))
	m.ActiveEncounters.Add(ctx, -1)
}

// RecordCombatAbandoned drops an unfinished encounter from the active count.
func (m *Metrics) RecordCombatAbandoned(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveEncounters.Add(ctx, -1)
}

func (m *Metrics) RecordActivity(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.ActivityEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *Metrics) RecordGameFinished(ctx context.Context) {
	if m == nil {
		return
	}
	m.GamesFinished.Add(ctx, 1)
}
