package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RelayMetrics records relay activity on the global meter provider. When
// telemetry is off the provider is a no-op and recording costs nothing.
type RelayMetrics struct {
	connections metric.Int64UpDownCounter
	joins       metric.Int64Counter
	broadcasts  metric.Int64Counter
	recipients  metric.Int64Histogram
	dropped     metric.Int64Counter
}

func NewRelayMetrics() (*RelayMetrics, error) {
	return newRelayMetrics(otel.Meter("collabhub.relay"))
}

func newRelayMetrics(meter metric.Meter) (*RelayMetrics, error) {
	m := &RelayMetrics{}
	var err error

	if m.connections, err = meter.Int64UpDownCounter(
		"relay.connections",
		metric.WithDescription("Open relay connections"),
		metric.WithUnit("{connection}"),
	); err != nil {
		return nil, err
	}
	if m.joins, err = meter.Int64Counter(
		"relay.rooms.joins",
		metric.WithDescription("Room joins"),
		metric.WithUnit("{join}"),
	); err != nil {
		return nil, err
	}
	if m.broadcasts, err = meter.Int64Counter(
		"relay.broadcasts",
		metric.WithDescription("Frames fanned out to a room"),
		metric.WithUnit("{frame}"),
	); err != nil {
		return nil, err
	}
	if m.recipients, err = meter.Int64Histogram(
		"relay.broadcast.recipients",
		metric.WithDescription("Peers reached per broadcast"),
		metric.WithUnit("{connection}"),
	); err != nil {
		return nil, err
	}
	if m.dropped, err = meter.Int64Counter(
		"relay.frames.dropped",
		metric.WithDescription("Frames dropped because a peer queue was full"),
		metric.WithUnit("{frame}"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *RelayMetrics) ConnectionOpened(ctx context.Context) {
	m.connections.Add(ctx, 1)
}

func (m *RelayMetrics) ConnectionClosed(ctx context.Context) {
	m.connections.Add(ctx, -1)
}

func (m *RelayMetrics) RoomJoined(ctx context.Context) {
	m.joins.Add(ctx, 1)
}

func (m *RelayMetrics) Broadcast(ctx context.Context, event string, recipients int) {
	attrs := metric.WithAttributes(attribute.String("event", event))
	m.broadcasts.Add(ctx, 1, attrs)
	m.recipients.Record(ctx, int64(recipients), attrs)
}

func (m *RelayMetrics) FrameDropped(ctx context.Context) {
	m.dropped.Add(ctx, 1)
}
