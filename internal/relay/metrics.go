package relay

import "context"

// Metrics receives relay counters. *telemetry.RelayMetrics implements it.
type Metrics interface {
	ConnectionOpened(ctx context.Context)
	ConnectionClosed(ctx context.Context)
	RoomJoined(ctx context.Context)
	Broadcast(ctx context.Context, event string, recipients int)
	FrameDropped(ctx context.Context)
}

type nopMetrics struct{}

func (nopMetrics) ConnectionOpened(context.Context)       {}
func (nopMetrics) ConnectionClosed(context.Context)       {}
func (nopMetrics) RoomJoined(context.Context)             {}
func (nopMetrics) Broadcast(context.Context, string, int) {}
func (nopMetrics) FrameDropped(context.Context)           {}
