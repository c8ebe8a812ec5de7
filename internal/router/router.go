// Package router fans incoming PDUs out across the engine's configured
// channels and runs each channel's wakeup loop concurrently, one
// goroutine per channel, grounded on the teacher's use of
// golang.org/x/sync/errgroup to fan work out and join it with a single
// error (the same pattern fs/operations uses for concurrent transfers).
package router

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/thnkslprpt/cfdp/internal/channel"
)

// ErrUnknownChannel is returned when a PDU names a channel the router
// wasn't configured with.
var ErrUnknownChannel = errors.New("unknown channel")

// Router owns every configured Channel and dispatches inbound PDUs to
// the right one by name.
type Router struct {
	channels map[string]*channel.Channel
}

// New builds a Router over the given named channels.
func New(channels map[string]*channel.Channel) *Router {
	return &Router{channels: channels}
}

// Route enqueues in on the named channel's inbox.
func (r *Router) Route(ctx context.Context, channelName string, in channel.Inbound) error {
	ch, ok := r.channels[channelName]
	if !ok {
		return errors.Wrapf(ErrUnknownChannel, "%q", channelName)
	}
	return ch.Enqueue(ctx, in)
}

// RunWakeups runs exactly one wakeup cycle on every channel concurrently,
// joining their errors with an errgroup.Group, and returns the first
// error encountered (if any), after every channel has finished its
// cycle.
func (r *Router) RunWakeups(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, ch := range r.channels {
		ch := ch
		g.Go(func() error {
			return ch.Wakeup(ctx)
		})
	}
	return g.Wait()
}

// RunForever calls RunWakeups once per period until ctx is cancelled,
// the tick-driven equivalent of the engine's main polling loop.
func (r *Router) RunForever(ctx context.Context, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.RunWakeups(ctx); err != nil {
				return err
			}
		}
	}
}

// Channels returns the configured channel names, for CLI/admin listing.
func (r *Router) Channels() []string {
	names := make([]string, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	return names
}
