package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nidhogg/nuka-memory/internal/memory"
)

// DefaultStream is the Redis stream events are appended to.
const DefaultStream = "nuka:memory:events"

// DefaultMaxLen caps the stream, approximately.
const DefaultMaxLen = 10000

// StreamPublisher appends events to a capped Redis stream.
type StreamPublisher struct {
	rdb    *redis.Client
	stream string
	maxLen int64
	logger *zap.Logger
}

var _ memory.Observer = (*StreamPublisher)(nil)

// NewStreamPublisher publishes to stream, or DefaultStream when empty.
func NewStreamPublisher(rdb *redis.Client, stream string, logger *zap.Logger) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamPublisher{rdb: rdb, stream: stream, maxLen: DefaultMaxLen, logger: logger}
}

// Publish appends ev to the stream.
func (p *StreamPublisher) Publish(ctx context.Context, ev memory.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"kind": string(ev.Kind),
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.stream, err)
	}
	return nil
}

// Observe publishes ev and logs failures. Event delivery never fails a
// memory operation.
func (p *StreamPublisher) Observe(ctx context.Context, ev memory.Event) {
	if err := p.Publish(ctx, ev); err != nil {
		p.logger.Warn("event publish failed", zap.String("kind", string(ev.Kind)), zap.Error(err))
	}
}

// Subscribe tails the stream from now on. Cancel ctx to stop; the channel
// is closed afterwards.
func (p *StreamPublisher) Subscribe(ctx context.Context) <-chan memory.Event {
	ch := make(chan memory.Event, 16)

	go func() {
		defer close(ch)
		lastID := "$"

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			results, err := p.rdb.XRead(ctx, &redis.XReadArgs{
				Streams: []string{p.stream, lastID},
				Count:   10,
				Block:   2 * time.Second,
			}).Result()
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				if !errors.Is(err, redis.Nil) {
					p.logger.Debug("event stream read failed", zap.Error(err))
				}
				continue
			}

			for _, r := range results {
				for _, msg := range r.Messages {
					lastID = msg.ID
					data, ok := msg.Values["data"].(string)
					if !ok {
						continue
					}
					var ev memory.Event
					if json.Unmarshal([]byte(data), &ev) != nil {
						continue
					}
					select {
					case ch <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return ch
}
