package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/faceoff/internal/features"
)

// StreamAdder is the subset of *redis.Client the sink uses.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// StreamSink publishes feature rows to a Redis stream, one entry per game.
type StreamSink struct {
	client  StreamAdder
	stream  string
	headers []string
	maxLen  int64
	closer  func() error
	now     func() time.Time
}

// Entry is the JSON document stored in each stream entry's data field.
type Entry struct {
	GameID   int                `json:"game_id"`
	Season   int                `json:"season"`
	Features map[string]float64 `json:"features"`
	Label    float64            `json:"label"`
}

// NewStreamSink connects to Redis and publishes to stream.
func NewStreamSink(redisURL, stream string, headers []string) (*StreamSink, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	s := NewStreamSinkFromClient(client, stream, headers)
	s.closer = client.Close
	return s, nil
}

// NewStreamSinkFromClient publishes through an existing client.
func NewStreamSinkFromClient(client StreamAdder, stream string, headers []string) *StreamSink {
	return &StreamSink{
		client:  client,
		stream:  stream,
		headers: headers,
		now:     time.Now,
	}
}

// WithMaxLen caps the stream at roughly n entries.
func (s *StreamSink) WithMaxLen(n int64) *StreamSink {
	s.maxLen = n
	return s
}

// Name identifies the sink in logs and metrics.
func (s *StreamSink) Name() string { return "redis_stream" }

// Emit publishes one row.
func (s *StreamSink) Emit(ctx context.Context, row features.Row) error {
	if len(row.Values) != len(s.headers) {
		return fmt.Errorf("row for game %d has %d values, schema has %d", row.GameID, len(row.Values), len(s.headers))
	}

	entry := Entry{
		GameID:   row.GameID,
		Season:   row.Season,
		Features: make(map[string]float64, len(s.headers)),
		Label:    row.Label(),
	}
	for i, h := range s.headers {
		entry.Features[h] = row.Values[i]
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": s.now().Unix(),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("publishing game %d to %s: %w", row.GameID, s.stream, err)
	}
	return nil
}

// Close closes the Redis connection if the sink opened it.
func (s *StreamSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
