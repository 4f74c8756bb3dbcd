package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpnchanel/usersvc/internal/metrics"
)

type fakeStream struct {
	mu   sync.Mutex
	args []*redis.XAddArgs
	err  error
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.args = append(f.args, a)
	return redis.NewStringResult("1700000000000-0", f.err)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisher_Publish(t *testing.T) {
	t.Parallel()

	stream := &fakeStream{}
	p := NewPublisher(stream, testLogger(), nil)
	at := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	id, err := p.Publish(context.Background(), NewEvent(UserCreated, "u-1", "ada", true, at))
	require.NoError(t, err)
	assert.Equal(t, "1700000000000-0", id)

	require.Len(t, stream.args, 1)
	args := stream.args[0]
	assert.Equal(t, StreamKey, args.Stream)
	assert.True(t, args.Approx)
	assert.Equal(t, int64(MaxStreamLen), args.MaxLen)

	values := args.Values.(map[string]interface{})
	assert.Equal(t, "user.created", values["type"])

	var got Event
	require.NoError(t, json.Unmarshal([]byte(values["payload"].(string)), &got))
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, "ada", got.Username)
	assert.Equal(t, at.UnixMilli(), got.OccurredAt)
}

func TestPublisher_PublishError(t *testing.T) {
	t.Parallel()

	p := NewPublisher(&fakeStream{err: errors.New("connection refused")}, testLogger(), nil)

	_, err := p.Publish(context.Background(), NewEvent(UserDeleted, "u-1", "", false, time.Now()))
	assert.ErrorContains(t, err, "xadd")
}

func TestPublisher_PublishAsyncCounts(t *testing.T) {
	t.Parallel()

	rec := metrics.NewInMemory()
	ok := NewPublisher(&fakeStream{}, testLogger(), rec)
	failing := NewPublisher(&fakeStream{err: errors.New("down")}, testLogger(), rec)

	ok.PublishAsync(NewEvent(UserUpdated, "u-1", "ada", true, time.Now()))
	ok.PublishAsync(NewEvent(UserUpdated, "u-1", "ada", true, time.Now()))
	failing.PublishAsync(NewEvent(UserUpdated, "u-2", "bob", true, time.Now()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, ok.Close(ctx))
	require.NoError(t, failing.Close(ctx))

	snap := rec.Snapshot()
	assert.Equal(t, uint64(2), snap.EventsPublished)
	assert.Equal(t, uint64(1), snap.EventsDropped)
}
