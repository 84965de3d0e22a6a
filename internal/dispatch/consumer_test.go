package dispatch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gympulse/gym-notify/backend/internal/dispatch"
	"github.com/gympulse/gym-notify/backend/internal/models"
	"github.com/gympulse/gym-notify/backend/internal/repositories"
)

type fakeGateway struct {
	mu    sync.Mutex
	err   error
	calls []*dispatch.Envelope
}

func (g *fakeGateway) Send(_ context.Context, env *dispatch.Envelope) (*dispatch.DeliveryOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, env)
	if g.err != nil {
		return nil, g.err
	}
	n := len(env.Tokens)
	if env.Mode == dispatch.AddressSingle {
		n = 1
	}
	return &dispatch.DeliveryOutcome{SuccessCount: n}, nil
}

func (g *fakeGateway) Calls() []*dispatch.Envelope {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*dispatch.Envelope(nil), g.calls...)
}

type fakeFeed struct {
	mu      sync.Mutex
	entries []*models.AdminNotification
}

func (f *fakeFeed) CreateEntry(entry *models.AdminNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeFeed) GetStats(string) (*models.NotificationStats, error) {
	return &models.NotificationStats{}, nil
}

func newConsumer(queue repositories.QueueRepository, feed repositories.FeedRepository, gw dispatch.Gateway, sources ...dispatch.TokenSource) *dispatch.Consumer {
	logger := zap.NewNop()
	return dispatch.NewConsumer(
		queue,
		feed,
		dispatch.NewResolver(logger, sources...),
		dispatch.NewBuilder(testBaseURL, testIcon),
		gw,
		logger,
		dispatch.Options{PollInterval: 10 * time.Millisecond, BatchSize: 10, Workers: 2},
	)
}

func TestConsumer_MissingTargetIdentity(t *testing.T) {
	repo := repositories.NewMockQueueRepository()
	gw := &fakeGateway{}
	consumer := newConsumer(repo, nil, gw)

	id := repo.Seed(&models.NotificationRecord{Title: "T", Body: "B"})
	record, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)

	consumer.Process(context.Background(), record)

	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, stored.Processed)
	assert.False(t, stored.Success)
	assert.Equal(t, "Missing targetUid", stored.Result)
	assert.NotNil(t, stored.ProcessedAt)
	assert.Empty(t, gw.Calls())
}

func TestConsumer_NoTokensFound(t *testing.T) {
	repo := repositories.NewMockQueueRepository()
	gw := &fakeGateway{}
	consumer := newConsumer(repo, nil, gw, stubSource{name: "admins"})

	id := repo.Seed(&models.NotificationRecord{TargetUID: "admin1", Title: "T", Body: "B"})
	record, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)

	consumer.Process(context.Background(), record)

	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, stored.Processed)
	assert.False(t, stored.Success)
	assert.Equal(t, "No tokens found", stored.Result)
	assert.Empty(t, gw.Calls())
}

func TestConsumer_MultiTokenDelivery(t *testing.T) {
	repo := repositories.NewMockQueueRepository()
	gw := &fakeGateway{}
	consumer := newConsumer(repo, nil, gw,
		stubSource{name: "admins", tokens: []string{"tokA", "tokB"}})

	id := repo.Seed(&models.NotificationRecord{
		TargetUID: "admin1",
		Title:     "T",
		Body:      "B",
		Type:      models.TypeTest,
	})
	record, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)

	consumer.Process(context.Background(), record)

	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, stored.Processed)
	assert.True(t, stored.Success)
	assert.Equal(t, "Successfully sent", stored.Result)

	calls := gw.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, dispatch.AddressMulti, calls[0].Mode)
	assert.ElementsMatch(t, []string{"tokA", "tokB"}, calls[0].Tokens)
	assert.Equal(t, "T", calls[0].Alert.Title)
}

func TestConsumer_SingleTokenDelivery(t *testing.T) {
	repo := repositories.NewMockQueueRepository()
	gw := &fakeGateway{}
	consumer := newConsumer(repo, nil, gw,
		stubSource{name: "users", tokens: []string{"tokA"}})

	id := repo.Seed(&models.NotificationRecord{TargetUID: "user1", Title: "T", Body: "B"})
	record, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)

	consumer.Process(context.Background(), record)

	calls := gw.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, dispatch.AddressSingle, calls[0].Mode)
	assert.Equal(t, "tokA", calls[0].Token)
}

func TestConsumer_TransportErrorMarksFailure(t *testing.T) {
	repo := repositories.NewMockQueueRepository()
	gw := &fakeGateway{err: errors.New("fcm send: unavailable")}
	consumer := newConsumer(repo, nil, gw,
		stubSource{name: "admins", tokens: []string{"tokA"}})

	id := repo.Seed(&models.NotificationRecord{TargetUID: "admin1", Title: "T", Body: "B"})
	record, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)

	consumer.Process(context.Background(), record)

	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, stored.Processed)
	assert.False(t, stored.Success)
	assert.Contains(t, stored.Result, "unavailable")
	assert.Len(t, gw.Calls(), 1)
}

func TestConsumer_SkipsTerminalRecords(t *testing.T) {
	repo := repositories.NewMockQueueRepository()
	gw := &fakeGateway{}
	consumer := newConsumer(repo, nil, gw,
		stubSource{name: "admins", tokens: []string{"tokA"}})

	id := repo.Seed(&models.NotificationRecord{
		TargetUID: "admin1",
		Title:     "T",
		Body:      "B",
		Processed: true,
		Success:   true,
	})
	record, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)

	consumer.Process(context.Background(), record)

	assert.Empty(t, gw.Calls())
	assert.Zero(t, repo.MarkCalls)
}

func TestConsumer_WriteBackFailureIsSwallowed(t *testing.T) {
	repo := repositories.NewMockQueueRepository()
	repo.MarkErr = errors.New("write conflict")
	gw := &fakeGateway{}
	consumer := newConsumer(repo, nil, gw,
		stubSource{name: "admins", tokens: []string{"tokA"}})

	id := repo.Seed(&models.NotificationRecord{TargetUID: "admin1", Title: "T", Body: "B"})
	record, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)

	consumer.Process(context.Background(), record)

	assert.Len(t, gw.Calls(), 1)
	assert.Equal(t, 1, repo.MarkCalls)

	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, stored.Processed)
}

func TestConsumer_MirrorsFeedEntryOnSuccess(t *testing.T) {
	repo := repositories.NewMockQueueRepository()
	gw := &fakeGateway{}
	feed := &fakeFeed{}
	consumer := newConsumer(repo, feed, gw,
		stubSource{name: "admins", tokens: []string{"tokA"}})

	id := repo.Seed(&models.NotificationRecord{
		TargetUID: "admin1",
		Title:     "New Member",
		Body:      "Alice joined",
	})
	record, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)

	consumer.Process(context.Background(), record)

	require.Len(t, feed.entries, 1)
	assert.Equal(t, "admin1", feed.entries[0].AdminUID)
	assert.Equal(t, models.TypeGeneral, feed.entries[0].Type)
	assert.Equal(t, "New Member", feed.entries[0].Title)
	assert.Equal(t, "Alice joined", feed.entries[0].Message)
}

func TestConsumer_NoFeedEntryOnFailure(t *testing.T) {
	repo := repositories.NewMockQueueRepository()
	gw := &fakeGateway{}
	feed := &fakeFeed{}
	consumer := newConsumer(repo, feed, gw)

	id := repo.Seed(&models.NotificationRecord{TargetUID: "admin1", Title: "T", Body: "B"})
	record, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)

	consumer.Process(context.Background(), record)

	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, stored.Success)
	assert.Empty(t, feed.entries)
}

func TestConsumer_RunDrainsQueue(t *testing.T) {
	repo := repositories.NewMockQueueRepository()
	gw := &fakeGateway{}
	consumer := newConsumer(repo, nil, gw,
		stubSource{name: "admins", tokens: []string{"tokA"}})

	var ids []string
	for i := 0; i < 3; i++ {
		ids = append(ids, repo.Seed(&models.NotificationRecord{
			TargetUID: "admin1",
			Title:     "T",
			Body:      "B",
			CreatedAt: time.Now().Add(time.Duration(i) * time.Millisecond),
		}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		for _, id := range ids {
			record, err := repo.GetByID(context.Background(), id)
			if err != nil || !record.Processed {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	for _, id := range ids {
		record, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, record.Success)
		assert.Equal(t, "Successfully sent", record.Result)
	}
	assert.Len(t, gw.Calls(), 3)
}
