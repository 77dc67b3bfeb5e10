package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"taskapi/internal/model"
	"taskapi/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventMongo(t *testing.T) {
	ctx := context.Background()

	t.Run("starts empty", func(t *testing.T) {
		coll := &fakeCollection{docs: []bson.M{{"customer_id": int64(1)}}}

		repo, err := NewEventMongo(ctx, coll, time.Second)
		require.NoError(t, err)

		got, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unreachable store", func(t *testing.T) {
		repo, err := NewEventMongo(ctx, &fakeCollection{err: errors.New("no reachable servers")}, time.Second)
		assert.ErrorIs(t, err, repository.ErrConnection)
		assert.Nil(t, repo)
	})
}

func TestEventMongo_AddEvent(t *testing.T) {
	ctx := context.Background()
	coll := &fakeCollection{}
	repo, err := NewEventMongo(ctx, coll, time.Second)
	require.NoError(t, err)

	ts := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	event := model.PaymentEvent{CustomerID: 1, PlanID: 2, Amount: 40, Timestamp: ts, Status: true}
	require.NoError(t, repo.AddEvent(ctx, event))

	require.Len(t, coll.docs, 1)
	doc := coll.docs[0]
	assert.ElementsMatch(t, []string{"customer_id", "plan_id", "amount", "timestamp", "status"}, keys(doc))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].CustomerID)
	assert.Equal(t, int64(2), got[0].PlanID)
	assert.Equal(t, 40.0, got[0].Amount)
	assert.True(t, got[0].Status)
	assert.True(t, ts.Equal(got[0].Timestamp))
}

func TestEventMongo_Unsupported(t *testing.T) {
	ctx := context.Background()
	repo, err := NewEventMongo(ctx, &fakeCollection{}, time.Second)
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Add(ctx, model.PaymentEvent{}), repository.ErrUnsupported)

	e, err := repo.FindByID(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrUnsupported)
	assert.Nil(t, e)
}

func TestEventMongo_TransportFailure(t *testing.T) {
	ctx := context.Background()
	coll := &fakeCollection{}
	repo, err := NewEventMongo(ctx, coll, time.Second)
	require.NoError(t, err)
	coll.err = errors.New("write concern error")

	assert.ErrorIs(t, repo.AddEvent(ctx, model.PaymentEvent{CustomerID: 1}), repository.ErrTransport)

	_, err = repo.List(ctx)
	assert.ErrorIs(t, err, repository.ErrTransport)
}

func keys(m bson.M) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
