package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velocards/velocards-cli/pkg/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cards := []domain.Card{
		{MaskedPan: "**** **** **** 4821", Status: domain.CardActive, SpendLimit: 500},
	}
	require.NoError(t, s.Put(ctx, KindCards, cards))

	var got []domain.Card
	fetchedAt, err := s.Get(ctx, KindCards, &got)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "**** **** **** 4821", got[0].MaskedPan)
	assert.WithinDuration(t, time.Now(), fetchedAt, 5*time.Second)
}

func TestGetMiss(t *testing.T) {
	s := openTestStore(t)

	var got []domain.Card
	_, err := s.Get(context.Background(), KindCards, &got)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestPutOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, KindBalance, domain.Balance{Available: 100}))
	require.NoError(t, s.Put(ctx, KindBalance, domain.Balance{Available: 42}))

	var got domain.Balance
	_, err := s.Get(ctx, KindBalance, &got)
	require.NoError(t, err)
	assert.Equal(t, float64(42), got.Available)
}

func TestPutAllAtomic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.PutAll(ctx, map[string]any{
		KindCards:   []domain.Card{{MaskedPan: "**** **** **** 0007"}},
		KindBalance: domain.Balance{Available: 10},
	})
	require.NoError(t, err)

	var cards []domain.Card
	_, err = s.Get(ctx, KindCards, &cards)
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	var bal domain.Balance
	_, err = s.Get(ctx, KindBalance, &bal)
	require.NoError(t, err)
	assert.Equal(t, float64(10), bal.Available)
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, KindCards, []domain.Card{{}}))
	require.NoError(t, s.Clear(ctx))

	var got []domain.Card
	_, err := s.Get(ctx, KindCards, &got)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestFetchedAtAdvances(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return base }
	require.NoError(t, s.Put(ctx, KindInvoices, []domain.Invoice{}))

	s.now = func() time.Time { return base.Add(time.Hour) }
	require.NoError(t, s.Put(ctx, KindInvoices, []domain.Invoice{}))

	var got []domain.Invoice
	fetchedAt, err := s.Get(ctx, KindInvoices, &got)
	require.NoError(t, err)
	assert.Equal(t, base.Add(time.Hour).Unix(), fetchedAt.Unix())
}
