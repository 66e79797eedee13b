package service

import (
	"context"
	"testing"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/entity"
	"golang-stock-circle/internal/testutil"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/common"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupBySector(t *testing.T) {
	entries := []entity.WatchlistEntry{
		{ID: 1, Symbol: "MSFT", Sector: "Technology", Term: entity.TermLong},
		{ID: 2, Symbol: "AAPL", Sector: "Technology", Term: entity.TermLong},
		{ID: 3, Symbol: "XOM", Sector: "Energy", Term: entity.TermShort},
		{ID: 4, Symbol: "AAPL", Sector: "Technology", Term: entity.TermLong},
		{ID: 5, Symbol: "AMD", Sector: "Technology", Term: entity.TermShort},
		{ID: 6, Symbol: "ODD", Sector: "Technology", Term: "medium"},
	}

	grouped := GroupBySector(entries)

	require.Len(t, grouped, 2)
	tech := grouped["Technology"]
	require.Len(t, tech.Long, 3)
	assert.Equal(t, []uint{2, 4, 1}, []uint{tech.Long[0].ID, tech.Long[1].ID, tech.Long[2].ID})
	require.Len(t, tech.Short, 1)
	assert.Equal(t, "AMD", tech.Short[0].Symbol)

	energy := grouped["Energy"]
	assert.Empty(t, energy.Long)
	assert.NotNil(t, energy.Long)
	assert.Equal(t, "XOM", energy.Short[0].Symbol)

	assert.Empty(t, GroupBySector(nil))
}

func TestWatchlistService_CacheInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "admin", true)

	grouped, err := f.watchlist.GetGrouped(ctx)
	require.NoError(t, err)
	assert.Empty(t, grouped)
	_, cached := f.cache.Get(common.CacheKeyWatchlistGrouped)
	assert.True(t, cached)

	entry, err := f.watchlist.AddEntry(ctx, admin.ID, dto.SubmissionRequest{
		Symbol: "xom", CompanyName: "Exxon", Sector: "Energy", Term: entity.TermShort,
	})
	require.NoError(t, err)
	assert.Equal(t, "XOM", entry.Symbol)
	assert.Len(t, f.publisher.ofType(common.EventWatchlistUpdated), 1)

	grouped, err = f.watchlist.GetGrouped(ctx)
	require.NoError(t, err)
	require.Len(t, grouped["Energy"].Short, 1)

	price := decimal.RequireFromString("112.40")
	term := entity.TermLong
	updated, err := f.watchlist.UpdateEntry(ctx, admin.ID, entry.ID, dto.UpdateEntryRequest{CurrentPrice: &price, Term: &term})
	require.NoError(t, err)
	assert.True(t, updated.CurrentPrice.Valid)
	assert.True(t, price.Equal(updated.CurrentPrice.Decimal))
	assert.NotNil(t, updated.PriceUpdatedAt)

	grouped, err = f.watchlist.GetGrouped(ctx)
	require.NoError(t, err)
	assert.Len(t, grouped["Energy"].Long, 1)
	assert.Empty(t, grouped["Energy"].Short)

	require.NoError(t, f.watchlist.DeleteEntry(ctx, admin.ID, entry.ID))
	grouped, err = f.watchlist.GetGrouped(ctx)
	require.NoError(t, err)
	assert.Empty(t, grouped)
}

func TestWatchlistService_AdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", false)

	_, err := f.watchlist.AddEntry(ctx, alice.ID, dto.SubmissionRequest{Symbol: "X", CompanyName: "X", Sector: "S", Term: entity.TermLong})
	assert.ErrorIs(t, err, apperror.ErrPermission)
	_, err = f.watchlist.UpdateEntry(ctx, alice.ID, 1, dto.UpdateEntryRequest{})
	assert.ErrorIs(t, err, apperror.ErrPermission)
	assert.ErrorIs(t, f.watchlist.DeleteEntry(ctx, alice.ID, 1), apperror.ErrPermission)
}

func TestWatchlistService_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "admin", true)

	notes := "n"
	_, err := f.watchlist.UpdateEntry(ctx, admin.ID, 77, dto.UpdateEntryRequest{Notes: &notes})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, f.watchlist.DeleteEntry(ctx, admin.ID, 77), apperror.ErrNotFound)
}
