package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/entity"
	"golang-stock-circle/internal/testutil"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceRefreshService_PartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "admin", true)

	for _, e := range []dto.SubmissionRequest{
		{Symbol: "AAPL", CompanyName: "Apple", Sector: "Technology", Term: entity.TermLong},
		{Symbol: "AAPL", CompanyName: "Apple", Sector: "Technology", Term: entity.TermShort},
		{Symbol: "BADSYM", CompanyName: "Bad", Sector: "Unknown", Term: entity.TermShort},
	} {
		_, err := f.watchlist.AddEntry(ctx, admin.ID, e)
		require.NoError(t, err)
	}

	feed := &fakePriceFeed{
		prices: map[string]string{"AAPL": "189.25"},
		errs:   map[string]error{"BADSYM": errors.New("symbol not found")},
	}
	prices := &fakePriceCache{}
	svc := NewPriceRefreshService(PriceRefreshDeps{
		Entries:   f.entries,
		Users:     f.users,
		Runs:      f.runs,
		Feed:      feed,
		Prices:    prices,
		Watchlist: f.watchlist,
		Publisher: f.publisher,
		Notifier:  f.notifier,
	}, logger.NewNop())

	summary, err := svc.RefreshAsAdmin(ctx, admin.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "BADSYM"}, feed.calls)
	require.Len(t, summary.Updated, 1)
	assert.Equal(t, "AAPL", summary.Updated[0].Symbol)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "BADSYM", summary.Failed[0].Symbol)
	assert.Contains(t, summary.Failed[0].Error, "not found")

	entries, err := f.watchlist.ListEntries(ctx)
	require.NoError(t, err)
	for _, e := range entries {
		if e.Symbol == "AAPL" {
			require.True(t, e.CurrentPrice.Valid)
			assert.Equal(t, "189.25", e.CurrentPrice.Decimal.StringFixed(2))
		} else {
			assert.False(t, e.CurrentPrice.Valid)
		}
	}
	assert.Contains(t, prices.prices, "AAPL")

	run, err := f.runs.FindByID(ctx, summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, run.Status)
	assert.Equal(t, entity.TriggerManual, run.Trigger)
	require.NotNil(t, run.TriggeredBy)
	var stored dto.RefreshSummary
	require.NoError(t, json.Unmarshal(run.Output, &stored))
	assert.Len(t, stored.Failed, 1)

	// manual refreshes do not post to the admin chat
	assert.Empty(t, f.notifier.sent())

	last, _, err := svc.LastPrice(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "189.25", last.Price.StringFixed(2))
	_, _, err = svc.LastPrice(ctx, "BADSYM")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPriceRefreshService_ScheduledNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "admin", true)
	_, err := f.watchlist.AddEntry(ctx, admin.ID, dto.SubmissionRequest{Symbol: "MSFT", CompanyName: "Microsoft", Sector: "Technology", Term: entity.TermLong})
	require.NoError(t, err)

	svc := NewPriceRefreshService(PriceRefreshDeps{
		Entries:   f.entries,
		Users:     f.users,
		Runs:      f.runs,
		Feed:      &fakePriceFeed{},
		Prices:    &fakePriceCache{},
		Watchlist: f.watchlist,
		Publisher: f.publisher,
		Notifier:  f.notifier,
	}, logger.NewNop())

	summary, err := svc.Refresh(ctx, entity.TriggerSchedule, nil)
	require.NoError(t, err)
	assert.Empty(t, summary.Updated)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, errNoPrice.Error(), summary.Failed[0].Error)

	sent := f.notifier.sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "MSFT")
}

func TestPriceRefreshService_AdminOnly(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, "alice", false)
	svc := NewPriceRefreshService(PriceRefreshDeps{
		Entries: f.entries, Users: f.users, Runs: f.runs, Feed: &fakePriceFeed{}, Prices: &fakePriceCache{},
		Watchlist: f.watchlist, Publisher: f.publisher, Notifier: f.notifier,
	}, logger.NewNop())

	_, err := svc.RefreshAsAdmin(context.Background(), alice.ID)
	assert.ErrorIs(t, err, apperror.ErrPermission)
}
