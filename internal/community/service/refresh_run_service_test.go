package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"golang-stock-circle/internal/entity"
	"golang-stock-circle/internal/testutil"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshRunService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "admin", true)
	alice := testutil.CreateUser(t, f.db, "alice", false)

	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	recorder := runRecorder{runs: f.runs, logger: logger.NewNop(), now: func() time.Time {
		clock = clock.Add(1500 * time.Millisecond)
		return clock
	}}

	ok, err := recorder.start(ctx, entity.RunKindPriceRefresh, entity.TriggerSchedule, nil)
	require.NoError(t, err)
	recorder.finish(ctx, ok, map[string]int{"updated": 2}, nil)

	cancelled, cancel := context.WithCancel(ctx)
	failed, err := recorder.start(cancelled, entity.RunKindHoldingsSync, entity.TriggerManual, &admin.ID)
	require.NoError(t, err)
	cancel()
	recorder.finish(cancelled, failed, nil, errors.New("context canceled"))

	svc := NewRefreshRunService(f.runs, f.users, logger.NewNop())

	_, err = svc.GetRefreshRuns(ctx, alice.ID, "", 10)
	assert.ErrorIs(t, err, apperror.ErrPermission)
	_, err = svc.GetRefreshRuns(ctx, admin.ID, "bogus", 10)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	all, err := svc.GetRefreshRuns(ctx, admin.ID, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	prices, err := svc.GetRefreshRuns(ctx, admin.ID, entity.RunKindPriceRefresh, 10)
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, "completed", prices[0].Status)
	assert.Equal(t, int64(1500), prices[0].Duration)
	output, err := json.Marshal(prices[0].Output)
	require.NoError(t, err)
	assert.JSONEq(t, `{"updated":2}`, string(output))

	got, err := svc.GetRefreshRunByID(ctx, admin.ID, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.Equal(t, "context canceled", got.ErrorMessage)

	_, err = svc.GetRefreshRunByID(ctx, admin.ID, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
