package logic

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matchoracle/prediction-api/internal/worker"
)

func TestAnalyticsSummary(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	var gotDays []interface{}

	conn := &MockConn{
		QueryRowFunc: func(ctx context.Context, query string, args ...interface{}) driver.Row {
			gotDays = args
			return &MockRow{Values: []interface{}{uint64(12), uint64(3), 64.5, 1830.0}}
		},
		QueryFunc: func(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
			return &MockRows{Data: [][]interface{}{
				{"soccer", uint64(9), uint64(1), 66.0, 6.5},
				{"tennis", uint64(3), uint64(2), 58.5, math.NaN()},
			}}, nil
		},
	}
	rdb := newFakeRedis()
	rdb.hashes[worker.DailyCountersKey(now)] = map[string]string{"soccer": "4", "tennis": "1", "broken": "x"}

	svc := NewAnalyticsService(conn, rdb, zap.NewNop()).(*analyticsService)
	svc.now = func() time.Time { return now }

	summary, err := svc.Summary(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, []interface{}{7}, gotDays)
	assert.Equal(t, 7, summary.Days)
	assert.Equal(t, uint64(12), summary.TotalPredictions)
	assert.Equal(t, uint64(3), summary.TotalFailures)
	assert.Equal(t, 64.5, summary.AverageConfidence)
	assert.Equal(t, 1830.0, summary.AverageDurationMs)

	require.Len(t, summary.BySport, 2)
	assert.Equal(t, "soccer", summary.BySport[0].Sport)
	assert.Equal(t, 6.5, summary.BySport[0].AverageValue)
	assert.Equal(t, 0.0, summary.BySport[1].AverageValue, "NaN averages become 0")

	assert.Equal(t, map[string]int64{"soccer": 4, "tennis": 1}, summary.Today)
	assert.Equal(t, now, summary.LastUpdated)
}

func TestAnalyticsDaysBounds(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 30},
		{-5, 30},
		{90, 90},
		{1000, 365},
	}
	for _, tt := range tests {
		var got interface{}
		conn := &MockConn{QueryRowFunc: func(ctx context.Context, query string, args ...interface{}) driver.Row {
			got = args[0]
			return &MockRow{Values: []interface{}{uint64(0), uint64(0), math.NaN(), math.NaN()}}
		}}
		summary, err := NewAnalyticsService(conn, nil, zap.NewNop()).Summary(context.Background(), tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.want, summary.Days)
		assert.Zero(t, summary.AverageConfidence)
		assert.Empty(t, summary.Today)
		assert.NotNil(t, summary.BySport)
	}
}

func TestAnalyticsTotalsError(t *testing.T) {
	conn := &MockConn{QueryRowFunc: func(ctx context.Context, query string, args ...interface{}) driver.Row {
		return &MockRow{ScanErr: errBoom}
	}}
	_, err := NewAnalyticsService(conn, nil, zap.NewNop()).Summary(context.Background(), 7)
	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, conn.QueryCalls)
}

func TestAnalyticsRedisErrorLeavesTodayEmpty(t *testing.T) {
	conn := &MockConn{}
	rdb := newFakeRedis()
	rdb.Err = errBoom

	summary, err := NewAnalyticsService(conn, rdb, zap.NewNop()).Summary(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, summary.Today)
}
