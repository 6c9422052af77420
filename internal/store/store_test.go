package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *DB {
	t.Helper()
	d, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestHashIP(t *testing.T) {
	d := setupDB(t)
	a := d.HashIP("203.0.113.7")
	assert.Len(t, a, 16)
	assert.Equal(t, a, d.HashIP("203.0.113.7"))
	assert.NotEqual(t, a, d.HashIP("203.0.113.8"))
	assert.NotContains(t, a, "203")
}

func TestRecordVisitAndStats(t *testing.T) {
	d := setupDB(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	d.now = func() time.Time { return now.Add(-10 * 24 * time.Hour) }
	require.NoError(t, d.RecordVisit(ctx, "10.0.0.1", "old", "/"))

	d.now = func() time.Time { return now.Add(-3 * 24 * time.Hour) }
	require.NoError(t, d.RecordVisit(ctx, "10.0.0.2", "week", "/"))

	d.now = func() time.Time { return now }
	require.NoError(t, d.RecordVisit(ctx, "10.0.0.1", "today", "/"))
	require.NoError(t, d.RecordVisit(ctx, "10.0.0.1", "today", "/"))

	stats, err := d.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalVisitors)
	assert.Equal(t, int64(2), stats.UniqueVisitors)
	assert.Equal(t, int64(2), stats.VisitorsToday)
	assert.Equal(t, int64(3), stats.VisitorsThisWeek)
	require.Len(t, stats.RecentVisitors, 4)
	assert.Equal(t, "today", stats.RecentVisitors[0].UserAgent)
	assert.Equal(t, "old", stats.RecentVisitors[3].UserAgent)
}

func TestCertificateViews(t *testing.T) {
	d := setupDB(t)
	ctx := context.Background()

	require.NoError(t, d.RecordCertificateView(ctx, 2, "Full Stack Web Development"))
	require.NoError(t, d.RecordCertificateView(ctx, 0, "Introduction to Generative AI in Azure"))
	require.NoError(t, d.RecordCertificateView(ctx, 2, "Full Stack Web Development"))

	top, err := d.TopCertificates(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, CertificateViews{Index: 2, Title: "Full Stack Web Development", Views: 2}, top[0])
	assert.Equal(t, int64(1), top[1].Views)

	stats, err := d.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalCertViews)
}

func TestCleanup(t *testing.T) {
	d := setupDB(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	d.now = func() time.Time { return now.AddDate(-2, 0, 0) }
	require.NoError(t, d.RecordVisit(ctx, "10.0.0.1", "ua", "/"))
	d.now = func() time.Time { return now }
	require.NoError(t, d.RecordVisit(ctx, "10.0.0.1", "ua", "/"))

	n, err := d.Cleanup(ctx, 365*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	visits, err := d.RecentVisits(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, visits, 1)
}
