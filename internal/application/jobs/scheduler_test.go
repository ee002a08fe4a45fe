package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakesh-tirumalaparapu/zipp/internal/application/models"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
)

type stubCounter struct {
	counts models.StatusCounts
	err    error
}

func (c stubCounter) CountByStatus(context.Context, *id.UserID) (models.StatusCounts, error) {
	return c.counts, c.err
}

type recordingSink struct {
	calls []models.StatusCounts
}

func (r *recordingSink) SetStatusCounts(counts models.StatusCounts) {
	r.calls = append(r.calls, counts)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRefreshStatusGauge(t *testing.T) {
	sink := &recordingSink{}
	counts := models.StatusCounts{models.StatusWithMaker: 2, models.StatusApproved: 1}
	NewScheduler(stubCounter{counts: counts}, sink, "@every 1m", discard()).RefreshStatusGauge()

	require.Len(t, sink.calls, 1)
	assert.Equal(t, counts, sink.calls[0])
}

func TestRefreshStatusGaugeSkipsOnError(t *testing.T) {
	sink := &recordingSink{}
	NewScheduler(stubCounter{err: errors.New("db down")}, sink, "@every 1m", discard()).RefreshStatusGauge()
	assert.Empty(t, sink.calls)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(stubCounter{counts: models.StatusCounts{}}, &recordingSink{}, "not a schedule", discard())
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	sink := &recordingSink{}
	s := NewScheduler(stubCounter{counts: models.StatusCounts{}}, sink, "@every 1h", discard())
	require.NoError(t, s.Start())
	<-s.Stop().Done()
	assert.Len(t, sink.calls, 1)
}
