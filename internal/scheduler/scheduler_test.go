package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/postboxhq/postbox/internal/clock"
	"github.com/postboxhq/postbox/internal/observability/metrics"
	storagedomain "github.com/postboxhq/postbox/internal/storagecharge/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type storageStub struct {
	calls  int
	report *storagedomain.Report
	err    error
}

func (s *storageStub) GenerateDailyStorageCharges(ctx context.Context, tenantID string) (*storagedomain.Report, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func newScheduler(t *testing.T, stub *storageStub) *Scheduler {
	t.Helper()
	metrics.ResetJobMetricsForTest()

	sched, err := New(Params{
		Log:        zap.NewNop(),
		Clock:      clock.NewFakeClock(time.Date(2026, 3, 9, 2, 0, 0, 0, time.UTC)),
		StorageSvc: stub,
	})
	require.NoError(t, err)
	return sched
}

func TestRunOnce_Success(t *testing.T) {
	stub := &storageStub{report: &storagedomain.Report{ChargesCreated: 4, TenantsScanned: 2}}
	sched := newScheduler(t, stub)

	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, 1, stub.calls)
}

func TestRunOnce_PackageErrorsAreNotFatal(t *testing.T) {
	stub := &storageStub{report: &storagedomain.Report{
		ChargesCreated: 1,
		Errors:         []storagedomain.PackageError{{PackageID: "42", Message: "broken config"}},
	}}
	sched := newScheduler(t, stub)

	require.NoError(t, sched.RunOnce(context.Background()))
}

func TestRunOnce_BackendFailurePropagates(t *testing.T) {
	stub := &storageStub{err: errors.New("connection refused")}
	sched := newScheduler(t, stub)

	err := sched.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), storageFeeJob)
}

func TestRunOnce_TimeoutIsSoft(t *testing.T) {
	stub := &storageStub{err: context.DeadlineExceeded}
	sched := newScheduler(t, stub)

	assert.NoError(t, sched.RunOnce(context.Background()))
}

func TestNew_RejectsMissingDeps(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
