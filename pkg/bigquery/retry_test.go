package bigquery

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type scriptedInserter struct {
	errs  []error
	calls int
}

func (s *scriptedInserter) InsertRows(context.Context, string, []any) error {
	s.calls++
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func newInstantRetry(t *testing.T, next RowInserter) (*RetryingInserter, *[]time.Duration) {
	t.Helper()
	r, err := NewRetryingInserter(next, RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Second, MaximumBackoff: 3 * time.Second})
	require.NoError(t, err)
	var waits []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return r, &waits
}

func TestRetryingInserterRetriesTransientErrors(t *testing.T) {
	next := &scriptedInserter{errs: []error{
		&googleapi.Error{Code: http.StatusServiceUnavailable},
		status.Error(codes.Unavailable, "try again"),
	}}
	r, waits := newInstantRetry(t, next)

	require.NoError(t, r.InsertRows(context.Background(), "sales_snapshots", []any{1}))
	assert.Equal(t, 3, next.calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *waits)
}

func TestRetryingInserterStopsOnPermanentError(t *testing.T) {
	next := &scriptedInserter{errs: []error{&googleapi.Error{Code: http.StatusBadRequest}}}
	r, _ := newInstantRetry(t, next)

	err := r.InsertRows(context.Background(), "sales_snapshots", []any{1})
	require.Error(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestRetryingInserterGivesUpAfterMaxAttempts(t *testing.T) {
	transient := &googleapi.Error{Code: http.StatusTooManyRequests}
	next := &scriptedInserter{errs: []error{transient, transient, transient, transient}}
	r, waits := newInstantRetry(t, next)

	err := r.InsertRows(context.Background(), "sales_snapshots", []any{1})
	require.Error(t, err)
	assert.Equal(t, 3, next.calls)
	assert.Len(t, *waits, 2)
}

func TestRetryingInserterSkipsEmptyBatches(t *testing.T) {
	next := &scriptedInserter{}
	r, _ := newInstantRetry(t, next)
	require.NoError(t, r.InsertRows(context.Background(), "sales_snapshots", nil))
	assert.Zero(t, next.calls)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("schema mismatch")))
	assert.True(t, IsRetryable(cbigquery.MultiError{&googleapi.Error{Code: http.StatusBadGateway}}))
	assert.False(t, IsRetryable(cbigquery.MultiError{
		&googleapi.Error{Code: http.StatusBadGateway},
		&googleapi.Error{Code: http.StatusBadRequest},
	}))
	assert.False(t, IsRetryable(status.Error(codes.InvalidArgument, "bad row")))
}
