package db

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/logger"
)

func newBufferedQueryLogger(buf *bytes.Buffer) gormlogger.Interface {
	logg := logger.New(logger.Options{ServiceName: "db-test", Level: logger.ParseLevel("debug"), Output: buf})
	return newQueryLogger(logg, 10*time.Millisecond)
}

func TestQueryLoggerWritesFailuresAndSlowQueries(t *testing.T) {
	buf := &bytes.Buffer{}
	q := newBufferedQueryLogger(buf)
	stmt := func() (string, int64) { return "SELECT 1", 0 }

	q.Trace(context.Background(), time.Now(), stmt, errors.New("syntax error"))
	assert.Contains(t, buf.String(), "db.query_failed")
	assert.Contains(t, buf.String(), "SELECT 1")

	buf.Reset()
	q.Trace(context.Background(), time.Now().Add(-time.Second), stmt, nil)
	assert.Contains(t, buf.String(), "db.query_slow")

	buf.Reset()
	q.Trace(context.Background(), time.Now(), stmt, gorm.ErrRecordNotFound)
	q.Trace(context.Background(), time.Now(), stmt, nil)
	assert.Empty(t, buf.String())
}

func TestQueryLoggerModes(t *testing.T) {
	buf := &bytes.Buffer{}
	q := newBufferedQueryLogger(buf)

	q.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("x"))
	assert.Empty(t, buf.String())

	q.LogMode(gormlogger.Info).Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 2", 1 }, nil)
	require.True(t, strings.Contains(buf.String(), "db.query"))

	assert.Equal(t, gormlogger.Discard, newQueryLogger(nil, time.Second))
}
