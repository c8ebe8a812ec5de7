package cflog

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thnkslprpt/cfdp/internal/pdu"
)

func TestLevelStringCoversAllLevels(t *testing.T) {
	cases := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, "DEBUG"},
		{slog.LevelInfo, "INFO"},
		{LevelNotice, "NOTICE"},
		{slog.LevelWarn, "WARNING"},
		{slog.LevelError, "ERROR"},
		{LevelCritical, "CRITICAL"},
		{LevelAlert, "ALERT"},
		{LevelEmergency, "EMERGENCY"},
		{slog.Level(1234), slog.Level(1234).String()},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, levelString(tc.level))
	}
}

func TestLevelOrdering(t *testing.T) {
	assert.True(t, LevelNotice > slog.LevelInfo)
	assert.True(t, LevelNotice < slog.LevelWarn)
	assert.True(t, LevelCritical > slog.LevelError)
	assert.True(t, LevelAlert > LevelCritical)
	assert.True(t, LevelEmergency > LevelAlert)
}

func TestLoggerDoesNotPanicOnAnyMethod(t *testing.T) {
	l := New(os.Stdout)
	key := pdu.TxnKey{PeerEID: 1, SequenceNumber: 2}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		l.Debugf(ctx, key, "debug %d", 1)
		l.Infof(ctx, key, "info")
		l.Noticef(ctx, key, EventMetadataReceived, "md received")
		l.Logf(ctx, key, "plain notice")
		l.Warnf(ctx, key, EventMetadataMismatch, "mismatch")
		l.Errorf(ctx, key, EventChecksumMismatch, "crc mismatch")
		l.Criticalf(ctx, key, "channel fault")
	})
}
