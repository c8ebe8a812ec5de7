// Package cflog wraps log/slog with the CCSDS-flavored severities the
// teacher's fs/log package defines on top of slog.Level (see
// fs/log/slog_test.go's TestSlogLevelToString): NOTICE sits between INFO
// and WARNING, and CRITICAL/ALERT/EMERGENCY sit above ERROR, mirroring a
// syslog-style severity ladder rather than slog's four built-in levels.
//
// Every log call is about a transaction, the way the teacher's fs.Logf
// takes an fs.Object/fs.Fs as its first argument to say what the line is
// about; here that's a TxnKey, rendered as peer_eid/sequence_number
// attributes.
package cflog

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/thnkslprpt/cfdp/internal/pdu"
)

// Severity levels extending slog's four built-in ones, offset the same
// way the teacher's fs package does (fs.SlogLevelNotice = slog.LevelInfo+2,
// and so on upward from slog.LevelError).
const (
	LevelNotice   = slog.LevelInfo + 2
	LevelCritical = slog.LevelError + 2
	LevelAlert    = slog.LevelError + 4
	LevelEmergency = slog.LevelError + 6
)

func levelString(l slog.Level) string {
	switch l {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case LevelNotice:
		return "NOTICE"
	case slog.LevelWarn:
		return "WARNING"
	case slog.LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	case LevelAlert:
		return "ALERT"
	case LevelEmergency:
		return "EMERGENCY"
	default:
		return l.String()
	}
}

// Logger is the package's handle; it wraps a *slog.Logger configured with
// a ReplaceAttr that renders the custom levels by name.
type Logger struct {
	slog *slog.Logger
}

// New returns a Logger writing to w in slog's text format with the
// extended level names substituted in.
func New(w *os.File) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: LevelDebugSlog(),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lv, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(levelString(lv))
				}
			}
			return a
		},
	})
	return &Logger{slog: slog.New(h)}
}

// LevelDebugSlog exists only so New's handler enables every custom level,
// all of which sort above slog.LevelDebug.
func LevelDebugSlog() slog.Level { return slog.LevelDebug }

func (l *Logger) log(ctx context.Context, level slog.Level, key pdu.TxnKey, event Event, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.slog.Log(ctx, level, msg,
		slog.Uint64("peer_eid", key.PeerEID),
		slog.Uint64("sequence_number", uint64(key.SequenceNumber)),
		slog.String("event", string(event)),
	)
}

// Debugf logs fine-grained internal detail, no named event.
func (l *Logger) Debugf(ctx context.Context, key pdu.TxnKey, format string, args ...any) {
	l.log(ctx, slog.LevelDebug, key, "", format, args...)
}

// Infof logs routine informational detail, no named event.
func (l *Logger) Infof(ctx context.Context, key pdu.TxnKey, format string, args ...any) {
	l.log(ctx, slog.LevelInfo, key, "", format, args...)
}

// Noticef logs a named observability event at NOTICE severity — the
// level routine events (MD_RECV, EOF_RECV, NAK_SENT, ...) are emitted at;
// failure events go through Errorf.
func (l *Logger) Noticef(ctx context.Context, key pdu.TxnKey, event Event, format string, args ...any) {
	l.log(ctx, LevelNotice, key, event, format, args...)
}

// Logf is an alias of Noticef with no named event, matching the teacher's
// convention that a bare Logf call is notice-level informational output.
func (l *Logger) Logf(ctx context.Context, key pdu.TxnKey, format string, args ...any) {
	l.log(ctx, LevelNotice, key, "", format, args...)
}

// Warnf logs a recoverable anomaly.
func (l *Logger) Warnf(ctx context.Context, key pdu.TxnKey, event Event, format string, args ...any) {
	l.log(ctx, slog.LevelWarn, key, event, format, args...)
}

// Errorf logs a named observability event at ERROR severity.
func (l *Logger) Errorf(ctx context.Context, key pdu.TxnKey, event Event, format string, args ...any) {
	l.log(ctx, slog.LevelError, key, event, format, args...)
}

// Criticalf logs a channel- or engine-wide fault.
func (l *Logger) Criticalf(ctx context.Context, key pdu.TxnKey, format string, args ...any) {
	l.log(ctx, LevelCritical, key, "", format, args...)
}
