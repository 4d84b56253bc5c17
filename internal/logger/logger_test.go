package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects logger output to a buffer for testing.
// Returns the buffer and a cleanup function to restore original output.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false
	mu.Unlock()

	reconfigure()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		SetFormat("text")
		SetLevel("INFO")
	}

	return buf, cleanup
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level   string
		visible []string
		hidden  []string
	}{
		{"DEBUG", []string{"DBG", "INF", "WRN", "ERR"}, nil},
		{"INFO", []string{"INF", "WRN", "ERR"}, []string{"DBG"}},
		{"WARN", []string{"WRN", "ERR"}, []string{"DBG", "INF"}},
		{"ERROR", []string{"ERR"}, []string{"DBG", "INF", "WRN"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf, cleanup := captureOutput()
			defer cleanup()

			SetLevel(tt.level)

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")

			out := buf.String()
			for _, s := range tt.visible {
				assert.Contains(t, out, " "+s+" ")
			}
			for _, s := range tt.hidden {
				assert.NotContains(t, out, " "+s+" ")
			}
		})
	}
}

func TestSetLevel_IgnoresInvalid(t *testing.T) {
	_, cleanup := captureOutput()
	defer cleanup()

	SetLevel("WARN")
	SetLevel("verbose")
	assert.Equal(t, LevelWarn, Level(currentLevel.Load()))

	SetLevel("debug")
	assert.True(t, IsDebug())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestTextFormat(t *testing.T) {
	t.Run("KeyValuePairs", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		Info("listed", Host("fs01"), Share("public"), Entries(3))

		out := buf.String()
		assert.Contains(t, out, "listed")
		assert.Contains(t, out, "host=fs01")
		assert.Contains(t, out, "share=public")
		assert.Contains(t, out, "entries=3")
	})

	t.Run("QuotesValuesWithSpaces", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		Info("test message", "key", "value with spaces", "empty", "")

		out := buf.String()
		assert.Contains(t, out, `key="value with spaces"`)
		assert.Contains(t, out, `empty=""`)
	})

	t.Run("GroupsBecomeDottedKeys", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		With("run_id", "r1").WithGroup("stat").Info("done", "acl", "0x1")

		out := buf.String()
		assert.Contains(t, out, "run_id=r1")
		assert.Contains(t, out, "stat.acl=0x1")
	})

	t.Run("NoColorWhenDisabled", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		Error("boom", Err(errors.New("bad")))
		assert.NotContains(t, buf.String(), "\033[")
	})
}

func TestColorTextHandler_Color(t *testing.T) {
	buf := new(bytes.Buffer)
	h := NewColorTextHandler(buf, nil, true)
	l := slog.New(h)

	l.Error("boom", Err(errors.New("bad")))
	assert.Contains(t, buf.String(), colorRed)
	assert.Contains(t, buf.String(), colorCyan+"error"+colorReset)
}

func TestJSONFormat(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetFormat("json")
	Info("run finished", Code(-1), ACL(0x120089), DurationMs(1500*time.Microsecond))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))

	assert.Equal(t, "run finished", entry["msg"])
	assert.Equal(t, float64(-1), entry["code"])
	assert.Equal(t, "0x00120089", entry["acl"])
	assert.Equal(t, 1.5, entry["duration_ms"])
}

func TestSetFormat_IgnoresInvalid(t *testing.T) {
	_, cleanup := captureOutput()
	defer cleanup()

	SetFormat("json")
	SetFormat("xml")
	assert.Equal(t, "json", currentFormat.Load())
}

func TestContextLogging(t *testing.T) {
	t.Run("LogContextInjectsFields", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetFormat("json")

		lc := NewLogContext("run-1", "fs01").WithShare("public").WithUser(`CORP\alice`).WithTrace("abc123", "xyz789")
		ctx := WithContext(context.Background(), lc)

		InfoCtx(ctx, "object", "extra_field", "value")

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))

		assert.Equal(t, "abc123", entry["trace_id"])
		assert.Equal(t, "xyz789", entry["span_id"])
		assert.Equal(t, "run-1", entry["run_id"])
		assert.Equal(t, "fs01", entry["host"])
		assert.Equal(t, "public", entry["share"])
		assert.Equal(t, `CORP\alice`, entry["user"])
		assert.Equal(t, "value", entry["extra_field"])
	})

	t.Run("NilContextHandled", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		require.NotPanics(t, func() {
			//nolint:staticcheck // nil context is tolerated on purpose
			InfoCtx(nil, "test message")
		})

		assert.Contains(t, buf.String(), "test message")
	})

	t.Run("ContextWithoutLogContextHandled", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		require.NotPanics(t, func() {
			WarnCtx(context.Background(), "test message")
		})

		assert.Contains(t, buf.String(), "test message")
	})
}

func TestLogContext(t *testing.T) {
	t.Run("NewLogContext", func(t *testing.T) {
		lc := NewLogContext("run-1", "fs01")
		assert.Equal(t, "run-1", lc.RunID)
		assert.Equal(t, "fs01", lc.Host)
		assert.False(t, lc.StartTime.IsZero())
		assert.GreaterOrEqual(t, lc.DurationMs(), 0.0)
	})

	t.Run("WithShareLeavesOriginal", func(t *testing.T) {
		lc := NewLogContext("run-1", "fs01")
		lc2 := lc.WithShare("data")

		assert.Equal(t, "data", lc2.Share)
		assert.Equal(t, "", lc.Share)
	})

	t.Run("CloneNil", func(t *testing.T) {
		var lc *LogContext
		assert.Nil(t, lc.Clone())
		assert.Nil(t, lc.WithShare("x"))
		assert.Equal(t, 0.0, lc.DurationMs())
	})
}

func TestFieldHelpers(t *testing.T) {
	t.Run("ErrHandlesNil", func(t *testing.T) {
		assert.Equal(t, "", Err(nil).Key)
	})

	t.Run("ErrFormatsError", func(t *testing.T) {
		attr := Err(assert.AnError)
		assert.Equal(t, KeyError, attr.Key)
		assert.Contains(t, attr.Value.String(), "assert.AnError")
	})

	t.Run("NTStatusHex", func(t *testing.T) {
		assert.Equal(t, "0xc0000022", NTStatus(0xC0000022).Value.String())
	})
}

func TestConcurrentLogging(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				Info("concurrent", "worker", n)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 200, strings.Count(buf.String(), "\n"))
}

func TestInit(t *testing.T) {
	t.Run("InitWithWriter", func(t *testing.T) {
		buf := new(bytes.Buffer)
		InitWithWriter(buf, "DEBUG", "text", false)
		defer func() { _ = Close(); SetLevel("INFO") }()

		Debug("test message")
		assert.Contains(t, buf.String(), "test message")
	})

	t.Run("InitWithStdout", func(t *testing.T) {
		require.NoError(t, Init(Config{Level: "DEBUG", Format: "text", Output: "stdout"}))
		require.NoError(t, Close())
		SetLevel("INFO")
	})

	t.Run("InitWithEmptyConfig", func(t *testing.T) {
		require.NoError(t, Init(Config{}))
	})

	t.Run("InitWithRotatingFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "smbenum.log")
		require.NoError(t, Init(Config{Output: path, MaxSize: "5MB", MaxBackups: 2}))

		Info("to file")
		require.NoError(t, Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "to file")
	})

	t.Run("InitRejectsBadSize", func(t *testing.T) {
		err := Init(Config{Output: filepath.Join(t.TempDir(), "x.log"), MaxSize: "lots"})
		assert.Error(t, err)
	})
}

func BenchmarkLogDisabled(b *testing.B) {
	_, cleanup := captureOutput()
	defer cleanup()
	SetLevel("ERROR")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Debug("disabled", Host("fs01"))
	}
}

func BenchmarkLogText(b *testing.B) {
	_, cleanup := captureOutput()
	defer cleanup()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Info("object", Host("fs01"), Share("public"), Depth(2))
	}
}
