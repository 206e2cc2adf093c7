package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Equal(t, 2, handler.Count())
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
		assert.True(t, handler.ContainsAttr("code", int64(500)))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelWarn), 1)
		AssertLogContains(t, handler, slog.LevelWarn, "warn")
		AssertNoLevel(t, handler, slog.LevelError)
	})

	t.Run("derived loggers share records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "sink")).WithGroup("remote").Info("upload", slog.Int("rows", 3))

		records := handler.GetRecords()
		if assert.Len(t, records, 1) {
			assert.Equal(t, "sink", records[0].Attrs["component"])
			assert.Equal(t, int64(3), records[0].Attrs["remote.rows"])
		}
	})
}

func TestMustTable(t *testing.T) {
	tbl := MustTable(t, []string{"a", "b"}, []string{"1", "x"}, []string{"2"})
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, 1, tbl.MissingCount())
}
