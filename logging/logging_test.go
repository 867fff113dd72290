package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/angas/gridfees-go/database"
)

type memStore struct {
	rows []database.LogEntryRow
}

func (s *memStore) SaveLogEntry(ctx context.Context, row database.LogEntryRow) error {
	s.rows = append(s.rows, row)
	return nil
}

func TestLevelFromString(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		in   *string
		want slog.Level
	}{
		{nil, slog.LevelInfo},
		{str("debug"), slog.LevelDebug},
		{str("WARN"), slog.LevelWarn},
		{str("Error"), slog.LevelError},
		{str(" warning "), slog.LevelWarn},
		{str("verbose"), slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := LevelFromString(tt.in); got != tt.want {
			t.Errorf("got %s, wanted %s", got, tt.want)
		}
	}
}

func TestAttrFormatFromString(t *testing.T) {
	str := func(s string) *string { return &s }

	if got := AttrFormatFromString(nil); got != LogAttrFormatJSON {
		t.Errorf("got %s, wanted %s", got, LogAttrFormatJSON)
	}
	if got := AttrFormatFromString(str("text")); got != LogAttrFormatText {
		t.Errorf("got %s, wanted %s", got, LogAttrFormatText)
	}
	if got := AttrFormatFromString(str("yaml")); got != LogAttrFormatJSON {
		t.Errorf("got %s, wanted %s", got, LogAttrFormatJSON)
	}
}

func TestSQLiteHandler(t *testing.T) {
	store := &memStore{}
	logger := slog.New(NewSQLiteHandler(store, slog.LevelInfo, LogAttrFormatJSON)).With("module", "tariff")

	logger.Debug("ignored")
	logger.Info("dataset loaded", slog.Int("rows", 4))

	if len(store.rows) != 1 {
		t.Fatalf("got %d rows, wanted 1", len(store.rows))
	}
	row := store.rows[0]
	if row.Message != "dataset loaded" || row.Level != int(slog.LevelInfo) {
		t.Errorf("unexpected row %+v", row)
	}
	if row.Attrs != `[{"module":"tariff"},{"rows":"4"}]` {
		t.Errorf("got attrs %s", row.Attrs)
	}
}

func TestSQLiteHandlerTextFormat(t *testing.T) {
	store := &memStore{}
	logger := slog.New(NewSQLiteHandler(store, slog.LevelDebug, LogAttrFormatText)).WithGroup("http")

	logger.Warn("slow request", slog.String("path", "/api/calculate;x=1"))

	if got := store.rows[0].Attrs; got != `http.path=/api/calculate\;x\=1` {
		t.Errorf("got attrs %s", got)
	}
}

func TestMultiHandler(t *testing.T) {
	var console bytes.Buffer
	store := &memStore{}
	h := NewMultiHandler(
		slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelDebug}),
		NewSQLiteHandler(store, slog.LevelWarn, LogAttrFormatJSON),
	)
	logger := slog.New(h).With("module", "www")

	logger.Debug("request served")
	logger.Error("request failed")

	if !strings.Contains(console.String(), "request served") || !strings.Contains(console.String(), "request failed") {
		t.Errorf("console output missing records: %s", console.String())
	}
	if len(store.rows) != 1 || store.rows[0].Message != "request failed" {
		t.Errorf("got %+v, wanted only the error", store.rows)
	}
	if h.Enabled(context.Background(), slog.LevelDebug-4) {
		t.Errorf("no handler is enabled below debug")
	}
}
