package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCustomHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandlerWithOptions("market", &buf, slog.LevelInfo))

	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug record written below the configured level: %q", buf.String())
	}

	log.Info("listing created", slog.String("type", "mkt"), slog.String("listing_id", "l-1"))
	line := buf.String()
	for _, want := range []string{"[market]", "[MKT]", "listing created", "listing_id"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q does not contain %q", line, want)
		}
	}
	if strings.Contains(line, "type=") {
		t.Errorf("internal attr leaked into line %q", line)
	}

	buf.Reset()
	log.With(slog.String("type", "db")).Error("query failed", slog.Any("error", errors.New("boom")))
	line = buf.String()
	if !strings.Contains(line, "[DB]") || !strings.Contains(line, "boom") {
		t.Errorf("unexpected error line %q", line)
	}
}

func TestCustomHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandlerWithOptions("market", &buf, slog.LevelInfo))

	log.WithGroup("bid").Info("placed", slog.String("id", "b-1"))
	if !strings.Contains(buf.String(), "bid.id") {
		t.Errorf("group prefix missing in %q", buf.String())
	}
}
