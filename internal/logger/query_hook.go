package logger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// QueryHook routes bun queries through LogQuery.
type QueryHook struct {
	SlowThreshold time.Duration
}

var _ bun.QueryHook = (*QueryHook)(nil)

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	took := time.Since(event.StartTime)
	err := event.Err
	// a missing row is an answer, not a failure
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	if err == nil && h.SlowThreshold > 0 && took < h.SlowThreshold {
		return
	}
	LogQuery(event.Query, took, err)
}
