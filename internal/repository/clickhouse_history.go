package repository

import (
	"context"
	"database/sql"
	"fmt"

	"SilverFetch/internal/domain/models"
	pkgch "SilverFetch/pkg/clickhouse"
	applogger "SilverFetch/pkg/logger"
)

// Schema statements are idempotent and applied on startup.
var historySchema = []string{
	`CREATE TABLE IF NOT EXISTS position_history (
        cycle_ts       DateTime64(3, 'UTC'),
        timeframe      LowCardinality(String),
        price          Float64,
        action         LowCardinality(String),
        recommendation LowCardinality(String),
        confidence     LowCardinality(String),
        score          Float64,
        max_score      Float64,
        entry          Nullable(Float64),
        stop_loss      Nullable(Float64),
        take_profit_2  Nullable(Float64),
        fear_greed     Float64,
        degraded       UInt8
    )
    ENGINE = MergeTree
    PARTITION BY toYYYYMM(cycle_ts)
    ORDER BY (timeframe, cycle_ts)`,
}

// CHHistorySink records every published position to ClickHouse so signal
// quality can be analyzed after the fact.
type CHHistorySink struct {
	client *pkgch.Client
	db     *sql.DB
	l      *applogger.Logger
}

func NewCHHistorySink(ctx context.Context, client *pkgch.Client, l *applogger.Logger) (*CHHistorySink, error) {
	if err := client.InitSchema(ctx, historySchema); err != nil {
		return nil, fmt.Errorf("history schema: %w", err)
	}
	return &CHHistorySink{client: client, db: client.DB(), l: l}, nil
}

// Publish inserts one row per position in a single batch.
func (s *CHHistorySink) Publish(ctx context.Context, snap *models.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	const q = `INSERT INTO position_history
        (cycle_ts, timeframe, price, action, recommendation, confidence,
         score, max_score, entry, stop_loss, take_profit_2, fear_greed, degraded)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	degraded := uint8(0)
	if snap.Degraded {
		degraded = 1
	}
	for _, p := range snap.Positions {
		_, err := stmt.ExecContext(ctx,
			snap.Timestamp, p.Timeframe, p.CurrentPrice,
			string(p.Action), p.Recommendation, p.Confidence,
			p.Score, p.MaxScore,
			p.Entry, p.StopLoss, p.TakeProfit2,
			p.FearGreedValue, degraded,
		)
		if err != nil {
			_ = tx.Rollback()
			s.l.Error("clickhouse history insert failed",
				applogger.String("timeframe", p.Timeframe),
				applogger.Error(err))
			return fmt.Errorf("insert position: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *CHHistorySink) Close() error {
	return s.client.Close()
}
