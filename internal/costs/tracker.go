package costs

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Tracker accumulates model token usage. Every call is persisted for
// reporting and mirrored into process counters for cheap snapshots.
type Tracker struct {
	DB *pgxpool.Pool

	calls  uint64
	tokens uint64
}

func New(db *pgxpool.Pool) *Tracker {
	return &Tracker{DB: db}
}

// Record stores one model invocation's usage. Failures to persist are logged
// and swallowed; cost tracking must never fail a workflow.
func (t *Tracker) Record(ctx context.Context, model string, tokens int, operation string) {
	atomic.AddUint64(&t.calls, 1)
	if tokens > 0 {
		atomic.AddUint64(&t.tokens, uint64(tokens))
	}
	if t.DB == nil {
		return
	}
	_, err := t.DB.Exec(ctx, `
    INSERT INTO llm_usage (operation, model, tokens)
    VALUES ($1,$2,$3)
  `, operation, model, tokens)
	if err != nil {
		slog.Warn("llm usage insert failed", "operation", operation, "model", model, "err", err)
	}
}

// Totals returns the process-lifetime call and token counters.
func (t *Tracker) Totals() (calls, tokens uint64) {
	return atomic.LoadUint64(&t.calls), atomic.LoadUint64(&t.tokens)
}

type OperationUsage struct {
	Operation string `json:"operation"`
	Model     string `json:"model"`
	Calls     int    `json:"calls"`
	Tokens    int    `json:"tokens"`
}

// Report aggregates persisted usage per operation and model.
func (t *Tracker) Report(ctx context.Context) ([]OperationUsage, error) {
	rows, err := t.DB.Query(ctx, `
    SELECT operation, model, COUNT(1), COALESCE(SUM(tokens), 0)
    FROM llm_usage
    GROUP BY operation, model
    ORDER BY operation, model
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OperationUsage
	for rows.Next() {
		var u OperationUsage
		if err := rows.Scan(&u.Operation, &u.Model, &u.Calls, &u.Tokens); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}
