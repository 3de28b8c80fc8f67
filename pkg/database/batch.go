package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Statement is one entry of a batch: a query and its positional arguments.
type Statement struct {
	Query string
	Args  []interface{}
}

// BatchResult records the outcome of a single batched statement.
type BatchResult struct {
	RowsAffected int64
}

// ExecBatch runs statements in order on the pool without a surrounding
// transaction. It stops at the first failure and returns the results gathered so far.
func ExecBatch(ctx context.Context, db sqlx.ExecerContext, stmts []Statement) ([]BatchResult, error) {
	results := make([]BatchResult, 0, len(stmts))
	for i, stmt := range stmts {
		res, err := db.ExecContext(ctx, stmt.Query, stmt.Args...)
		if err != nil {
			return results, fmt.Errorf("batch statement %d: %w", i, err)
		}
		results = append(results, BatchResult{RowsAffected: rowsAffected(res)})
	}
	return results, nil
}

func rowsAffected(res sql.Result) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}
