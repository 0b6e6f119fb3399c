package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Vib3Cod3r/saleshub-sub000/internal/ot"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS document_operations (
	document_id    text        NOT NULL,
	server_version bigint      NOT NULL,
	payload        jsonb       NOT NULL,
	committed_at   timestamptz NOT NULL,
	PRIMARY KEY (document_id, server_version)
)`

// OperationArchive appends committed canonical operations to Postgres.
// The archive gives each document a durable, replayable edit history;
// the Redis snapshot remains the authoritative current state.
type OperationArchive struct {
	pool *pgxpool.Pool
}

func NewOperationArchive(pool *pgxpool.Pool) *OperationArchive {
	return &OperationArchive{pool: pool}
}

// Init creates the archive table if needed.
func (a *OperationArchive) Init(ctx context.Context) error {
	if _, err := a.pool.Exec(ctx, archiveSchema); err != nil {
		return fmt.Errorf("create operation archive schema: %w", err)
	}
	return nil
}

// Append records one committed operation. Re-appending the same
// (document, version) pair is a no-op, so retried commits stay
// idempotent.
func (a *OperationArchive) Append(ctx context.Context, documentID string, op ot.Operation) error {
	payload, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("encode operation %s: %w", op.ID, err)
	}
	_, err = a.pool.Exec(ctx,
		`INSERT INTO document_operations (document_id, server_version, payload, committed_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (document_id, server_version) DO NOTHING`,
		documentID, op.ServerVersion, payload, op.CommittedAt)
	if err != nil {
		return fmt.Errorf("append operation %s v%d: %w", documentID, op.ServerVersion, err)
	}
	return nil
}

// Replay returns a document's committed operations in ServerVersion
// order. Applying them to an empty string reproduces the document
// content.
func (a *OperationArchive) Replay(ctx context.Context, documentID string) ([]ot.Operation, error) {
	rows, err := a.pool.Query(ctx,
		`SELECT payload FROM document_operations
		 WHERE document_id = $1 ORDER BY server_version`,
		documentID)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", documentID, err)
	}
	defer rows.Close()

	var ops []ot.Operation
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("replay %s: %w", documentID, err)
		}
		var op ot.Operation
		if err := json.Unmarshal(payload, &op); err != nil {
			return nil, fmt.Errorf("decode archived operation for %s: %w", documentID, err)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}
