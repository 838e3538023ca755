package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"savbot/pkg/message"
)

// PostgresStore keeps message records as JSONB documents, one table per
// collection, on the same pool the task queue runs on.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the message tables when missing.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	for _, table := range []string{"new_messages", "saved_messages"} {
		ddl := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				doc JSONB NOT NULL,
				received_at TIMESTAMPTZ NOT NULL,
				media_group_id TEXT,
				fire_at BIGINT NOT NULL DEFAULT 0
			)`, table)
		if _, err := p.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
	}
	return nil
}

func tableFor(col message.Collection) (string, error) {
	switch col {
	case message.CollectionNew:
		return "new_messages", nil
	case message.CollectionSaved:
		return "saved_messages", nil
	default:
		return "", fmt.Errorf("unknown collection %q", col)
	}
}

func (p *PostgresStore) Insert(ctx context.Context, col message.Collection, st *message.State) (string, error) {
	table, err := tableFor(col)
	if err != nil {
		return "", err
	}

	doc, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("marshal message record: %w", err)
	}

	id := uuid.NewString()
	query := fmt.Sprintf(
		`INSERT INTO %s (id, doc, received_at, media_group_id, fire_at) VALUES ($1, $2, $3, NULLIF($4, ''), $5)`,
		table)
	if _, err := p.pool.Exec(ctx, query, id, doc, st.ReceivedAt, st.MediaGroupID, st.FireAt); err != nil {
		return "", fmt.Errorf("insert into %s: %w", table, err)
	}
	return id, nil
}

func (p *PostgresStore) Get(ctx context.Context, col message.Collection, id string) (*message.State, error) {
	table, err := tableFor(col)
	if err != nil {
		return nil, err
	}

	var doc []byte
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1`, table)
	if err := p.pool.QueryRow(ctx, query, id).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}
	return decodeState(doc, col, id)
}

func (p *PostgresStore) Update(ctx context.Context, col message.Collection, id string, proj Projection) error {
	table, err := tableFor(col)
	if err != nil {
		return err
	}

	patch, err := json.Marshal(proj)
	if err != nil {
		return fmt.Errorf("marshal projection: %w", err)
	}

	// jsonb merge keeps the immutable payload fields untouched
	query := fmt.Sprintf(`UPDATE %s SET doc = doc || $2::jsonb, fire_at = $3 WHERE id = $1`, table)
	tag, err := p.pool.Exec(ctx, query, id, patch, proj.FireAt)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, col message.Collection, id string) error {
	table, err := tableFor(col)
	if err != nil {
		return err
	}

	tag, err := p.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) FindByGroup(ctx context.Context, col message.Collection, groupID string) ([]*message.State, error) {
	if groupID == "" {
		return nil, nil
	}
	table, err := tableFor(col)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, doc FROM %s WHERE media_group_id = $1`, table)
	rows, err := p.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("select group from %s: %w", table, err)
	}
	defer rows.Close()

	return scanStates(rows, col)
}

func (p *PostgresStore) CountInGroup(ctx context.Context, col message.Collection, groupID string) (int, error) {
	if groupID == "" {
		return 0, nil
	}
	table, err := tableFor(col)
	if err != nil {
		return 0, err
	}

	var count int
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE media_group_id = $1`, table)
	if err := p.pool.QueryRow(ctx, query, groupID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count group in %s: %w", table, err)
	}
	return count, nil
}

func (p *PostgresStore) FindDue(ctx context.Context, now time.Time) ([]*message.State, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, doc FROM new_messages WHERE fire_at > 0 AND fire_at <= $1`, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("select due messages: %w", err)
	}
	defer rows.Close()

	return scanStates(rows, message.CollectionNew)
}

func (p *PostgresStore) FindExpired(ctx context.Context, olderThan time.Time) ([]*message.State, error) {
	var expired []*message.State
	for _, col := range []message.Collection{message.CollectionNew, message.CollectionSaved} {
		table, _ := tableFor(col)
		rows, err := p.pool.Query(ctx,
			fmt.Sprintf(`SELECT id, doc FROM %s WHERE received_at <= $1`, table), olderThan)
		if err != nil {
			return nil, fmt.Errorf("select expired from %s: %w", table, err)
		}
		states, err := scanStates(rows, col)
		rows.Close()
		if err != nil {
			return nil, err
		}
		expired = append(expired, states...)
	}
	return expired, nil
}

func scanStates(rows pgx.Rows, col message.Collection) ([]*message.State, error) {
	var states []*message.State
	for rows.Next() {
		var (
			id  string
			doc []byte
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		st, err := decodeState(doc, col, id)
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	return states, rows.Err()
}

func decodeState(doc []byte, col message.Collection, id string) (*message.State, error) {
	var st message.State
	if err := json.Unmarshal(doc, &st); err != nil {
		return nil, fmt.Errorf("decode message record %s: %w", id, err)
	}
	st.ID = id
	st.Collection = col
	return &st, nil
}
