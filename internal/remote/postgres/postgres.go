// Package postgres is the production replica: one JSONB table per entity
// collection, remote ids assigned by the database. The schema is created
// on startup so a fresh database works with no migration step.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"ponselpos/backend/internal/domain"
	"ponselpos/backend/internal/remote"
)

// collections is the allowlist of table names. Collection strings arrive
// from our own constants, but the names are interpolated into SQL, so
// anything outside the list is rejected outright.
var collections = map[string]bool{
	domain.CollectionCustomers:       true,
	domain.CollectionSuppliers:       true,
	domain.CollectionProducts:        true,
	domain.CollectionIMEIs:           true,
	domain.CollectionSales:           true,
	domain.CollectionPurchases:       true,
	domain.CollectionSaleReturns:     true,
	domain.CollectionPurchaseReturns: true,
	domain.CollectionCustomerLedger:  true,
	domain.CollectionSupplierLedger:  true,
	domain.CollectionExpenses:        true,
}

type Replica struct {
	db *sql.DB

	mu          sync.Mutex
	schemaReady bool
}

// New opens a handle to the replica. An unreachable replica is not an
// error: the terminal boots offline all the time and the sync manager's
// probe loop owns connectivity. Only a URL that cannot be parsed fails;
// schema setup is deferred to the first successful contact.
func New(ctx context.Context, databaseURL string) (*Replica, error) {
	if _, err := pgx.ParseConfig(databaseURL); err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	r := &Replica{db: db}

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return r, nil
	}
	if err := r.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// ensureSchema creates the collection tables once per reachable process
// lifetime. Called lazily so an offline boot defers it to the first
// successful probe.
func (r *Replica) ensureSchema(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.schemaReady {
		return nil
	}
	for name := range collections {
		_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				remote_id  BIGSERIAL PRIMARY KEY,
				doc        JSONB NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, name))
		if err != nil {
			return fmt.Errorf("ensure table %s: %w", name, wrap(err))
		}
	}
	r.schemaReady = true
	return nil
}

func (r *Replica) Close() error {
	return r.db.Close()
}

func (r *Replica) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()
	if err := r.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("%w: %v", remote.ErrUnavailable, err)
	}
	return r.ensureSchema(ctx)
}

func (r *Replica) Create(ctx context.Context, collection string, doc json.RawMessage) (string, error) {
	if !collections[collection] {
		return "", fmt.Errorf("unknown collection %q", collection)
	}
	if err := r.ensureSchema(ctx); err != nil {
		return "", err
	}
	var id int64
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (doc) VALUES ($1) RETURNING remote_id
	`, collection), []byte(doc)).Scan(&id)
	if err != nil {
		return "", wrap(err)
	}
	return fmt.Sprintf("%d", id), nil
}

func (r *Replica) Update(ctx context.Context, collection, remoteID string, doc json.RawMessage) error {
	if !collections[collection] {
		return fmt.Errorf("unknown collection %q", collection)
	}
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s SET doc = $1, updated_at = now() WHERE remote_id = $2
	`, collection), []byte(doc), remoteID)
	if err != nil {
		return wrap(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update %s/%s: document not found", collection, remoteID)
	}
	return nil
}

func (r *Replica) Delete(ctx context.Context, collection, remoteID string) error {
	if !collections[collection] {
		return fmt.Errorf("unknown collection %q", collection)
	}
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}
	// Missing rows are fine: tombstone sweeps retry deletes blindly.
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE remote_id = $1
	`, collection), remoteID)
	if err != nil {
		return wrap(err)
	}
	return nil
}

func (r *Replica) List(ctx context.Context, collection string) ([]remote.Document, error) {
	if !collections[collection] {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT remote_id, doc, updated_at FROM %s ORDER BY remote_id
	`, collection))
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	docs := make([]remote.Document, 0, 128)
	for rows.Next() {
		var (
			id  int64
			raw []byte
			at  time.Time
		)
		if err := rows.Scan(&id, &raw, &at); err != nil {
			return nil, err
		}
		docs = append(docs, remote.Document{
			RemoteID:  fmt.Sprintf("%d", id),
			Doc:       json.RawMessage(raw),
			UpdatedAt: at,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return docs, nil
}

// wrap maps transport-level failures onto ErrUnavailable so the sync
// engine can tell a dead link from a bad record. Server-side errors
// (constraint violations, bad SQL) pass through untouched.
func wrap(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %v", remote.ErrUnavailable, err)
	}
	return err
}
