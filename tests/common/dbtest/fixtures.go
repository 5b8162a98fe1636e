//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

const defaultHostEmail = "host@example.com"

func CreateTestUser(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx, "INSERT INTO users (id, email, role) VALUES ($1, $2, $3) ON CONFLICT (email) DO NOTHING",
		userID, email, role)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&userID)
	}

	return userID
}

func CreateTestBuyer(t *testing.T, db DBLike, email string) uuid.UUID {
	t.Helper()
	return CreateTestUser(t, db, email, "buyer")
}

// CreateTestEvent hangs the event off the seeded default host.
func CreateTestEvent(t *testing.T, db DBLike, name string, active bool) uuid.UUID {
	t.Helper()

	ctx := context.Background()
	var hostID uuid.UUID
	err := db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", defaultHostEmail).Scan(&hostID)
	require.NoError(t, err)

	eventID := uuid.New()
	_, err = db.Exec(ctx, "INSERT INTO events (id, host_id, name, active) VALUES ($1, $2, $3, $4)",
		eventID, hostID, name, active)
	require.NoError(t, err)

	return eventID
}

func CreateTestTicketType(t *testing.T, db DBLike, eventID uuid.UUID, name string, priceCents int64, capacity int32) uuid.UUID {
	t.Helper()

	ticketTypeID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO ticket_types (id, event_id, name, price_cents, capacity) VALUES ($1, $2, $3, $4, $5)",
		ticketTypeID, eventID, name, priceCents, capacity)
	require.NoError(t, err)

	return ticketTypeID
}

// LedgerCounts reads the ledger columns for assertions.
func LedgerCounts(t *testing.T, db DBLike, ticketTypeID uuid.UUID) (reserved, issued int32) {
	t.Helper()

	err := db.QueryRow(context.Background(),
		"SELECT reserved, issued_count FROM ticket_types WHERE id = $1", ticketTypeID).
		Scan(&reserved, &issued)
	require.NoError(t, err)
	return reserved, issued
}

// inserts basic reference data needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, email, role) VALUES
		    (gen_random_uuid(), 'host@example.com', 'host')
		ON CONFLICT (email) DO NOTHING;
	`)
	if err != nil {
		return err
	}

	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
