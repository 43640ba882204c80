package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// notifyChannel is the LISTEN/NOTIFY channel the documents trigger publishes on
const notifyChannel = "social_changes"

const schema = `
CREATE TABLE IF NOT EXISTS social_documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	event_date BIGINT NOT NULL,
	event_name TEXT NOT NULL DEFAULT '',
	event_description TEXT NOT NULL DEFAULT '',
	event_location TEXT NOT NULL DEFAULT '',
	event_image TEXT NOT NULL DEFAULT '',
	owner TEXT NOT NULL,
	users_liked JSONB NOT NULL DEFAULT '[]'::jsonb,
	version BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS social_documents_event_date_idx
	ON social_documents (collection, event_date);

CREATE OR REPLACE FUNCTION notify_social_change() RETURNS trigger AS $$
BEGIN
	IF TG_OP = 'DELETE' THEN
		PERFORM pg_notify('social_changes',
			json_build_object('op', TG_OP, 'collection', OLD.collection, 'id', OLD.id)::text);
		RETURN OLD;
	END IF;
	PERFORM pg_notify('social_changes',
		json_build_object('op', TG_OP, 'collection', NEW.collection, 'id', NEW.id)::text);
	RETURN NEW;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS social_documents_notify ON social_documents;
CREATE TRIGGER social_documents_notify
	AFTER INSERT OR UPDATE OR DELETE ON social_documents
	FOR EACH ROW EXECUTE FUNCTION notify_social_change();
`

// Connect creates a connection pool and verifies it with a ping
func Connect(ctx context.Context, dsn string, log *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	log.Info("Postgres connection established",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database))

	return pool, nil
}

// InitSchema creates the documents table and its change trigger if they don't exist
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize postgres schema: %w", err)
	}
	return nil
}
