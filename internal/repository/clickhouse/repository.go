package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/repository"
)

const activityTable = "social_activity"

// activityTableDDL deduplicates redelivered messages by activity id
const activityTableDDL = `
CREATE TABLE IF NOT EXISTS social_activity (
	activity_id String,
	kind LowCardinality(String),
	social_id String,
	user_id String,
	attempts UInt16,
	occurred_at DateTime64(3),
	ingested_at DateTime64(3) DEFAULT now64(3)
) ENGINE = ReplacingMergeTree(ingested_at)
ORDER BY (social_id, activity_id)
PARTITION BY toYYYYMM(occurred_at)
`

const interestCountsQuery = `
SELECT
	countIf(kind = 'interest_added') AS added,
	countIf(kind = 'interest_removed') AS removed,
	uniqIf(user_id, kind = 'interest_added') AS unique_users
FROM social_activity FINAL
WHERE social_id = ?
`

// Repository implements repository.ActivityRepository on ClickHouse
type Repository struct {
	conn  driver.Conn
	close func() error
	log   *zap.Logger
}

func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		conn:  client.Conn(),
		close: client.Close,
		log:   log,
	}
}

func (r *Repository) InitSchema(ctx context.Context) error {
	if err := r.conn.Exec(ctx, activityTableDDL); err != nil {
		return fmt.Errorf("failed to create %s table: %w", activityTable, err)
	}

	r.log.Info("ClickHouse schema initialized", zap.String("table", activityTable))
	return nil
}

func (r *Repository) InsertBatch(ctx context.Context, activities []*domain.Activity) (int, error) {
	if len(activities) == 0 {
		return 0, nil
	}

	batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO "+activityTable+" (activity_id, kind, social_id, user_id, attempts, occurred_at)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, a := range activities {
		err := batch.Append(
			a.ActivityID,
			string(a.Kind),
			a.SocialID,
			a.UserID,
			uint16(a.Attempts),
			a.OccurredAt,
		)
		if err != nil {
			_ = batch.Abort()
			return 0, fmt.Errorf("failed to append activity %s: %w", a.ActivityID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return len(activities), nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}

func (r *Repository) Close() error {
	return r.close()
}

func (r *Repository) InterestCounts(ctx context.Context, socialID string) (*repository.InterestCounts, error) {
	counts := &repository.InterestCounts{SocialID: socialID}

	row := r.conn.QueryRow(ctx, interestCountsQuery, socialID)
	if err := row.Scan(&counts.Added, &counts.Removed, &counts.UniqueUsers); err != nil {
		return nil, fmt.Errorf("failed to query interest counts: %w", err)
	}

	return counts, nil
}
