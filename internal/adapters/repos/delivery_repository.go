package repos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const deliveriesTable = "fix_deliveries"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

type (
	DeliveryRepository struct {
		conn *sqlx.DB
	}

	deliveryRow struct {
		ID           string     `db:"id"`
		SessionID    string     `db:"session_id"`
		Fix          []byte     `db:"fix"`
		Status       string     `db:"status"`
		RetryCount   int        `db:"retry_count"`
		MaxRetries   int        `db:"max_retries"`
		ErrorDetails *string    `db:"error_details"`
		CreatedAt    time.Time  `db:"created_at"`
		DeliveredAt  *time.Time `db:"delivered_at"`
		NextRetryAt  *time.Time `db:"next_retry_at"`
	}
)

func NewDeliveryRepository(db *sqlx.DB) *DeliveryRepository {
	return &DeliveryRepository{
		conn: db,
	}
}

// Enqueue stores a fix for delivery.
func (r *DeliveryRepository) Enqueue(ctx context.Context, delivery *domain.FixDelivery) error {
	if delivery.ID == uuid.Nil {
		deliveryName := fmt.Sprintf("%s::%s::%d",
			delivery.SessionID.String(),
			delivery.Fix.ID.String(),
			delivery.CreatedAt.Unix())
		delivery.ID = uuid.NewSHA1(FixNamespace, []byte(deliveryName))
	}

	fixJSON, err := json.Marshal(delivery.Fix)
	if err != nil {
		return fmt.Errorf("failed to marshal fix: %w", err)
	}

	query, args, err := psql.Insert(deliveriesTable).
		Columns("id", "session_id", "fix", "status", "retry_count", "max_retries",
			"created_at", "next_retry_at").
		Values(delivery.ID, delivery.SessionID, fixJSON, delivery.Status,
			delivery.RetryCount, delivery.MaxRetries, delivery.CreatedAt, delivery.NextRetryAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to enqueue delivery: %w", err)
	}

	return nil
}

// FindPending finds pending deliveries ordered by creation time.
func (r *DeliveryRepository) FindPending(ctx context.Context, limit int) ([]*domain.FixDelivery, error) {
	return r.findByCriteria(
		ctx,
		sq.Eq{"status": string(domain.DeliveryStatusPending)},
		[]string{"created_at ASC"},
		limit,
		"pending deliveries",
	)
}

// FindRetryable finds failed deliveries that are ready for retry.
func (r *DeliveryRepository) FindRetryable(ctx context.Context, limit int) ([]*domain.FixDelivery, error) {
	return r.findByCriteria(
		ctx,
		sq.And{
			sq.Eq{"status": string(domain.DeliveryStatusFailed)},
			sq.NotEq{"next_retry_at": nil},
			sq.Expr("next_retry_at <= ?", time.Now().UTC()),
			sq.Expr("retry_count < max_retries"),
		},
		[]string{"next_retry_at ASC"},
		limit,
		"retryable deliveries",
	)
}

func (r *DeliveryRepository) findByCriteria(
	ctx context.Context,
	criteria sq.Sqlizer,
	orderBy []string,
	limit int,
	errorContext string,
) ([]*domain.FixDelivery, error) {
	query, args, err := psql.Select("id", "session_id", "fix", "status", "retry_count",
		"max_retries", "error_details", "created_at", "delivered_at", "next_retry_at").
		From(deliveriesTable).
		Where(criteria).
		OrderBy(orderBy...).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var rows []deliveryRow
	if err := r.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", errorContext, err)
	}

	deliveries := make([]*domain.FixDelivery, 0, len(rows))
	for _, row := range rows {
		delivery, err := r.convertRowToDelivery(row)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, delivery)
	}

	return deliveries, nil
}

// ClaimForDelivery atomically claims a delivery for processing. Only pending
// or failed deliveries can be claimed; a delivery already in flight stays
// with its claimer.
func (r *DeliveryRepository) ClaimForDelivery(ctx context.Context, deliveryID string) (*domain.FixDelivery, error) {
	tx, err := r.conn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	updateQuery, updateArgs, err := psql.Update(deliveriesTable).
		Set("status", string(domain.DeliveryStatusDelivering)).
		Where(sq.And{
			sq.Eq{"id": deliveryID},
			sq.Or{
				sq.Eq{"status": string(domain.DeliveryStatusPending)},
				sq.Eq{"status": string(domain.DeliveryStatusFailed)},
			},
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := tx.ExecContext(ctx, updateQuery, updateArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to claim delivery: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, domain.ErrDeliveryNotFound
	}

	selectQuery, selectArgs, err := psql.Select("id", "session_id", "fix", "status",
		"retry_count", "max_retries", "error_details", "created_at", "delivered_at", "next_retry_at").
		From(deliveriesTable).
		Where(sq.Eq{"id": deliveryID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var row deliveryRow
	if err := tx.GetContext(ctx, &row, selectQuery, selectArgs...); err != nil {
		return nil, fmt.Errorf("failed to load claimed delivery: %w", err)
	}

	delivery, err := r.convertRowToDelivery(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return delivery, nil
}

// MarkDelivered marks a delivery as successfully sent.
func (r *DeliveryRepository) MarkDelivered(ctx context.Context, deliveryID string) error {
	query, args, err := psql.Update(deliveriesTable).
		Set("status", string(domain.DeliveryStatusDelivered)).
		Set("delivered_at", time.Now().UTC()).
		Set("error_details", nil).
		Where(sq.Eq{"id": deliveryID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	return r.execExpectingRow(ctx, query, args, deliveryID)
}

// MarkFailed marks a delivery as failed with error details and retry timing.
func (r *DeliveryRepository) MarkFailed(ctx context.Context, deliveryID string, errorDetails string, nextRetryAt *time.Time) error {
	query, args, err := psql.Update(deliveriesTable).
		Set("status", string(domain.DeliveryStatusFailed)).
		Set("retry_count", sq.Expr("retry_count + 1")).
		Set("error_details", errorDetails).
		Set("next_retry_at", nextRetryAt).
		Where(sq.Eq{"id": deliveryID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	return r.execExpectingRow(ctx, query, args, deliveryID)
}

// MarkPermanentlyFailed marks a delivery as failed with no further retries.
func (r *DeliveryRepository) MarkPermanentlyFailed(ctx context.Context, deliveryID string, errorDetails string) error {
	query, args, err := psql.Update(deliveriesTable).
		Set("status", string(domain.DeliveryStatusFailed)).
		Set("error_details", errorDetails).
		Set("next_retry_at", nil).
		Where(sq.Eq{"id": deliveryID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	return r.execExpectingRow(ctx, query, args, deliveryID)
}

// CountUndelivered returns the number of deliveries not yet delivered.
func (r *DeliveryRepository) CountUndelivered(ctx context.Context) (int, error) {
	query, args, err := psql.Select("COUNT(*)").
		From(deliveriesTable).
		Where(sq.NotEq{"status": string(domain.DeliveryStatusDelivered)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := r.conn.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count undelivered deliveries: %w", err)
	}

	return count, nil
}

// PurgeDelivered removes delivered rows older than the retention period.
func (r *DeliveryRepository) PurgeDelivered(ctx context.Context, olderThan time.Time) (int64, error) {
	query, args, err := psql.Delete(deliveriesTable).
		Where(sq.And{
			sq.Eq{"status": string(domain.DeliveryStatusDelivered)},
			sq.Expr("delivered_at < ?", olderThan),
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete query: %w", err)
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge delivered rows: %w", err)
	}

	return result.RowsAffected()
}

// Purge removes every queued delivery. Used when tracking stops.
func (r *DeliveryRepository) Purge(ctx context.Context) error {
	query, args, err := psql.Delete(deliveriesTable).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to purge deliveries: %w", err)
	}

	return nil
}

func (r *DeliveryRepository) execExpectingRow(ctx context.Context, query string, args []any, deliveryID string) error {
	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update delivery: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("delivery not found: %s", deliveryID)
	}

	return nil
}

func (r *DeliveryRepository) convertRowToDelivery(row deliveryRow) (*domain.FixDelivery, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse delivery ID: %w", err)
	}

	sessionID, err := uuid.Parse(row.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session ID: %w", err)
	}

	var fix domain.LocationFix
	if err := json.Unmarshal(row.Fix, &fix); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fix: %w", err)
	}

	return &domain.FixDelivery{
		ID:           id,
		SessionID:    sessionID,
		Fix:          fix,
		Status:       domain.DeliveryStatus(row.Status),
		RetryCount:   row.RetryCount,
		MaxRetries:   row.MaxRetries,
		ErrorDetails: row.ErrorDetails,
		CreatedAt:    row.CreatedAt,
		DeliveredAt:  row.DeliveredAt,
		NextRetryAt:  row.NextRetryAt,
	}, nil
}
