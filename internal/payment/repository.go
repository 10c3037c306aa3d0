package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courtside/venue-booking-backend/internal/booking"
)

type Repository interface {
	// Complete settles a verified payment: under the admission advisory lock
	// it re-checks the slot for paid overlaps, then either captures the
	// payment and marks the booking paid, or records the attempt as failed,
	// cancels the booking and returns ErrPaymentConflict. First payment wins.
	Complete(ctx context.Context, b *booking.Booking, p *Payment) error

	GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*Payment, error)
	ListForUser(ctx context.Context, userID string, page, pageSize int) ([]*Payment, int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Complete(ctx context.Context, b *booking.Booking, p *Payment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin payment tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	// Same lock key as admission, so confirmation serializes against both
	// competing admissions and competing payments.
	lockKey := booking.AdmissionLockKey(b.VenueID, b.Date, b.Sport)
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", lockKey); err != nil {
		return fmt.Errorf("acquire payment lock failed: %w", err)
	}

	dayStart, dayEnd := booking.DayWindow(b.Date)
	sql, args, err := booking.OverlapConflictSQL(b.VenueID, dayStart, dayEnd, b.Sport, b.StartTime, b.EndTime, b.ID)
	if err != nil {
		return err
	}
	var conflict bool
	if err := tx.QueryRow(ctx, sql, args...).Scan(&conflict); err != nil {
		return fmt.Errorf("payment overlap check failed: %w", err)
	}

	status := StatusCompleted
	if conflict {
		status = StatusFailed
	}
	p.Status = status

	if err := r.insertPayment(ctx, tx, p); err != nil {
		return err
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	update := psql.Update("public.bookings").
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID})
	if conflict {
		update = update.
			Set("payment_status", booking.PaymentFailed).
			Set("status", booking.StatusCancelled)
	} else {
		update = update.Set("payment_status", booking.PaymentCompleted)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build booking payment update failed: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update booking payment state failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit payment tx failed: %w", err)
	}

	if conflict {
		b.PaymentStatus = booking.PaymentFailed
		b.Status = booking.StatusCancelled
		return ErrPaymentConflict
	}
	b.PaymentStatus = booking.PaymentCompleted
	return nil
}

func (r *pgxRepository) insertPayment(ctx context.Context, tx pgx.Tx, p *Payment) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.payments").
		Columns(
			"gateway_order_id", "gateway_payment_id", "gateway_signature",
			"amount", "booking_id", "user_id", "venue_id", "status",
		).
		Values(
			p.GatewayOrderID, p.GatewayPaymentID, p.GatewaySignature,
			p.Amount, p.BookingID, p.UserID, p.VenueID, p.Status,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create payment query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicatePayment
		}
		return fmt.Errorf("create payment failed: %w", err)
	}
	return nil
}

const paymentColumns = `id, gateway_order_id, gateway_payment_id, gateway_signature,
	amount, booking_id, user_id, venue_id, status, created_at`

func (r *pgxRepository) GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*Payment, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(paymentColumns).
		From("public.payments").
		Where(squirrel.Eq{"gateway_payment_id": gatewayPaymentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get payment query failed: %w", err)
	}

	var p Payment
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.GatewayOrderID, &p.GatewayPaymentID, &p.GatewaySignature,
		&p.Amount, &p.BookingID, &p.UserID, &p.VenueID, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment failed: %w", err)
	}
	return &p, nil
}

func (r *pgxRepository) ListForUser(ctx context.Context, userID string, page, pageSize int) ([]*Payment, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(paymentColumns + ", count(*) OVER() as total_count").
		From("public.payments").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list payments query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments failed: %w", err)
	}
	defer rows.Close()

	var payments []*Payment
	var total int
	for rows.Next() {
		var p Payment
		err := rows.Scan(
			&p.ID, &p.GatewayOrderID, &p.GatewayPaymentID, &p.GatewaySignature,
			&p.Amount, &p.BookingID, &p.UserID, &p.VenueID, &p.Status, &p.CreatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payment failed: %w", err)
		}
		payments = append(payments, &p)
	}
	return payments, total, nil
}
