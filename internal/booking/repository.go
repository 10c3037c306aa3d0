package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines data access methods for bookings.
type Repository interface {
	// Create inserts an admitted booking. The insert and a repeat of the
	// overlap check run in one transaction holding the admission advisory
	// lock, so two concurrent admissions for the same venue/day/sport
	// serialize instead of racing the read-then-write.
	Create(ctx context.Context, b *Booking) error

	GetByID(ctx context.Context, id string) (*Booking, error)
	// GetOwnedPending returns the booking only if it belongs to userID and
	// its payment is still pending.
	GetOwnedPending(ctx context.Context, id, userID string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// ListOccupying returns the reservations that count against availability
	// for the venue and UTC day window: payment completed, not cancelled,
	// optionally narrowed to a sport (case-insensitive).
	ListOccupying(ctx context.Context, venueID string, dayStart, dayEnd time.Time, sport string) ([]*Booking, error)

	// HasPaidOverlap reports whether any occupying reservation overlaps the
	// requested interval.
	HasPaidOverlap(ctx context.Context, venueID string, dayStart, dayEnd time.Time, sport, startTime, endTime string) (bool, error)

	UpdateStatus(ctx context.Context, id string, status Status) error
	SetGatewayOrder(ctx context.Context, id, orderID string) error

	// CancelStalePending fails and cancels pending-payment bookings created
	// before the cutoff. Returns the number of reclaimed bookings.
	CancelStalePending(ctx context.Context, cutoff time.Time) (int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const bookingColumns = `b.id, b.venue_id, v.name, b.user_id, u.full_name, b.sport,
	b.date, b.start_time, b.end_time, b.duration, b.total_price,
	b.status, b.payment_status, b.contact_phone, b.notes, b.gateway_order_id,
	b.created_at, b.updated_at`

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.VenueID, &b.VenueName, &b.UserID, &b.UserName, &b.Sport,
		&b.Date, &b.StartTime, &b.EndTime, &b.Duration, &b.TotalPrice,
		&b.Status, &b.PaymentStatus, &b.ContactPhone, &b.Notes, &b.GatewayOrderID,
		&b.CreatedAt, &b.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &b, nil
}

// OverlapConflictSQL builds the occupancy-conflict query: does any reservation
// for the venue, UTC day window and sport (case-insensitive), with booking
// status not cancelled and payment completed, overlap [startTime, endTime)?
// The three containment shapes are spelled out explicitly: the new interval
// starts during an existing one, ends during one, or encompasses one.
// excludeID skips a booking (used when re-checking at payment confirmation).
func OverlapConflictSQL(venueID string, dayStart, dayEnd time.Time, sport, startTime, endTime, excludeID string) (string, []any, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sub := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"venue_id": venueID}).
		Where(squirrel.GtOrEq{"date": dayStart}).
		Where(squirrel.LtOrEq{"date": dayEnd}).
		Where(squirrel.Expr("lower(sport) = lower(?)", sport)).
		Where(squirrel.NotEq{"status": StatusCancelled}).
		Where(squirrel.Eq{"payment_status": PaymentCompleted}).
		Where(squirrel.Or{
			// New booking starts during an existing one.
			squirrel.And{squirrel.LtOrEq{"start_time": startTime}, squirrel.Gt{"end_time": startTime}},
			// New booking ends during an existing one.
			squirrel.And{squirrel.Lt{"start_time": endTime}, squirrel.GtOrEq{"end_time": endTime}},
			// New booking encompasses an existing one.
			squirrel.And{squirrel.GtOrEq{"start_time": startTime}, squirrel.LtOrEq{"end_time": endTime}},
		})

	if excludeID != "" {
		sub = sub.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := sub.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build overlap query failed: %w", err)
	}
	return "SELECT EXISTS (" + sql + ")", args, nil
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin admission tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize concurrent admissions for the same venue/day/sport.
	lockKey := AdmissionLockKey(b.VenueID, b.Date, b.Sport)
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", lockKey); err != nil {
		return fmt.Errorf("acquire admission lock failed: %w", err)
	}

	// Repeat the overlap check under the lock.
	dayStart, dayEnd := DayWindow(b.Date)
	sql, args, err := OverlapConflictSQL(b.VenueID, dayStart, dayEnd, b.Sport, b.StartTime, b.EndTime, "")
	if err != nil {
		return err
	}
	var conflict bool
	if err := tx.QueryRow(ctx, sql, args...).Scan(&conflict); err != nil {
		return fmt.Errorf("admission overlap check failed: %w", err)
	}
	if conflict {
		return ErrSlotUnavailable
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns(
			"venue_id", "user_id", "sport", "date", "start_time", "end_time",
			"duration", "total_price", "status", "payment_status", "contact_phone", "notes",
		).
		Values(
			b.VenueID, b.UserID, b.Sport, b.Date, b.StartTime, b.EndTime,
			b.Duration, b.TotalPrice, b.Status, b.PaymentStatus, b.ContactPhone, b.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("create booking failed: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"b.id": id})
}

func (r *pgxRepository) GetOwnedPending(ctx context.Context, id, userID string) (*Booking, error) {
	return r.getOne(ctx, squirrel.And{
		squirrel.Eq{"b.id": id},
		squirrel.Eq{"b.user_id": userID},
		squirrel.Eq{"b.payment_status": PaymentPending},
	})
}

func (r *pgxRepository) getOne(ctx context.Context, pred any) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns).
		From("public.bookings b").
		Join("public.venues v ON b.venue_id = v.id").
		Join("public.users u ON b.user_id = u.id").
		Where(pred).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(bookingColumns + ", count(*) OVER() as total_count").
		From("public.bookings b").
		Join("public.venues v ON b.venue_id = v.id").
		Join("public.users u ON b.user_id = u.id")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.VenueID != "" {
		query = query.Where(squirrel.Eq{"b.venue_id": filter.VenueID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if filter.Date != nil {
		dayStart, dayEnd := DayWindow(*filter.Date)
		query = query.Where(squirrel.GtOrEq{"b.date": dayStart}).
			Where(squirrel.LtOrEq{"b.date": dayEnd})
	}

	query = query.OrderBy("b.date DESC", "b.start_time DESC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}

	return bookings, total, nil
}

func (r *pgxRepository) ListOccupying(ctx context.Context, venueID string, dayStart, dayEnd time.Time, sport string) ([]*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(bookingColumns).
		From("public.bookings b").
		Join("public.venues v ON b.venue_id = v.id").
		Join("public.users u ON b.user_id = u.id").
		Where(squirrel.Eq{"b.venue_id": venueID}).
		Where(squirrel.GtOrEq{"b.date": dayStart}).
		Where(squirrel.LtOrEq{"b.date": dayEnd}).
		Where(squirrel.NotEq{"b.status": StatusCancelled}).
		Where(squirrel.Eq{"b.payment_status": PaymentCompleted}).
		OrderBy("b.start_time ASC")

	if sport != "" {
		query = query.Where(squirrel.Expr("lower(b.sport) = lower(?)", sport))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build occupying bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list occupying bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (r *pgxRepository) HasPaidOverlap(ctx context.Context, venueID string, dayStart, dayEnd time.Time, sport, startTime, endTime string) (bool, error) {
	sql, args, err := OverlapConflictSQL(venueID, dayStart, dayEnd, sport, startTime, endTime, "")
	if err != nil {
		return false, err
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking status query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) SetGatewayOrder(ctx context.Context, id, orderID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("gateway_order_id", orderID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set gateway order query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set gateway order failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) CancelStalePending(ctx context.Context, cutoff time.Time) (int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", StatusCancelled).
		Set("payment_status", PaymentFailed).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"payment_status": PaymentPending}).
		Where(squirrel.Eq{"status": StatusConfirmed}).
		Where(squirrel.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build reclaim query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale pending bookings failed: %w", err)
	}
	return int(ct.RowsAffected()), nil
}
