package venue

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines data access methods for venues.
type Repository interface {
	Create(ctx context.Context, v *Venue) error
	GetByID(ctx context.Context, id string) (*Venue, error)
	List(ctx context.Context, filter Filter) ([]*Venue, int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, v *Venue) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.venues").
		Columns(
			"owner_id", "name", "description", "address", "sports",
			"photo", "price_min", "price_max", "amenities",
		).
		Values(
			v.OwnerID, v.Name, v.Description, v.Address, v.Sports,
			v.Photo, v.PriceRange.Min, v.PriceRange.Max, v.Amenities,
		).
		Suffix("RETURNING id, is_approved, rating, review_count, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create venue query failed: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).
		Scan(&v.ID, &v.IsApproved, &v.Rating, &v.ReviewCount, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create venue failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Venue, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"v.id", "v.owner_id", "u.full_name", "v.name", "v.description", "v.address",
		"v.sports", "v.photo", "v.is_approved", "v.price_min", "v.price_max",
		"v.amenities", "v.rating", "v.review_count", "v.created_at", "v.updated_at",
	).
		From("public.venues v").
		Join("public.users u ON v.owner_id = u.id").
		Where(squirrel.Eq{"v.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get venue query failed: %w", err)
	}

	row := r.pool.QueryRow(ctx, query, args...)

	var v Venue
	err = row.Scan(
		&v.ID, &v.OwnerID, &v.OwnerName, &v.Name, &v.Description, &v.Address,
		&v.Sports, &v.Photo, &v.IsApproved, &v.PriceRange.Min, &v.PriceRange.Max,
		&v.Amenities, &v.Rating, &v.ReviewCount, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get venue failed: %w", err)
	}
	return &v, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Venue, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"v.id", "v.owner_id", "u.full_name", "v.name", "v.description", "v.address",
		"v.sports", "v.photo", "v.is_approved", "v.price_min", "v.price_max",
		"v.amenities", "v.rating", "v.review_count", "v.created_at", "v.updated_at",
		"count(*) OVER() as total_count",
	).
		From("public.venues v").
		Join("public.users u ON v.owner_id = u.id")

	if filter.Sport != "" {
		// Offered-sports match is case-insensitive.
		query = query.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM unnest(v.sports) s WHERE lower(s) = lower(?))", filter.Sport))
	}
	if filter.Search != "" {
		query = query.Where(squirrel.ILike{"v.name": "%" + filter.Search + "%"})
	}

	query = query.OrderBy("v.created_at DESC")

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
		return nil, 0, fmt.Errorf("build list venues query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list venues failed: %w", err)
	}
	defer rows.Close()

	var venues []*Venue
	var total int

	for rows.Next() {
		var v Venue
		if err := rows.Scan(
			&v.ID, &v.OwnerID, &v.OwnerName, &v.Name, &v.Description, &v.Address,
			&v.Sports, &v.Photo, &v.IsApproved, &v.PriceRange.Min, &v.PriceRange.Max,
			&v.Amenities, &v.Rating, &v.ReviewCount, &v.CreatedAt, &v.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan venue failed: %w", err)
		}
		venues = append(venues, &v)
	}

	return venues, total, nil
}
