package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jandiralceu/movies-catalog/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities and
// their genre sets. Every multi-statement write runs inside a single
// transaction so readers never observe a movie without its genre rows.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

// sortColumns maps the validated sort field to the column expression used
// in ORDER BY. Caller-supplied text is never interpolated into query text;
// anything outside this allow-list is rejected.
var sortColumns = map[domain.SortField]string{
	domain.SortByTitle: "m.title",
	domain.SortByYear:  "m.yearofrelease",
}

// Create inserts the movie row and one genre row per genre within one
// transaction. A duplicate movie id commits an empty transaction and
// reports false; a slug collision rolls back and reports false. Any genre
// insert failure aborts the whole transaction.
func (r *MoviesRepository) Create(ctx context.Context, movie domain.Movie) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin create movie: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        INSERT INTO movies (id, slug, title, yearofrelease)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO NOTHING
    `, movie.ID, movie.Slug, movie.Title, movie.YearOfRelease)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert movie: %w", err)
	}

	if tag.RowsAffected() > 0 {
		for _, genre := range movie.Genres {
			if _, err := tx.Exec(ctx, `
                INSERT INTO genres (movieid, name)
                VALUES ($1, $2)
            `, movie.ID, genre); err != nil {
				return false, fmt.Errorf("insert genre %q: %w", genre, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit create movie: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetByID fetches a movie by its identifier, hydrated with its genre set
// and rating data for the optional requesting user.
func (r *MoviesRepository) GetByID(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (domain.Movie, error) {
	return r.getMovie(ctx, "m.id", id, userID)
}

// GetBySlug fetches a movie by its slug with the same hydration contract
// as GetByID.
func (r *MoviesRepository) GetBySlug(ctx context.Context, slug string, userID *uuid.UUID) (domain.Movie, error) {
	return r.getMovie(ctx, "m.slug", slug, userID)
}

// getMovie runs the single-movie aggregate query followed by the genre
// hydration query on one acquired connection. column is a fixed
// compile-time identifier, never caller input.
func (r *MoviesRepository) getMovie(ctx context.Context, column string, key any, userID *uuid.UUID) (domain.Movie, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return domain.Movie{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	query := fmt.Sprintf(`
        SELECT m.id, m.slug, m.title, m.yearofrelease,
               round(avg(r.rating), 1)::float8 AS rating,
               min(ur.rating) AS userrating
        FROM movies m
        LEFT JOIN ratings r ON m.id = r.movieid
        LEFT JOIN ratings ur ON m.id = ur.movieid AND ur.userid = $2
        WHERE %s = $1
        GROUP BY m.id
    `, column)

	var movie domain.Movie
	err = conn.QueryRow(ctx, query, key, userID).Scan(
		&movie.ID,
		&movie.Slug,
		&movie.Title,
		&movie.YearOfRelease,
		&movie.Rating,
		&movie.UserRating,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, fmt.Errorf("query movie: %w", err)
	}

	rows, err := conn.Query(ctx, `SELECT name FROM genres WHERE movieid = $1`, movie.ID)
	if err != nil {
		return domain.Movie{}, fmt.Errorf("query genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var genre string
		if err := rows.Scan(&genre); err != nil {
			return domain.Movie{}, fmt.Errorf("scan genre: %w", err)
		}
		movie.Genres = append(movie.Genres, genre)
	}
	if err := rows.Err(); err != nil {
		return domain.Movie{}, err
	}

	return movie, nil
}

// GetAll returns movies matching the provided options as one aggregate
// query: filters, genre aggregation, rating enrichment, allow-listed
// sorting, and pagination applied in that order.
func (r *MoviesRepository) GetAll(ctx context.Context, opts domain.GetAllOptions) ([]domain.Movie, error) {
	if opts.Page < 1 {
		opts.Page = domain.DefaultPage
	}
	if opts.PageSize <= 0 {
		opts.PageSize = domain.DefaultPageSize
	} else if opts.PageSize > domain.MaxPageSize {
		opts.PageSize = domain.MaxPageSize
	}

	args := make([]any, 0, 6)
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	query := strings.Builder{}
	query.WriteString(`
        SELECT m.id, m.slug, m.title, m.yearofrelease,
               string_agg(DISTINCT g.name, ',') AS genres,
               round(avg(r.rating), 1)::float8 AS rating,
    `)
	if opts.UserID != nil {
		query.WriteString("min(ur.rating) AS userrating")
	} else {
		query.WriteString("NULL::int AS userrating")
	}
	query.WriteString(`
        FROM movies m
        LEFT JOIN genres g ON m.id = g.movieid
        LEFT JOIN ratings r ON m.id = r.movieid
    `)
	if opts.UserID != nil {
		query.WriteString(fmt.Sprintf(" LEFT JOIN ratings ur ON m.id = ur.movieid AND ur.userid = %s", arg(*opts.UserID)))
	}

	where := make([]string, 0, 2)
	if opts.Title != nil {
		where = append(where, fmt.Sprintf("m.title ILIKE %s", arg("%"+*opts.Title+"%")))
	}
	if opts.Year != nil {
		where = append(where, fmt.Sprintf("m.yearofrelease = %s", arg(*opts.Year)))
	}
	if len(where) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(where, " AND "))
	}

	query.WriteString(" GROUP BY m.id")

	orderColumn, ok := sortColumns[opts.Sort]
	if !ok {
		return nil, fmt.Errorf("unsupported sort field %q", opts.Sort)
	}
	direction := "ASC"
	if opts.Direction == domain.Descending {
		direction = "DESC"
	}
	query.WriteString(fmt.Sprintf(" ORDER BY %s %s, m.id ASC", orderColumn, direction))
	query.WriteString(fmt.Sprintf(" LIMIT %s OFFSET %s", arg(opts.PageSize), arg(opts.Offset())))

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	movies := make([]domain.Movie, 0)
	for rows.Next() {
		var movie domain.Movie
		var genres *string
		if err := rows.Scan(
			&movie.ID,
			&movie.Slug,
			&movie.Title,
			&movie.YearOfRelease,
			&genres,
			&movie.Rating,
			&movie.UserRating,
		); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		if genres != nil {
			movie.Genres = strings.Split(*genres, ",")
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return movies, nil
}

// GetCount reports how many movies match the optional title/year filters,
// for pagination metadata alongside GetAll.
func (r *MoviesRepository) GetCount(ctx context.Context, title *string, year *int) (int, error) {
	args := make([]any, 0, 2)
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	where := make([]string, 0, 2)
	if title != nil {
		where = append(where, fmt.Sprintf("title ILIKE %s", arg("%"+*title+"%")))
	}
	if year != nil {
		where = append(where, fmt.Sprintf("yearofrelease = %s", arg(*year)))
	}

	query := "SELECT count(id) FROM movies"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return count, nil
}

// Update rewrites the genre set (delete then reinsert) and updates the
// movie's mutable fields within one transaction. The genre reinsert is
// guarded on movie existence so an update of an unknown id is a committed
// no-op returning false. A slug collision rolls back and reports false.
func (r *MoviesRepository) Update(ctx context.Context, movie domain.Movie) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin update movie: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM genres WHERE movieid = $1`, movie.ID); err != nil {
		return false, fmt.Errorf("delete genres: %w", err)
	}

	for _, genre := range movie.Genres {
		if _, err := tx.Exec(ctx, `
            INSERT INTO genres (movieid, name)
            SELECT m.id, $2 FROM movies m WHERE m.id = $1
        `, movie.ID, genre); err != nil {
			return false, fmt.Errorf("insert genre %q: %w", genre, err)
		}
	}

	tag, err := tx.Exec(ctx, `
        UPDATE movies
        SET slug = $2, title = $3, yearofrelease = $4
        WHERE id = $1
    `, movie.ID, movie.Slug, movie.Title, movie.YearOfRelease)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("update movie: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit update movie: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByID removes the movie and its dependent rating and genre rows in
// one transaction; ratings are deleted explicitly rather than left
// orphaned. Returns whether the movie row itself was deleted.
func (r *MoviesRepository) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin delete movie: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM ratings WHERE movieid = $1`, id); err != nil {
		return false, fmt.Errorf("delete ratings: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM genres WHERE movieid = $1`, id); err != nil {
		return false, fmt.Errorf("delete genres: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete movie: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit delete movie: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ExistsByID is a cheap existence probe with no hydration.
func (r *MoviesRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT exists(SELECT 1 FROM movies WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check movie exists: %w", err)
	}
	return exists, nil
}
