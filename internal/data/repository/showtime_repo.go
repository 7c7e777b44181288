package repository

import (
	"context"
	"errors"
	"fmt"

	"movie-booking/internal/data/entity"
	"movie-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ShowtimeRepository interface {
	// Create stores the showtime together with its seat layout.
	Create(ctx context.Context, showtime *entity.Showtime) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Showtime, error)
	FindAll(ctx context.Context) ([]*entity.Showtime, error)
	FindByMovieID(ctx context.Context, movieID uuid.UUID) ([]*entity.Showtime, error)
	CountByMovieID(ctx context.Context, movieID uuid.UUID) (int64, error)
	// UpdateDetails changes catalog fields only (date, time, theater, price).
	UpdateDetails(ctx context.Context, showtime *entity.Showtime) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Inventory
	FindWithSeats(ctx context.Context, id uuid.UUID) (*entity.Showtime, error)
	// UpdateInventory sets IsBooked=booked on the given seats and stores the
	// new available count. It only applies if showtime.Version is still current,
	// otherwise ErrConflict. On success showtime.Version is advanced.
	UpdateInventory(ctx context.Context, showtime *entity.Showtime, seatNumbers []string, booked bool) error
}

type showtimeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewShowtimeRepository(db database.PgxIface, log *zap.Logger) ShowtimeRepository {
	return &showtimeRepository{
		db:  db,
		log: log.With(zap.String("repository", "showtime")),
	}
}

const showtimeColumns = `id, movie_id, show_date, show_time, theater, total_seats, available_seats, price, version, created_at, updated_at`

func (r *showtimeRepository) Create(ctx context.Context, showtime *entity.Showtime) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO showtimes (` + showtimeColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`

		_, err := r.db.Exec(ctx, query,
			showtime.ID,
			showtime.MovieID,
			showtime.ShowDate,
			showtime.ShowTime,
			showtime.Theater,
			showtime.TotalSeats,
			showtime.AvailableSeats,
			showtime.Price,
			showtime.Version,
			showtime.CreatedAt,
			showtime.UpdatedAt,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("create showtime: %w", ErrDuplicate)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("create showtime for movie %s: %w", showtime.MovieID, ErrNotFound)
		}
		if err != nil {
			r.log.Error("Failed to create showtime", zap.Error(err), zap.String("movie_id", showtime.MovieID.String()))
			return fmt.Errorf("create showtime: %w", err)
		}

		numbers := make([]string, len(showtime.Seats))
		rowLabels := make([]string, len(showtime.Seats))
		columns := make([]int32, len(showtime.Seats))
		positions := make([]int32, len(showtime.Seats))
		for i, seat := range showtime.Seats {
			numbers[i] = seat.SeatNumber
			rowLabels[i] = seat.SeatRow
			columns[i] = int32(seat.SeatColumn)
			positions[i] = int32(i)
		}

		seatQuery := `
			INSERT INTO showtime_seats (showtime_id, seat_number, seat_row, seat_column, position)
			SELECT $1, s.seat_number, s.seat_row, s.seat_column, s.position
			FROM unnest($2::text[], $3::text[], $4::int[], $5::int[]) AS s(seat_number, seat_row, seat_column, position)
		`
		if _, err := r.db.Exec(ctx, seatQuery, showtime.ID, numbers, rowLabels, columns, positions); err != nil {
			r.log.Error("Failed to create seat layout", zap.Error(err), zap.String("showtime_id", showtime.ID.String()))
			return fmt.Errorf("create seats for showtime %s: %w", showtime.ID, err)
		}

		return nil
	})
}

func (r *showtimeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Showtime, error) {
	query := `SELECT ` + showtimeColumns + ` FROM showtimes WHERE id = $1`

	showtime, err := scanShowtime(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find showtime by ID", zap.Error(err), zap.String("showtime_id", id.String()))
		return nil, fmt.Errorf("find showtime by ID %s: %w", id, err)
	}

	return showtime, nil
}

func (r *showtimeRepository) FindAll(ctx context.Context) ([]*entity.Showtime, error) {
	query := `SELECT ` + showtimeColumns + ` FROM showtimes ORDER BY show_date, show_time`
	return r.list(ctx, query)
}

func (r *showtimeRepository) FindByMovieID(ctx context.Context, movieID uuid.UUID) ([]*entity.Showtime, error) {
	query := `SELECT ` + showtimeColumns + ` FROM showtimes WHERE movie_id = $1 ORDER BY show_date, show_time`
	return r.list(ctx, query, movieID)
}

func (r *showtimeRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Showtime, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list showtimes", zap.Error(err))
		return nil, fmt.Errorf("list showtimes: %w", err)
	}
	defer rows.Close()

	var showtimes []*entity.Showtime
	for rows.Next() {
		showtime, err := scanShowtime(rows)
		if err != nil {
			return nil, fmt.Errorf("scan showtime: %w", err)
		}
		showtimes = append(showtimes, showtime)
	}

	return showtimes, rows.Err()
}

func (r *showtimeRepository) CountByMovieID(ctx context.Context, movieID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM showtimes WHERE movie_id = $1`, movieID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count showtimes for movie %s: %w", movieID, err)
	}
	return count, nil
}

func (r *showtimeRepository) UpdateDetails(ctx context.Context, showtime *entity.Showtime) error {
	query := `
		UPDATE showtimes
		SET show_date = $2, show_time = $3, theater = $4, price = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		showtime.ID,
		showtime.ShowDate,
		showtime.ShowTime,
		showtime.Theater,
		showtime.Price,
		showtime.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("update showtime %s: %w", showtime.ID, ErrDuplicate)
	}
	if err != nil {
		r.log.Error("Failed to update showtime", zap.Error(err), zap.String("showtime_id", showtime.ID.String()))
		return fmt.Errorf("update showtime %s: %w", showtime.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update showtime %s: %w", showtime.ID, ErrNotFound)
	}

	return nil
}

func (r *showtimeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM showtimes WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("delete showtime %s: %w", id, ErrInUse)
	}
	if err != nil {
		r.log.Error("Failed to delete showtime", zap.Error(err), zap.String("showtime_id", id.String()))
		return fmt.Errorf("delete showtime %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete showtime %s: %w", id, ErrNotFound)
	}

	r.log.Info("Showtime deleted", zap.String("showtime_id", id.String()))
	return nil
}

func (r *showtimeRepository) FindWithSeats(ctx context.Context, id uuid.UUID) (*entity.Showtime, error) {
	showtime, err := r.FindByID(ctx, id)
	if err != nil || showtime == nil {
		return showtime, err
	}

	query := `
		SELECT seat_number, seat_row, seat_column, is_booked
		FROM showtime_seats
		WHERE showtime_id = $1
		ORDER BY position
	`

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to load seats", zap.Error(err), zap.String("showtime_id", id.String()))
		return nil, fmt.Errorf("load seats for showtime %s: %w", id, err)
	}
	defer rows.Close()

	showtime.Seats = make([]entity.ShowtimeSeat, 0, showtime.TotalSeats)
	for rows.Next() {
		var seat entity.ShowtimeSeat
		if err := rows.Scan(&seat.SeatNumber, &seat.SeatRow, &seat.SeatColumn, &seat.IsBooked); err != nil {
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		showtime.Seats = append(showtime.Seats, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load seats for showtime %s: %w", id, err)
	}

	return showtime, nil
}

func (r *showtimeRepository) UpdateInventory(ctx context.Context, showtime *entity.Showtime, seatNumbers []string, booked bool) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		result, err := r.db.Exec(ctx, `
			UPDATE showtimes
			SET available_seats = $2, version = version + 1, updated_at = NOW()
			WHERE id = $1 AND version = $3
		`, showtime.ID, showtime.AvailableSeats, showtime.Version)
		if err != nil {
			r.log.Error("Failed to update available seats", zap.Error(err), zap.String("showtime_id", showtime.ID.String()))
			return fmt.Errorf("update inventory of showtime %s: %w", showtime.ID, err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("update inventory of showtime %s: %w", showtime.ID, ErrConflict)
		}

		// Only flips seats still in the opposite state, so a concurrent
		// writer shows up as a short row count.
		result, err = r.db.Exec(ctx, `
			UPDATE showtime_seats
			SET is_booked = $3
			WHERE showtime_id = $1 AND seat_number = ANY($2) AND is_booked <> $3
		`, showtime.ID, seatNumbers, booked)
		if err != nil {
			r.log.Error("Failed to update seat flags", zap.Error(err), zap.String("showtime_id", showtime.ID.String()))
			return fmt.Errorf("update seats of showtime %s: %w", showtime.ID, err)
		}
		if int(result.RowsAffected()) != len(seatNumbers) {
			return fmt.Errorf("update seats of showtime %s: %w", showtime.ID, ErrConflict)
		}

		showtime.Version++
		return nil
	})
}

func scanShowtime(row pgx.Row) (*entity.Showtime, error) {
	var showtime entity.Showtime
	err := row.Scan(
		&showtime.ID,
		&showtime.MovieID,
		&showtime.ShowDate,
		&showtime.ShowTime,
		&showtime.Theater,
		&showtime.TotalSeats,
		&showtime.AvailableSeats,
		&showtime.Price,
		&showtime.Version,
		&showtime.CreatedAt,
		&showtime.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &showtime, nil
}
