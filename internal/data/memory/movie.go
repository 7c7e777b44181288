package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"movie-booking/internal/data/entity"
	"movie-booking/internal/data/repository"

	"github.com/google/uuid"
)

type movieRepo struct{ s *Store }

func cloneMovie(m *entity.Movie) *entity.Movie {
	c := *m
	c.Genres = slices.Clone(m.Genres)
	return &c
}

func (r *movieRepo) Create(ctx context.Context, movie *entity.Movie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.movies[movie.ID] = cloneMovie(movie)
	r.s.record(ctx, func() { delete(r.s.movies, movie.ID) })
	return nil
}

func (r *movieRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Movie, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if m, ok := r.s.movies[id]; ok {
		return cloneMovie(m), nil
	}
	return nil, nil
}

func (r *movieRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.Movie, error) {
	r.s.mu.RLock()
	movies := make([]*entity.Movie, 0, len(r.s.movies))
	for _, m := range r.s.movies {
		movies = append(movies, cloneMovie(m))
	}
	r.s.mu.RUnlock()

	sort.Slice(movies, func(i, j int) bool {
		if !movies[i].ReleaseDate.Equal(movies[j].ReleaseDate) {
			return movies[i].ReleaseDate.After(movies[j].ReleaseDate)
		}
		return movies[i].Title < movies[j].Title
	})
	return page(movies, limit, offset), nil
}

func (r *movieRepo) CountAll(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.movies)), nil
}

func (r *movieRepo) Update(ctx context.Context, movie *entity.Movie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.movies[movie.ID]
	if !ok {
		return fmt.Errorf("update movie %s: %w", movie.ID, repository.ErrNotFound)
	}

	updated := cloneMovie(movie)
	updated.CreatedAt = prev.CreatedAt
	r.s.movies[movie.ID] = updated
	r.s.record(ctx, func() { r.s.movies[movie.ID] = prev })
	return nil
}

func (r *movieRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.movies[id]
	if !ok {
		return fmt.Errorf("delete movie %s: %w", id, repository.ErrNotFound)
	}
	for _, st := range r.s.showtimes {
		if st.MovieID == id {
			return fmt.Errorf("delete movie %s: %w", id, repository.ErrInUse)
		}
	}

	delete(r.s.movies, id)
	r.s.record(ctx, func() { r.s.movies[id] = prev })
	return nil
}
