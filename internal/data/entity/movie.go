package entity

import (
	"time"
)

type Movie struct {
	Base
	Title             string    `db:"title"`
	Description       string    `db:"description"`
	ReleaseDate       time.Time `db:"release_date"`
	Genres            []string  `db:"genres"`
	DurationInMinutes int       `db:"duration_in_minutes"`
	PosterURL         *string   `db:"poster_url"`
	TrailerURL        *string   `db:"trailer_url"`
}
