package request

type MovieRequest struct {
	Title             string   `json:"title" validate:"required,min=1,max=200"`
	Description       string   `json:"description" validate:"required"`
	ReleaseDate       string   `json:"release_date" validate:"required,datetime=2006-01-02"`
	Genres            []string `json:"genres" validate:"required,min=1,dive,required,max=50"`
	DurationInMinutes int      `json:"duration_in_minutes" validate:"required,min=1,max=999"`
	PosterURL         *string  `json:"poster_url,omitempty" validate:"omitempty,url"`
	TrailerURL        *string  `json:"trailer_url,omitempty" validate:"omitempty,url"`
}

type MovieUpdateRequest struct {
	Title             *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description       *string  `json:"description,omitempty" validate:"omitempty,min=1"`
	ReleaseDate       *string  `json:"release_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Genres            []string `json:"genres,omitempty" validate:"omitempty,min=1,dive,required,max=50"`
	DurationInMinutes *int     `json:"duration_in_minutes,omitempty" validate:"omitempty,min=1,max=999"`
	PosterURL         *string  `json:"poster_url,omitempty" validate:"omitempty,url"`
	TrailerURL        *string  `json:"trailer_url,omitempty" validate:"omitempty,url"`
}
