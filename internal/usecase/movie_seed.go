package usecase

import "movie-booking/internal/dto/request"

func defaultMovies() []*request.MovieRequest {
	poster := func(path string) *string {
		url := "https://image.tmdb.org/t/p/w500/" + path
		return &url
	}
	trailer := func(url string) *string { return &url }

	return []*request.MovieRequest{
		{
			Title:             "Oldboy",
			Description:       "After being kidnapped and imprisoned for 15 years, Oh Dae-Su is released, only to find that he must uncover the truth behind his captivity in five days.",
			ReleaseDate:       "2003-11-21",
			Genres:            []string{"Action", "Drama", "Thriller"},
			DurationInMinutes: 120,
			PosterURL:         poster("rIZX6X0MIHYEebk6W4LABT9VP2c.jpg"),
		},
		{
			Title:             "Inception",
			Description:       "A thief who steals corporate secrets through the use of dream-sharing technology is given the inverse task of planting an idea into the mind of a C.E.O.",
			ReleaseDate:       "2010-07-16",
			Genres:            []string{"Action", "Sci-Fi", "Thriller"},
			DurationInMinutes: 148,
			PosterURL:         poster("9gk7adHYeDvHkCSEqAvQNLV5Uge.jpg"),
		},
		{
			Title:             "Jab We Met",
			Description:       "A depressed businessman finds his life changing after he meets a spirited, free-spirited woman on a train journey.",
			ReleaseDate:       "2007-10-26",
			Genres:            []string{"Comedy", "Drama", "Romance"},
			DurationInMinutes: 138,
			PosterURL:         poster("lgCFw6V0YpO4UYbwLXk1mQv4vVd.jpg"),
		},
		{
			Title:             "Annabelle",
			Description:       "A couple begins to experience terrifying supernatural occurrences involving a vintage doll shortly after their home is invaded by satanic cultists.",
			ReleaseDate:       "2014-10-03",
			Genres:            []string{"Horror", "Thriller"},
			DurationInMinutes: 99,
			PosterURL:         poster("dkMDVq5UaGFO0o6c3QY9ZFI51EC.jpg"),
		},
		{
			Title:             "Schindler's List",
			Description:       "In German-occupied Poland during World War II, industrialist Oskar Schindler gradually becomes concerned for his Jewish workforce after witnessing their persecution by the Nazis.",
			ReleaseDate:       "1993-12-15",
			Genres:            []string{"Biography", "Drama", "History"},
			DurationInMinutes: 195,
			TrailerURL:        trailer("https://www.youtube.com/watch?v=gG22XNhtSgA"),
		},
		{
			Title:             "Dandadan",
			Description:       "Two teenagers, Momo Ayase and Ken Takakura, find themselves entangled in a supernatural battle against aliens and spirits, leading to bizarre and comedic adventures.",
			ReleaseDate:       "2024-10-04",
			Genres:            []string{"Action", "Comedy", "Supernatural"},
			DurationInMinutes: 130,
			PosterURL:         poster("xVq2j2E6U3wQ1i9Z4k0X6Z2Q7uM.jpg"),
			TrailerURL:        trailer("https://www.youtube.com/watch?v=Fj2s_J-1u4U"),
		},
	}
}
