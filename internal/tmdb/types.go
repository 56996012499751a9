// Package tmdb resolves movie posters from The Movie Database.
package tmdb

const imageBaseURL = "https://image.tmdb.org/t/p/"

// Movie is the subset of TMDB movie details needed for poster lookup.
type Movie struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	PosterPath  string `json:"poster_path"` // "/abc123.jpg"
}

// PosterURL returns the image URL for size (w92 through w780, or original).
func (m *Movie) PosterURL(size string) string {
	if m.PosterPath == "" {
		return ""
	}
	return imageBaseURL + size + m.PosterPath
}
