// Package tvdb provides a client for the TVDB API v4.
package tvdb

// Kind selects the TVDB record collection.
type Kind string

const (
	KindSeries Kind = "series"
	KindMovie  Kind = "movie"
)

var kindPaths = map[Kind]string{
	KindSeries: "series",
	KindMovie:  "movies",
}

// Artwork is the subset of a series or movie base record used for posters.
type Artwork struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// loginResponse is the TVDB login API response.
type loginResponse struct {
	Status string `json:"status"`
	Data   struct {
		Token string `json:"token"`
	} `json:"data"`
}

// artworkResponse is the TVDB /series/{id} and /movies/{id} response.
type artworkResponse struct {
	Status string  `json:"status"`
	Data   Artwork `json:"data"`
}
