package card

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/vmunix/arrbot/internal/media"
)

// DownloadTimeout bounds a poster download.
const DownloadTimeout = 45 * time.Second

// maxPosterBytes caps the size of a downloaded poster.
const maxPosterBytes = 10 << 20

var errNotImage = errors.New("not an image")

// PosterSource resolves a poster URL from an external metadata id.
type PosterSource interface {
	PosterURL(ctx context.Context, id int) (string, error)
}

// PosterFunc adapts a function to PosterSource.
type PosterFunc func(ctx context.Context, id int) (string, error)

// PosterURL calls f.
func (f PosterFunc) PosterURL(ctx context.Context, id int) (string, error) {
	return f(ctx, id)
}

// resolvePoster picks the poster URL for a record: the metadata service
// first, then the poster image embedded in the record.
func (f *Formatter) resolvePoster(ctx context.Context, rec media.Record) string {
	var (
		source  PosterSource
		extID   int
		images  []media.Image
		baseURL string
	)
	switch r := rec.(type) {
	case *media.Series:
		source, extID, images, baseURL = f.seriesPosters, r.TVDBID, r.Images, f.sonarrURL
	case *media.Episode:
		source, extID, images, baseURL = f.seriesPosters, r.SeriesTVDBID, r.Images, f.sonarrURL
	case *media.Movie:
		source, extID, images, baseURL = f.moviePosters, r.TMDBID, r.Images, f.radarrURL
	default:
		return ""
	}

	if source != nil && extID > 0 {
		u, err := source.PosterURL(ctx, extID)
		switch {
		case err != nil:
			f.log.Warn("poster lookup failed", "kind", rec.Kind(), "id", extID, "error", err)
		case isAbsolute(u):
			return u
		}
	}

	img := media.Poster(images)
	if img == nil {
		return ""
	}
	if isAbsolute(img.RemoteURL) {
		return img.RemoteURL
	}
	return resolveRelative(baseURL, img.URL)
}

func isAbsolute(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// resolveRelative joins a service-relative path such as
// /MediaCover/1/poster.jpg onto the service base URL.
func resolveRelative(baseURL, ref string) string {
	switch {
	case ref == "":
		return ""
	case isAbsolute(ref):
		return ref
	case strings.HasPrefix(ref, "/") && baseURL != "":
		return strings.TrimRight(baseURL, "/") + ref
	default:
		return ""
	}
}

// download fetches poster bytes. HTML error pages and other non-image
// bodies are rejected.
func (f *Formatter) download(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "arrbot")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download poster: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPosterBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read poster: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty body", errNotImage)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("%w: %s", errNotImage, contentType)
	}
	return data, contentType, nil
}

// uploadPoster downloads and uploads the poster, returning its content URI
// or "" on any failure.
func (f *Formatter) uploadPoster(ctx context.Context, rec media.Record) string {
	posterURL := f.resolvePoster(ctx, rec)
	if posterURL == "" {
		f.log.Debug("no poster available", "kind", rec.Kind())
		return ""
	}

	data, contentType, err := f.download(ctx, posterURL)
	if err != nil {
		f.log.Warn("poster download failed", "url", posterURL, "error", err)
		return ""
	}

	uri, err := f.msgr.Upload(ctx, data, contentType, posterName(posterURL))
	if err != nil {
		f.log.Warn("poster upload failed", "url", posterURL, "error", err)
		return ""
	}
	f.log.Debug("poster uploaded", "url", posterURL, "uri", uri, "bytes", len(data))
	return uri
}

func posterName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "poster.jpg"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "poster.jpg"
	}
	return name
}
