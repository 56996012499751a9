package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sonarr:8989", "http://sonarr:8989"},
		{"http://sonarr:8989/", "http://sonarr:8989"},
		{"https://radarr.example.org", "https://radarr.example.org"},
		{"  radarr/  ", "http://radarr"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBaseURL(tt.in))
		})
	}
}

func TestNewHTTPClient_SkipVerify(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	strict := NewHTTPClient("test", 5*time.Second, true, nil)
	_, err := strict.Get(srv.URL)
	require.Error(t, err, "self-signed certificate must be rejected when verifying")

	lax := NewHTTPClient("test", 5*time.Second, false, nil)
	resp, err := lax.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 5*time.Second, lax.Timeout)
}
