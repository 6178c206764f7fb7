package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func releaseServer(t *testing.T, tag string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"tag_name":"` + tag + `","html_url":"https://example.com/r"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckReportsNewerRelease(t *testing.T) {
	srv := releaseServer(t, "v1.4.0")
	c := &Checker{URL: srv.URL, HTTP: srv.Client()}

	res, err := c.Check(context.Background(), "v1.3.9")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "1.4.0", res.LatestVersion)
	assert.Equal(t, "https://example.com/r", res.URL)
}

func TestCheckUpToDate(t *testing.T) {
	srv := releaseServer(t, "v1.4.0")
	c := &Checker{URL: srv.URL, HTTP: srv.Client()}

	for _, current := range []string{"1.4.0", "v1.10.0", "dev"} {
		res, err := c.Check(context.Background(), current)
		require.NoError(t, err)
		assert.Nil(t, res, current)
	}
}

func TestCheckServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := (&Checker{URL: srv.URL, HTTP: srv.Client()}).Check(context.Background(), "1.0.0")
	assert.Error(t, err)
}

func TestNewer(t *testing.T) {
	assert.True(t, newer("1.10.0", "1.9.3"))
	assert.True(t, newer("2.0", "1.99.99"))
	assert.True(t, newer("1.2.1", "1.2"))
	assert.False(t, newer("1.2.0", "1.2"))
	assert.False(t, newer("1.2.0-rc1", "1.2.0"))
}
