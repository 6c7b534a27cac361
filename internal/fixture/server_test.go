package fixture

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestPages(t *testing.T) {
	ts := httptest.NewServer(NewServer("").Handler())
	defer ts.Close()

	for _, path := range []string{"/elements", "/text-box", "/checkbox", "/dynamic-properties"} {
		t.Run(path, func(t *testing.T) {
			resp, body := get(t, ts.URL+path)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
			assert.Contains(t, body, `class="element-list collapse show"`)
			assert.Contains(t, body, `id="item-0" data-path="/text-box"`)
			assert.Contains(t, body, `<span class="text">Broken Links - Images</span>`)
			assert.Contains(t, body, `src="/images/Toolsqa.jpg"`)
			assert.Contains(t, body, `/static/app.js`)
		})
	}
}

func TestPageEmbedsTreeAndTitles(t *testing.T) {
	ts := httptest.NewServer(NewServer("").Handler())
	defer ts.Close()

	_, body := get(t, ts.URL+"/checkbox")
	assert.Contains(t, body, "<title>DEMOQA - Check Box</title>")
	assert.Contains(t, body, `"value":"wordFile"`)
	assert.Contains(t, body, `"label":"Word File.doc"`)
	assert.Contains(t, body, `"/text-box":"Text Box"`)

	// The collapsed group reuses the first item id.
	assert.Equal(t, 2, strings.Count(body, `id="item-0"`))
}

func TestAssets(t *testing.T) {
	ts := httptest.NewServer(NewServer("").Handler())
	defer ts.Close()

	resp, body := get(t, ts.URL+"/images/Toolsqa.jpg")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, body)

	resp, body = get(t, ts.URL+"/static/app.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Permananet Address :")
	assert.Contains(t, body, "field-error")
	assert.Contains(t, body, "You have selected :")
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}

func TestUnknownPage(t *testing.T) {
	ts := httptest.NewServer(NewServer("").Handler())
	defer ts.Close()

	resp, _ := get(t, ts.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRootRedirects(t *testing.T) {
	ts := httptest.NewServer(NewServer("").Handler())
	defer ts.Close()

	resp, body := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/elements", resp.Request.URL.Path)
	assert.Contains(t, body, "DEMOQA - Elements")
}

func TestStartStop(t *testing.T) {
	s := NewServer("")
	assert.Equal(t, "fixture", s.Name())
	assert.Empty(t, s.URL())
	assert.Empty(t, s.ElementsURL())

	require.NoError(t, s.Start(context.Background()))
	require.NotEmpty(t, s.URL())
	assert.True(t, strings.HasSuffix(s.ElementsURL(), "/elements"))

	resp, body := get(t, s.URL()+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)

	require.NoError(t, s.Stop(context.Background()))
	assert.Empty(t, s.URL())
	assert.NoError(t, s.Stop(context.Background()))
}

func TestStartFailsOnBusyPort(t *testing.T) {
	a := NewServer("")
	require.NoError(t, a.Start(context.Background()))
	defer a.Stop(context.Background())

	b := NewServer(strings.TrimPrefix(a.URL(), "http://"))
	assert.Error(t, b.Start(context.Background()))
}
