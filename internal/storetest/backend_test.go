package storetest

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) // #nosec G107 -- test server URL
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestBackendServesEnvelopeUnderPrefix(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(New(Options{Prefix: "/api/v1"}).Handler())
	t.Cleanup(srv.Close)

	status, body := getBody(t, srv.URL+"/api/v1/categories")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"success":true`)

	status, _ = getBody(t, srv.URL+"/categories")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestBackendSPAFallbackServesShell(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(New(Options{Prefix: "", SPAFallback: true}).Handler())
	t.Cleanup(srv.Close)

	// The real route works at the root.
	status, body := getBody(t, srv.URL+"/categories")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"success":true`)

	// The prefixed path lands on the shell with a misleading 200.
	status, body = getBody(t, srv.URL+"/api/v1/categories")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<!DOCTYPE html>")
}

func TestBackendListFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(New(Options{Prefix: "/api/v1", ListFailures: 1}).Handler())
	t.Cleanup(srv.Close)

	_, body := getBody(t, srv.URL+"/api/v1/categories")
	assert.Contains(t, body, `"success":false`)

	_, body = getBody(t, srv.URL+"/api/v1/categories")
	assert.Contains(t, body, `"success":true`)
}

func TestBackendProductMutationParsesMultipart(t *testing.T) {
	t.Parallel()

	b := New(Options{Prefix: "/api/v1", AdminToken: "secret"})
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "Oslo Sofa"))
	require.NoError(t, w.WriteField("price", "499.99"))
	require.NoError(t, w.WriteField("adminToken", "secret"))
	require.NoError(t, w.WriteField("existingImages", `["/uploads/old.jpg"]`))
	part, err := w.CreateFormFile("images", "front.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp, err := http.Post(srv.URL+"/api/v1/products", w.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)

	products := b.Products()
	require.Len(t, products, 1)
	for _, p := range products {
		assert.Equal(t, "Oslo Sofa", p.Name)
		assert.ElementsMatch(t, []string{"/uploads/old.jpg", "/uploads/front.png"}, p.Images)
	}
}

func TestBackendRejectsMissingToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(New(Options{Prefix: "/api/v1", AdminToken: "secret"}).Handler())
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "Oslo Sofa"))
	require.NoError(t, w.Close())

	resp, err := http.Post(srv.URL+"/api/v1/products", w.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
