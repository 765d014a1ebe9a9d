// Package storetest provides an in-memory fake of the storefront backend
// for tests.
//
// The fake reproduces the quirks the client layer exists to survive: the
// API may be mounted under the canonical prefix, no prefix, or a doubled
// prefix; unknown routes can answer 200 with the SPA HTML shell instead of
// a 404; responses use the {"success":...} envelope; and writes can demand
// an admin token.
package storetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/Avinash9608/Furniture-sub006/internal/catalog"
)

const spaShell = `<!DOCTYPE html><html><head><title>Furniture</title></head><body><div id="root"></div></body></html>`

// Options shape the fake deployment.
type Options struct {
	// Prefix is where the API actually lives. Empty mounts it at the
	// origin root; the canonical deployment uses "/api/v1".
	Prefix string
	// AdminToken, when set, is required for every write, either as a
	// bearer header or an in-body adminToken field.
	AdminToken string
	// ListFailures makes the first n category list calls answer 200 with
	// a failure envelope.
	ListFailures int
	// SPAFallback answers unknown routes with a 200 HTML shell, the way
	// a misconfigured single-page-app proxy does.
	SPAFallback bool
}

// Product is a persisted fake product.
type Product struct {
	catalog.Entity
	Price    string
	Stock    string
	Category string
	Images   []string
}

// Backend is the fake storefront. Zero-value options mount the API under
// "/api/v1" with no auth.
type Backend struct {
	opts   Options
	router chi.Router

	mu         sync.Mutex
	categories []catalog.Entity
	products   map[string]Product
	uploads    []string
	listCalls  int
	nextID     int
}

// New constructs a Backend seeded with the storefront's default categories.
func New(opts Options) *Backend {
	b := &Backend{
		opts:       opts,
		categories: catalog.SeedCategories(),
		products:   make(map[string]Product),
	}

	r := chi.NewRouter()
	mount := func(r chi.Router) {
		r.Get("/categories", b.listCategories)
		r.Post("/categories", b.createCategory)
		r.Post("/products", b.createProduct)
		r.Put("/products/{product_id}", b.updateProduct)
		r.Post("/uploads", b.uploadAssets)
	}
	if opts.Prefix == "" {
		mount(r)
	} else {
		r.Route(opts.Prefix, mount)
	}
	if opts.SPAFallback {
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(spaShell))
		})
	}
	b.router = r
	return b
}

// Handler returns the router for use with httptest.NewServer.
func (b *Backend) Handler() http.Handler {
	return b.router
}

// Uploads returns the refs of every asset uploaded so far.
func (b *Backend) Uploads() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.uploads...)
}

// Products returns the persisted products by id.
func (b *Backend) Products() map[string]Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]Product, len(b.products))
	for k, v := range b.products {
		out[k] = v
	}
	return out
}

// ListCalls returns how many category list requests were served.
func (b *Backend) ListCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listCalls
}

func (b *Backend) listCategories(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	b.listCalls++
	failing := b.listCalls <= b.opts.ListFailures
	categories := append([]catalog.Entity(nil), b.categories...)
	b.mu.Unlock()

	if failing {
		writeEnvelope(w, http.StatusOK, false, nil, "category service unavailable")
		return
	}
	writeEnvelope(w, http.StatusOK, true, categories, "")
}

func (b *Backend) createCategory(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(r, "") {
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "admin token required")
		return
	}
	var in catalog.Entity
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
		writeEnvelope(w, http.StatusBadRequest, false, nil, "invalid category")
		return
	}

	b.mu.Lock()
	b.nextID++
	in.ID = fmt.Sprintf("cat-%d", b.nextID)
	b.categories = append(b.categories, in)
	b.mu.Unlock()

	writeEnvelope(w, http.StatusCreated, true, in, "")
}

func (b *Backend) createProduct(w http.ResponseWriter, r *http.Request) {
	b.mutateProduct(w, r, "")
}

func (b *Backend) updateProduct(w http.ResponseWriter, r *http.Request) {
	b.mutateProduct(w, r, chi.URLParam(r, "product_id"))
}

func (b *Backend) mutateProduct(w http.ResponseWriter, r *http.Request, id string) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeEnvelope(w, http.StatusBadRequest, false, nil, "expected multipart form")
		return
	}
	if !b.authorized(r, r.FormValue("adminToken")) {
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "admin token required")
		return
	}
	if r.FormValue("name") == "" {
		writeEnvelope(w, http.StatusBadRequest, false, nil, "name is required")
		return
	}

	var images []string
	if refs := r.FormValue("existingImages"); refs != "" {
		if err := json.Unmarshal([]byte(refs), &images); err != nil {
			writeEnvelope(w, http.StatusBadRequest, false, nil, "invalid existingImages")
			return
		}
	}
	for _, fh := range r.MultipartForm.File["images"] {
		images = append(images, "/uploads/"+fh.Filename)
	}

	b.mu.Lock()
	if id == "" {
		b.nextID++
		id = fmt.Sprintf("prod-%d", b.nextID)
	}
	p := Product{
		Entity: catalog.Entity{
			ID:          id,
			Name:        r.FormValue("name"),
			Description: r.FormValue("description"),
		},
		Price:    r.FormValue("price"),
		Stock:    r.FormValue("stock"),
		Category: r.FormValue("category"),
		Images:   images,
	}
	b.products[id] = p
	b.mu.Unlock()

	writeEnvelope(w, http.StatusOK, true, p.Entity, "")
}

func (b *Backend) uploadAssets(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeEnvelope(w, http.StatusBadRequest, false, nil, "expected multipart form")
		return
	}
	if !b.authorized(r, r.FormValue("adminToken")) {
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "admin token required")
		return
	}

	var refs []string
	b.mu.Lock()
	for _, fh := range r.MultipartForm.File["images"] {
		ref := "/uploads/" + fh.Filename
		b.uploads = append(b.uploads, ref)
		refs = append(refs, ref)
	}
	b.mu.Unlock()

	writeEnvelope(w, http.StatusOK, true, refs, "")
}

func (b *Backend) authorized(r *http.Request, bodyToken string) bool {
	if b.opts.AdminToken == "" {
		return true
	}
	if bodyToken == b.opts.AdminToken {
		return true
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ") == b.opts.AdminToken
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"success": success}
	if data != nil {
		body["data"] = data
	}
	if message != "" {
		body["message"] = message
	}
	_ = json.NewEncoder(w).Encode(body)
}
