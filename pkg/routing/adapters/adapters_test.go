package adapters

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/addendum/pkg/addendum"
	"github.com/toyz/addendum/pkg/addendum/source"
	"github.com/toyz/addendum/pkg/routing"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fileController struct{}

func (fileController) Show(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "user %s", r.PathValue("id"))
}

func (fileController) Download(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, "file %s", r.PathValue("*"))
}

func bindings(t *testing.T) []routing.Binding {
	t.Helper()

	reg := addendum.NewRegistry()
	require.NoError(t, routing.RegisterTypes(reg))
	mem := source.NewMemory()
	mem.AddClass("FileController", `@Prefix("/api")`).
		Method("Show", `@Route("GET /users/{id}", name="user.show")`).
		Method("Download", `@Route("GET /files/{*}")`)

	engine := addendum.New(reg, addendum.WithProvider(mem))
	out, err := routing.Collect(engine, "FileController", fileController{})
	require.NoError(t, err)
	return out
}

func TestGinAdapter(t *testing.T) {
	adapter, engine := NewDefaultGinAdapter()
	assert.Equal(t, "Gin", adapter.Name())
	routing.MountAll(adapter, bindings(t))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/42", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user 42", rec.Body.String())

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/files/docs/readme.md", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "file docs/readme.md", rec.Body.String())
}

func TestEchoAdapter(t *testing.T) {
	adapter, e := NewDefaultEchoAdapter()
	assert.Equal(t, "Echo", adapter.Name())
	routing.MountAll(adapter, bindings(t))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/7", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user 7", rec.Body.String())
	assert.Equal(t, "/api/users/:id", e.Reverse("user.show"))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/files/a/b.txt", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "file a/b.txt", rec.Body.String())
}

func TestFiberAdapter(t *testing.T) {
	adapter, app := NewDefaultFiberAdapter()
	assert.Equal(t, "Fiber", adapter.Name())
	routing.MountAll(adapter, bindings(t))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/users/9", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "user 9", string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/files/a/b.txt", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "file a/b.txt", string(body))

	assert.Equal(t, "/api/users/:id", app.GetRoute("user.show").Path)
}
