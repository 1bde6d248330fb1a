package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpulse/retailpulse/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderUnknownTemplateWritesNothing(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/missing.html", TemplateData{})
	require.Error(t, err)
	assert.Zero(t, rec.Body.Len())
}

func TestRenderNoDataPage(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.RenderStatus(rec, http.StatusOK, "pages/dashboard.html", TemplateData{
		Title: "Dashboard",
		Flash: &shared.FlashMessage{Kind: "info", Message: "hello"},
		Data:  struct{ NoData bool }{NoData: true},
	})
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), "No data available")
	assert.Contains(t, rec.Body.String(), "hello")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestNilEngine(t *testing.T) {
	var engine *Engine
	require.Error(t, engine.Render(httptest.NewRecorder(), "pages/dashboard.html", TemplateData{}))
}
