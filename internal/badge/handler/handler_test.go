package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boothbase/boothbase-backend/internal/badge/domain"
	"github.com/boothbase/boothbase-backend/internal/badge/service"
	"github.com/boothbase/boothbase-backend/internal/badge/storage"
	"github.com/boothbase/boothbase-backend/pkg/account"
	"github.com/boothbase/boothbase-backend/pkg/logger"
	"github.com/boothbase/boothbase-backend/pkg/testutil"
)

type stubRecognizer struct{ text string }

func (s *stubRecognizer) Recognize(context.Context, []byte) (string, error) {
	return s.text, nil
}

type stubDirectory struct {
	candidates []domain.DealerCandidate
	createdID  string
}

func (s *stubDirectory) SearchCandidates(context.Context, string, int) ([]domain.DealerCandidate, error) {
	return s.candidates, nil
}

func (s *stubDirectory) CreateFromScan(context.Context, domain.DealerForm) (string, error) {
	return s.createdID, nil
}

func (s *stubDirectory) AttachBadgeImage(context.Context, string, []byte, string) error {
	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// testRouter mounts the handler behind a middleware that injects a fixed
// account, standing in for the JWT layer.
func testRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(account.WithAccountID(req.Context(), "acct-1")))
		})
	})
	r.Route("/badge-scans", func(r chi.Router) {
		r.Post("/", h.Scan)
		r.Get("/{scanID}", h.Get)
		r.Post("/{scanID}/select", h.Select)
		r.Post("/{scanID}/create-new", h.CreateNew)
		r.Post("/{scanID}/submit", h.Submit)
	})
	return r
}

func newHandler(rec *stubRecognizer, dir *stubDirectory) *Handler {
	log := logger.New("badge-handler-test", "test")
	svc := service.NewService(rec, dir, storage.NewSessionStore(time.Minute), noopPublisher{}, log, 10)
	return NewHandler(svc, log, 0)
}

func scanBadge(t *testing.T, router http.Handler) map[string]interface{} {
	t.Helper()
	req := testutil.NewMultipartRequest(t, http.MethodPost, "/badge-scans", "file", "badge.png", []byte("img"))
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)

	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	testutil.ParseJSONBody(t, rr, &resp)
	return resp.Data
}

func TestScanEndpointManualFallback(t *testing.T) {
	router := testRouter(newHandler(&stubRecognizer{text: ""}, &stubDirectory{}))

	data := scanBadge(t, router)
	assert.Equal(t, string(domain.StateManualFallback), data["state"])
	assert.Equal(t, string(domain.FallbackNoText), data["reason"])
	assert.NotEmpty(t, data["scan_id"])
}

func TestScanEndpointDisambiguates(t *testing.T) {
	dir := &stubDirectory{candidates: []domain.DealerCandidate{
		{ID: "d1", ContactName: "Ryan Skolnick", CompanyName: "Glen Dimplex Americas"},
		{ID: "d2", ContactName: "Amy Skolnick", CompanyName: "Northern Hearth Supply"},
	}}
	router := testRouter(newHandler(&stubRecognizer{text: "RYAN\nSKOLNICK\nGLEN DIMPLEX AMERICAS"}, dir))

	data := scanBadge(t, router)
	assert.Equal(t, string(domain.StateDisambiguating), data["state"])
	candidates, ok := data["candidates"].([]interface{})
	require.True(t, ok)
	assert.Len(t, candidates, 2)
}

func TestScanEndpointMissingFile(t *testing.T) {
	router := testRouter(newHandler(&stubRecognizer{}, &stubDirectory{}))
	req := testutil.NewHTTPRequest(http.MethodPost, "/badge-scans", nil)
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestGetEndpoint(t *testing.T) {
	router := testRouter(newHandler(&stubRecognizer{text: ""}, &stubDirectory{}))
	data := scanBadge(t, router)
	scanID := data["scan_id"].(string)

	req := testutil.NewHTTPRequest(http.MethodGet, "/badge-scans/"+scanID, nil)
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertBodyContains(t, rr, scanID)
}

func TestGetEndpointUnknownScan(t *testing.T) {
	router := testRouter(newHandler(&stubRecognizer{}, &stubDirectory{}))
	req := testutil.NewHTTPRequest(http.MethodGet, "/badge-scans/nope", nil)
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestSelectEndpoint(t *testing.T) {
	dir := &stubDirectory{candidates: []domain.DealerCandidate{
		{ID: "d1", ContactName: "Ryan Skolnick", CompanyName: "Glen Dimplex Americas"},
		{ID: "d2", ContactName: "Amy Skolnick", CompanyName: "Northern Hearth Supply"},
	}}
	router := testRouter(newHandler(&stubRecognizer{text: "RYAN\nSKOLNICK\nGLEN DIMPLEX AMERICAS"}, dir))
	data := scanBadge(t, router)
	scanID := data["scan_id"].(string)

	req := testutil.NewHTTPRequest(http.MethodPost, "/badge-scans/"+scanID+"/select", map[string]string{"dealer_id": "d1"})
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertBodyContains(t, rr, string(domain.StateAutoResolved))
}

func TestSelectEndpointValidation(t *testing.T) {
	dir := &stubDirectory{candidates: []domain.DealerCandidate{
		{ID: "d1", ContactName: "Ryan Skolnick", CompanyName: "Glen Dimplex Americas"},
		{ID: "d2", ContactName: "Amy Skolnick", CompanyName: "Northern Hearth Supply"},
	}}
	router := testRouter(newHandler(&stubRecognizer{text: "RYAN\nSKOLNICK\nGLEN DIMPLEX AMERICAS"}, dir))
	data := scanBadge(t, router)
	scanID := data["scan_id"].(string)

	req := testutil.NewHTTPRequest(http.MethodPost, "/badge-scans/"+scanID+"/select", map[string]string{})
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestCreateNewAndSubmitEndpoints(t *testing.T) {
	dir := &stubDirectory{
		candidates: []domain.DealerCandidate{
			{ID: "d1", ContactName: "Jane Harper", CompanyName: "Acme Robotics Inc"},
			{ID: "d2", ContactName: "Jane Cole", CompanyName: "Acme Robotics Inc"},
		},
		createdID: "new-dealer",
	}
	router := testRouter(newHandler(&stubRecognizer{text: "Jane Doe\nAcme Robotics Inc"}, dir))
	data := scanBadge(t, router)
	scanID := data["scan_id"].(string)

	req := testutil.NewHTTPRequest(http.MethodPost, "/badge-scans/"+scanID+"/create-new", nil)
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertBodyContains(t, rr, "Jane Doe")

	form := map[string]string{"company_name": "Acme Robotics Inc", "contact_name": "Jane Doe"}
	req = testutil.NewHTTPRequest(http.MethodPost, "/badge-scans/"+scanID+"/submit", form)
	rr = testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	testutil.AssertBodyContains(t, rr, "new-dealer")
}

func TestSubmitEndpointValidation(t *testing.T) {
	router := testRouter(newHandler(&stubRecognizer{text: ""}, &stubDirectory{}))
	data := scanBadge(t, router)
	scanID := data["scan_id"].(string)

	// Missing contact name fails validation before touching the service.
	req := testutil.NewHTTPRequest(http.MethodPost, "/badge-scans/"+scanID+"/submit", map[string]string{"company_name": "Acme"})
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}
