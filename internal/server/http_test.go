package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/groblegark/confstore/internal/hub"
	"github.com/groblegark/confstore/internal/model"
	"github.com/groblegark/confstore/internal/service"
	"github.com/groblegark/confstore/internal/store/memory"
)

const (
	testUser  = "8b7f3a52-9c1d-4e6a-b2f0-1d2c3e4f5a6b"
	otherUser = "f0e1d2c3-b4a5-4968-8776-655443322110"
)

func newTestServer(t *testing.T) (*Server, *service.Service) {
	t.Helper()
	svc := service.New(memory.New(), nil)
	return New(svc, hub.New()), svc
}

// doJSON performs a request against the handler with the identity header set.
func doJSON(t *testing.T, handler http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeConfiguration(t *testing.T, rec *httptest.ResponseRecorder) *model.Configuration {
	t.Helper()
	var c model.Configuration
	if err := json.NewDecoder(rec.Body).Decode(&c); err != nil {
		t.Fatalf("decode configuration: %v (body=%s)", err, rec.Body.String())
	}
	return &c
}

func createTestConfiguration(t *testing.T, handler http.Handler, userID, name, data string) *model.Configuration {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/v1/configurations", userID, map[string]any{
		"name": name,
		"data": json.RawMessage(data),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	return decodeConfiguration(t, rec)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	handler := s.NewHTTPHandler("")

	rec := doJSON(t, handler, http.MethodGet, "/v1/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	s, _ := newTestServer(t)
	handler := s.NewHTTPHandler("sekrit")

	// Health stays open.
	rec := doJSON(t, handler, http.MethodGet, "/v1/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}

	// Everything else needs the bearer token.
	rec = doJSON(t, handler, http.MethodGet, "/v1/configurations", testUser, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/configurations", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	req.Header.Set("X-User-ID", testUser)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200 (body=%s)", rec2.Code, rec2.Body.String())
	}
}

func TestIdentityRequired(t *testing.T) {
	s, _ := newTestServer(t)
	handler := s.NewHTTPHandler("")

	rec := doJSON(t, handler, http.MethodGet, "/v1/configurations", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing identity status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/v1/configurations", "not-a-uuid", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("malformed identity status = %d, want 401", rec.Code)
	}
}

func TestCreateConfiguration(t *testing.T) {
	s, _ := newTestServer(t)
	handler := s.NewHTTPHandler("")

	c := createTestConfiguration(t, handler, testUser, "db-config", `{"x":1}`)
	if c.ID == "" || c.UserID != testUser {
		t.Errorf("unexpected configuration: %+v", c)
	}

	// Duplicate name conflicts.
	rec := doJSON(t, handler, http.MethodPost, "/v1/configurations", testUser, map[string]any{
		"name": "DB-Config",
		"data": json.RawMessage(`{}`),
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}

	// Bad name is a validation error.
	rec = doJSON(t, handler, http.MethodPost, "/v1/configurations", testUser, map[string]any{
		"name": "bad/name",
		"data": json.RawMessage(`{}`),
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad name status = %d, want 400", rec.Code)
	}

	// Malformed body.
	req := httptest.NewRequest(http.MethodPost, "/v1/configurations", bytes.NewBufferString("{nope"))
	req.Header.Set("X-User-ID", testUser)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rec2.Code)
	}
}

func TestGetConfiguration(t *testing.T) {
	s, _ := newTestServer(t)
	handler := s.NewHTTPHandler("")
	c := createTestConfiguration(t, handler, testUser, "db-config", `{"x":1}`)

	rec := doJSON(t, handler, http.MethodGet, "/v1/configurations/"+c.ID, testUser, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeConfiguration(t, rec)
	if got.Name != "db-config" {
		t.Errorf("Name = %q, want db-config", got.Name)
	}

	rec = doJSON(t, handler, http.MethodGet, "/v1/configurations/"+c.ID, otherUser, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("cross-owner status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/v1/configurations/cfg-missing", testUser, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", rec.Code)
	}
}

func TestUpdateConfiguration(t *testing.T) {
	s, _ := newTestServer(t)
	handler := s.NewHTTPHandler("")
	c := createTestConfiguration(t, handler, testUser, "db-config", `{"x":1}`)

	rec := doJSON(t, handler, http.MethodPut, "/v1/configurations/"+c.ID, testUser, map[string]any{
		"name": "db-config",
		"data": json.RawMessage(`{"x":2}`),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	updated := decodeConfiguration(t, rec)
	if string(updated.Data) != `{"x":2}` || len(updated.Versions) != 1 {
		t.Errorf("updated = %+v, want new data and one version", updated)
	}

	// Replaying the original token conflicts.
	rec = doJSON(t, handler, http.MethodPut, "/v1/configurations/"+c.ID, testUser, map[string]any{
		"name":       "db-config",
		"data":       json.RawMessage(`{"x":3}`),
		"updated_at": c.UpdatedAt,
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("stale token status = %d, want 409", rec.Code)
	}

	// The fresh token succeeds.
	rec = doJSON(t, handler, http.MethodPut, "/v1/configurations/"+c.ID, testUser, map[string]any{
		"name":       "db-config",
		"data":       json.RawMessage(`{"x":3}`),
		"updated_at": updated.UpdatedAt,
	})
	if rec.Code != http.StatusOK {
		t.Errorf("fresh token status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRestoreVersion(t *testing.T) {
	s, _ := newTestServer(t)
	handler := s.NewHTTPHandler("")
	c := createTestConfiguration(t, handler, testUser, "db-config", `{"x":1}`)

	doJSON(t, handler, http.MethodPut, "/v1/configurations/"+c.ID, testUser, map[string]any{
		"name": "db-config",
		"data": json.RawMessage(`{"x":2}`),
	})

	rec := doJSON(t, handler, http.MethodPost,
		fmt.Sprintf("/v1/configurations/%s/versions/1/restore", c.ID), testUser, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	restored := decodeConfiguration(t, rec)
	if string(restored.Data) != `{"x":1}` {
		t.Errorf("Data = %s, want {\"x\":1}", restored.Data)
	}

	rec = doJSON(t, handler, http.MethodPost,
		fmt.Sprintf("/v1/configurations/%s/versions/99/restore", c.ID), testUser, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing version status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost,
		fmt.Sprintf("/v1/configurations/%s/versions/nope/restore", c.ID), testUser, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric version status = %d, want 400", rec.Code)
	}
}

func TestListConfigurations(t *testing.T) {
	s, _ := newTestServer(t)
	handler := s.NewHTTPHandler("")
	createTestConfiguration(t, handler, testUser, "alpha", `{}`)
	createTestConfiguration(t, handler, testUser, "beta", `{}`)
	createTestConfiguration(t, handler, otherUser, "gamma", `{}`)

	rec := doJSON(t, handler, http.MethodGet, "/v1/configurations?page=1&page_size=1", testUser, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Configurations []*model.Configuration `json:"configurations"`
		PageInfo       model.PageInfo         `json:"page_info"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Configurations) != 1 || resp.PageInfo.TotalItems != 2 {
		t.Errorf("got %d items, total %d; want 1 item of 2", len(resp.Configurations), resp.PageInfo.TotalItems)
	}

	// Name filter.
	rec = doJSON(t, handler, http.MethodGet, "/v1/configurations?name=bet", testUser, nil)
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Configurations) != 1 || resp.Configurations[0].Name != "beta" {
		t.Errorf("filtered list = %+v, want [beta]", resp.Configurations)
	}

	// Bad date filter.
	rec = doJSON(t, handler, http.MethodGet, "/v1/configurations?created_from=yesterday", testUser, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", rec.Code)
	}
}

func TestListVersions(t *testing.T) {
	s, _ := newTestServer(t)
	handler := s.NewHTTPHandler("")
	c := createTestConfiguration(t, handler, testUser, "db-config", `{"x":1}`)

	for i := 2; i <= 4; i++ {
		doJSON(t, handler, http.MethodPut, "/v1/configurations/"+c.ID, testUser, map[string]any{
			"name": "db-config",
			"data": json.RawMessage(fmt.Sprintf(`{"x":%d}`, i)),
		})
	}

	rec := doJSON(t, handler, http.MethodGet, "/v1/configurations/"+c.ID+"/versions", testUser, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Versions []*model.ConfigurationVersion `json:"versions"`
		PageInfo model.PageInfo                `json:"page_info"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.PageInfo.TotalItems != 3 || len(resp.Versions) != 3 {
		t.Fatalf("got %d versions, total %d; want 3", len(resp.Versions), resp.PageInfo.TotalItems)
	}
	if resp.Versions[0].VersionNumber != 3 {
		t.Errorf("first version = %d, want 3 (newest first)", resp.Versions[0].VersionNumber)
	}

	rec = doJSON(t, handler, http.MethodGet, "/v1/configurations/"+c.ID+"/versions", otherUser, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("cross-owner status = %d, want 403", rec.Code)
	}
}

func TestSubscriptions(t *testing.T) {
	s, _ := newTestServer(t)
	handler := s.NewHTTPHandler("")

	rec := doJSON(t, handler, http.MethodPost, "/v1/subscriptions", testUser, map[string]any{
		"event_types": []string{"created", "modified"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("subscribe status = %d: %s", rec.Code, rec.Body.String())
	}
	var sub model.Subscription
	if err := json.NewDecoder(rec.Body).Decode(&sub); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sub.EventTypes) != 2 {
		t.Errorf("EventTypes = %v, want two entries", sub.EventTypes)
	}

	rec = doJSON(t, handler, http.MethodPost, "/v1/subscriptions", testUser, map[string]any{
		"event_types": []string{"exploded"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown event type status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/v1/subscriptions", testUser, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("unsubscribe status = %d, want 204", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodDelete, "/v1/subscriptions", testUser, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second unsubscribe status = %d, want 404", rec.Code)
	}
}
