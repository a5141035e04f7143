package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func requestsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/requests", CreateAgencyRequest)
	return router
}

func postRequest(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/requests", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	requestsRouter().ServeHTTP(resp, req)
	return resp
}

func TestCreateAgencyRequestWithoutDB(t *testing.T) {
	resp := postRequest(t, `{
		"company_name": "Acme Events",
		"contact_name": "Jordan Li",
		"email": "jordan@acme.example",
		"regions": ["United States", "Europe"]
	}`)
	// No DB in tests: a valid lead that cannot be stored must surface the
	// failure instead of reporting success.
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCreateAgencyRequestMissingFields(t *testing.T) {
	resp := postRequest(t, `{"company_name": "  ", "contact_name": "Jordan", "email": ""}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateAgencyRequestUnknownRegion(t *testing.T) {
	resp := postRequest(t, `{
		"company_name": "Acme Events",
		"contact_name": "Jordan Li",
		"email": "jordan@acme.example",
		"regions": ["Antarctica"]
	}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if !strings.Contains(body["error"], "Antarctica") {
		t.Errorf("error must name the bad region, got %q", body["error"])
	}
}

func TestCreateAgencyRequestBadJSON(t *testing.T) {
	resp := postRequest(t, `{"company_name":`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
