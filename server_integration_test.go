package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ChangeLaterX/Cookify-sub001/pkg/receipt"

	"github.com/gin-gonic/gin"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	// allow callers to pass nil for body safely
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	jwtSecret = []byte("test-secret")
	initDB()
	tmp := t.TempDir()
	_ = os.Setenv("UPLOAD_BASE", tmp)
	seedDB()
	receiptSvc = receipt.NewService(&dbCatalog{db: db})
	r := gin.Default()
	setupRoutes(r)
	return r
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)

	// 1. Register user
	regBody, _ := json.Marshal(map[string]string{"username": "user1", "password": "passw1"})
	resp := performRequest(r, http.MethodPost, "/register", bytes.NewBuffer(regBody), "", "application/json")
	if resp.Code != 200 && resp.Code != 409 {
		b := resp.Body.String()
		t.Fatalf("register failed status=%d body=%s", resp.Code, b)
	}

	// 2. Login
	loginBody, _ := json.Marshal(map[string]string{"username": "user1", "password": "passw1"})
	resp = performRequest(r, http.MethodPost, "/login", bytes.NewBuffer(loginBody), "", "application/json")
	if resp.Code != 200 {
		b := resp.Body.String()
		t.Fatalf("login failed status=%d body=%s", resp.Code, b)
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %+v", loginResp)
	}

	// 3. Me
	resp = performRequest(r, http.MethodGet, "/me", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("me failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 4. Process pasted receipt text (no OCR runtime needed)
	textBody, _ := json.Marshal(map[string]string{"text": "Milk (1 gallon) $3.29\nTomatoes (2 lbs) $3.98\nSubtotal: $7.27"})
	resp = performRequest(r, http.MethodPost, "/receipts/text", bytes.NewBuffer(textBody), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("process text failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var procResp receipt.ProcessedResult
	if err := json.Unmarshal(resp.Body.Bytes(), &procResp); err != nil {
		t.Fatalf("bad process response: %v", err)
	}
	if procResp.TotalItemsDetected != 2 {
		t.Fatalf("expected 2 items, got %+v", procResp)
	}
	if procResp.DetectedItems[0].DetectedText != "Milk" || procResp.DetectedItems[1].DetectedText != "Tomatoes" {
		t.Fatalf("items out of order: %+v", procResp.DetectedItems)
	}
	// seeded catalog contains both names, so suggestions should come back
	if len(procResp.DetectedItems[0].Suggestions) == 0 {
		t.Fatalf("expected suggestions for Milk: %+v", procResp.DetectedItems[0])
	}

	// 5. Scan history includes the text submission
	resp = performRequest(r, http.MethodGet, "/receipts", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("list receipts failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 6. Ingredient search
	resp = performRequest(r, http.MethodGet, "/ingredients?query=milk", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("ingredient search failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var cands []receipt.Candidate
	if err := json.Unmarshal(resp.Body.Bytes(), &cands); err != nil {
		t.Fatalf("bad ingredients response: %v", err)
	}
	if len(cands) == 0 {
		t.Fatalf("expected seeded Milk in search results")
	}

	// 7. Non-admin cannot create ingredients
	ingBody, _ := json.Marshal(map[string]string{"name": "Dragonfruit"})
	resp = performRequest(r, http.MethodPost, "/ingredients", bytes.NewBuffer(ingBody), token, "application/json")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin ingredient create, got %d", resp.Code)
	}

	// 8. Unauthorized access to protected endpoint should be 401
	unauth := performRequest(r, http.MethodGet, "/receipts", nil, "", "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized list receipts got %d", unauth.Code)
	}
}

func TestAdminIngredientCreate(t *testing.T) {
	r := setupTestServer(t)

	loginBody, _ := json.Marshal(map[string]string{"username": "admin", "password": "admin123"})
	resp := performRequest(r, http.MethodPost, "/login", bytes.NewBuffer(loginBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("admin login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)

	ingBody, _ := json.Marshal(map[string]string{"name": "Dragonfruit", "category": "produce"})
	resp = performRequest(r, http.MethodPost, "/ingredients", bytes.NewBuffer(ingBody), token, "application/json")
	if resp.Code != 200 && resp.Code != http.StatusConflict {
		t.Fatalf("admin ingredient create failed status=%d body=%s", resp.Code, resp.Body.String())
	}
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	initDB()
}
