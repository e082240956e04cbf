package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/TableAdmin-lab/productloaderV2/internal/config"
	"github.com/TableAdmin-lab/productloaderV2/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv, err := New(db, config.Config{
		OutputDir:         dir,
		ServerAddr:        ":0",
		ServerCORSOrigins: []string{"*"},
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func submissionBody(name string, price float64) map[string]any {
	return map[string]any{
		"productName":   name,
		"uom":           "each",
		"prepLocation":  "Kitchen",
		"menuCategory":  "Mains",
		"productType":   "finishedGood",
		"taxApplicable": "true",
		"defaultPrice":  price,
	}
}

func TestProductLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	w := doJSON(t, router, http.MethodPost, "/api/products", submissionBody("Burger", 85))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("add before defaults: got %d want %d", w.Code, http.StatusBadRequest)
	}

	w = doJSON(t, router, http.MethodPost, "/api/session/defaults", map[string]string{
		"site": "Demo Cafe", "definePlu": "no",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("set defaults: got %d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/api/products", submissionBody("Burger", 85))
	if w.Code != http.StatusCreated {
		t.Fatalf("add product: got %d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/products", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list products: got %d", w.Code)
	}
	var listResp struct {
		Products []map[string]any `json:"products"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listResp.Products) != 1 {
		t.Fatalf("got %d products, want 1", len(listResp.Products))
	}
	groupID, _ := listResp.Products[0]["productGroupId"].(string)
	if groupID == "" {
		t.Fatal("product row has no group id")
	}

	w = doJSON(t, router, http.MethodDelete, "/api/products/"+groupID, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("remove without confirm: got %d want %d", w.Code, http.StatusConflict)
	}
	if !strings.Contains(w.Body.String(), "relatedRows") {
		t.Fatalf("conflict body missing related count: %s", w.Body.String())
	}

	w = doJSON(t, router, http.MethodDelete, "/api/products/"+groupID+"?confirm=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("confirmed remove: got %d body=%s", w.Code, w.Body.String())
	}
}

func TestZeroPriceVariantNeedsConfirmation(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	w := doJSON(t, router, http.MethodPost, "/api/session/defaults", map[string]string{
		"site": "Demo Cafe", "definePlu": "no",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("set defaults: got %d", w.Code)
	}

	body := submissionBody("Pizza", 0)
	body["variantGroups"] = []map[string]any{
		{"groupName": "Size", "options": []map[string]any{{"name": "Small"}, {"name": "Large"}}},
	}
	body["variantPricing"] = []map[string]any{
		{"combination": "Size:Small", "sellingPrice": 0.0},
		{"combination": "Size:Large", "sellingPrice": 90.0},
	}

	w = doJSON(t, router, http.MethodPost, "/api/products", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("zero price variant: got %d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/api/products?allowZero=true", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("allowZero add: got %d body=%s", w.Code, w.Body.String())
	}
}

func TestExportRequiresProducts(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	w := doJSON(t, router, http.MethodGet, "/api/export", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty export: got %d want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetMissingMenu(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	w := doJSON(t, router, http.MethodGet, "/api/menus/999", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing menu: got %d want %d", w.Code, http.StatusNotFound)
	}
}

func TestModifierEndpoints(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	w := doJSON(t, router, http.MethodPost, "/api/modifiers", map[string]any{
		"groupName": "Extras",
		"options":   []map[string]any{{"name": "Bacon", "price": 15.0}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add modifier: got %d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/api/modifiers", map[string]any{
		"groupName": "extras",
		"options":   []map[string]any{{"name": "Avo", "price": 22.0}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate modifier: got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, "/api/modifiers/Extras", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove modifier: got %d body=%s", w.Code, w.Body.String())
	}
}
