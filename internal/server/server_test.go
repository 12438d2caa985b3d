package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/refer-web/internal/auth"
	"github.com/hongminglow/refer-web/internal/backend"
	"github.com/hongminglow/refer-web/internal/catalog"
	"github.com/hongminglow/refer-web/internal/checkout"
	"github.com/hongminglow/refer-web/internal/config"
	"github.com/hongminglow/refer-web/internal/monitoring"
	"github.com/hongminglow/refer-web/internal/session"
	"github.com/hongminglow/refer-web/internal/storage/memory"
)

// fakeReferAPI answers the backend routes the site calls with canned data.
func fakeReferAPI(t *testing.T, token string) *httptest.Server {
	t.Helper()
	reply := func(w http.ResponseWriter, status int, data any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		msg, state := "ok", "success"
		if status >= 400 {
			msg, state = "Unauthorized", "error"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": state, "message": msg, "data": data})
	}
	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer "+token
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]string{"token": token})
	})
	mux.HandleFunc("GET /get-user-refer", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			reply(w, http.StatusUnauthorized, nil)
			return
		}
		reply(w, http.StatusOK, map[string]any{
			"user":           map[string]any{"_id": r.URL.Query().Get("id"), "name": "Joy"},
			"referredUsers":  []map[string]string{{"_id": "r1", "name": "Ann"}},
			"convertedUsers": []map[string]string{},
			"referralStats":  map[string]int{"totalReferrals": 3, "totalConverted": 1, "totalEarned": 2},
		})
	})
	mux.HandleFunc("GET /get-user-by-id", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			reply(w, http.StatusUnauthorized, nil)
			return
		}
		reply(w, http.StatusOK, map[string]any{"user": map[string]any{"_id": r.URL.Query().Get("id"), "name": "Joy", "isPurchased": false}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginThenDashboard(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "refer-web", time.Hour)
	token, err := tokens.Generate(auth.Claims{ID: "abc123", Name: "Joy", Email: "joy@example.com"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	api := fakeReferAPI(t, token)

	products, err := catalog.Read(strings.NewReader(`[{"id":"1","name":"Clean Code","price":10}]`))
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	orders := memory.NewOrderStore()
	log := zap.NewNop()
	cfg := config.Config{SiteBaseURL: "https://example.com", CORSOrigins: []string{"*"}, CookieSecure: false}

	site := httptest.NewServer(NewHandler(cfg, Deps{
		Backend:   backend.NewClient(api.URL, 5*time.Second, log),
		Gate:      session.NewGate(tokens, log, cfg.CookieSecure),
		Products:  products,
		Orders:    orders,
		Processor: checkout.NewProcessor(orders, 0, log),
		Log:       log,
	}))
	defer site.Close()

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}

	resp, err := client.Get(site.URL + "/dashboard")
	if err != nil {
		t.Fatalf("anonymous dashboard: %v", err)
	}
	resp.Body.Close()
	if resp.Request.URL.Path != "/login" {
		t.Fatalf("anonymous dashboard ended at %s", resp.Request.URL.Path)
	}

	body, _ := json.Marshal(map[string]string{"email": "joy@example.com", "password": "secret1"})
	resp, err = client.Post(site.URL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing request id header")
	}

	resp, err = client.Get(site.URL + "/dashboard")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d", resp.StatusCode)
	}

	var env struct {
		Data struct {
			Stats struct {
				ConversionRate        int    `json:"conversionRate"`
				PendingConversions    int    `json:"pendingConversions"`
				TotalCreditsDisplayed int    `json:"totalCreditsDisplayed"`
				ReferralLink          string `json:"referralLink"`
			} `json:"stats"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	stats := env.Data.Stats
	if stats.ConversionRate != 33 || stats.PendingConversions != 2 || stats.TotalCreditsDisplayed != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.ReferralLink != "https://example.com/register?r=abc123" {
		t.Fatalf("referral link = %q", stats.ReferralLink)
	}
}

func TestCORSPreflight(t *testing.T) {
	log := zap.NewNop()
	tokens := auth.NewTokenManager("secret", "refer-web", time.Hour)
	cfg := config.Config{SiteBaseURL: "https://example.com", CORSOrigins: []string{"https://app.example.com"}}
	products, _ := catalog.Read(strings.NewReader(`[]`))
	orders := memory.NewOrderStore()
	h := NewHandler(cfg, Deps{
		Backend:   backend.NewClient("http://127.0.0.1:0", time.Second, log),
		Gate:      session.NewGate(tokens, log, true),
		Products:  products,
		Orders:    orders,
		Processor: checkout.NewProcessor(orders, 0, log),
		Log:       log,
	})

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("allow origin = %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("credentials not allowed")
	}
}

func TestMetricsRecordRoutePatterns(t *testing.T) {
	log := zap.NewNop()
	tokens := auth.NewTokenManager("secret", "refer-web", time.Hour)
	products, _ := catalog.Read(strings.NewReader(`[{"id":"7","name":"Book","price":3}]`))
	orders := memory.NewOrderStore()
	metrics := monitoring.New()
	h := NewHandler(config.Config{SiteBaseURL: "https://example.com"}, Deps{
		Backend:   backend.NewClient("http://127.0.0.1:0", time.Second, log),
		Gate:      session.NewGate(tokens, log, true),
		Products:  products,
		Orders:    orders,
		Processor: checkout.NewProcessor(orders, 0, log),
		Log:       log,
		Metrics:   metrics,
	})

	for _, target := range []string{"/products/7", "/products/404", "/nowhere"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`http_requests_total{method="GET",path="GET /products/{id}",status="200"} 1`,
		`http_requests_total{method="GET",path="GET /products/{id}",status="404"} 1`,
		`http_requests_total{method="GET",path="unmatched",status="404"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
