package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/ride-service/internal/dispatch"
	"github.com/example/ride-service/internal/rides"
	"github.com/example/ride-service/internal/routes"
	"github.com/example/ride-service/internal/storage"
)

func newTestServer(adminToken string) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := &rides.Service{Store: storage.NewMemoryStore()}
	return NewServer(logger, svc, &routes.Resolver{}, dispatch.NewWSRegistry(logger), adminToken)
}

func postJSON(t *testing.T, srv *Server, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, srv, "POST", path, body, headers)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestQuoteEndpointShape(t *testing.T) {
	srv := newTestServer("")
	w := postJSON(t, srv, "/api/v1/quote", map[string]string{
		"pickup_location":  "123 Main St, Jacksonville, FL",
		"dropoff_location": "1 Airport Rd, Jacksonville Airport, FL",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success     bool `json:"success"`
		IsEstimated bool `json:"isEstimated"`
		Route       struct {
			Distance struct {
				Miles float64 `json:"miles"`
				Text  string  `json:"text"`
			} `json:"distance"`
			Duration struct {
				Minutes float64 `json:"minutes"`
				Text    string  `json:"text"`
			} `json:"duration"`
		} `json:"route"`
		Pricing struct {
			SuggestedPrice float64 `json:"suggestedPrice"`
			ExactPrice     float64 `json:"exactPrice"`
			Calculation    string  `json:"calculation"`
			TripType       string  `json:"tripType"`
		} `json:"pricing"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || !resp.IsEstimated {
		t.Fatalf("resp = %+v, want success + estimated", resp)
	}
	if resp.Route.Distance.Miles != 12 || resp.Route.Duration.Minutes != 18 {
		t.Errorf("route = %+v, want 12 mi / 18 min", resp.Route)
	}
	if resp.Pricing.SuggestedPrice != 16.00 || resp.Pricing.TripType != "medium" {
		t.Errorf("pricing = %+v", resp.Pricing)
	}
	if resp.Pricing.Calculation == "" {
		t.Error("missing calculation string")
	}
}

func TestQuoteEndpointValidation(t *testing.T) {
	srv := newTestServer("")
	w := postJSON(t, srv, "/api/v1/quote", map[string]string{"pickup_location": "x"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSubmitQuoteTransitionFlow(t *testing.T) {
	srv := newTestServer("")

	w := postJSON(t, srv, "/api/v1/rides", map[string]any{
		"name": "Jane Doe", "phone": "9045551234",
		"pickup_location": "123 Main St", "dropoff_location": "Airport",
		"service_type": "regular", "requested_date": "2026-09-02", "requested_time": "9:30 AM",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", w.Code, w.Body.String())
	}
	var created struct {
		Ride struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"ride"`
		SMSStatus struct {
			Success bool `json:"success"`
		} `json:"smsStatus"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Ride.Status != "pending" || !created.SMSStatus.Success {
		t.Fatalf("created = %+v", created)
	}

	path := fmt.Sprintf("/api/v1/rides/%d/status", created.Ride.ID)

	// quote without a price is rejected
	w = doJSON(t, srv, "PUT", path, map[string]any{"status": "quoted"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty quote status = %d", w.Code)
	}

	// unknown status is rejected
	w = doJSON(t, srv, "PUT", path, map[string]any{"status": "bogus"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bogus status = %d", w.Code)
	}

	// valid quote
	w = doJSON(t, srv, "PUT", path, map[string]any{"status": "quoted", "quotePrice": 25.0, "pickupEta": 15}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("quote status = %d body = %s", w.Code, w.Body.String())
	}
	var quoted struct {
		Ride struct {
			Status     string   `json:"status"`
			QuotePrice *float64 `json:"quote_price"`
		} `json:"ride"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &quoted); err != nil {
		t.Fatal(err)
	}
	if quoted.Ride.Status != "quoted" || quoted.Ride.QuotePrice == nil || *quoted.Ride.QuotePrice != 25 {
		t.Fatalf("quoted = %+v", quoted)
	}

	// missing ride
	w = doJSON(t, srv, "PUT", "/api/v1/rides/999/status", map[string]any{"status": "confirmed"}, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing ride status = %d", w.Code)
	}
}

func TestAdminTokenGuard(t *testing.T) {
	srv := newTestServer("secret")

	w := doJSON(t, srv, "GET", "/api/v1/rides", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", w.Code)
	}

	w = doJSON(t, srv, "GET", "/api/v1/rides", nil, map[string]string{"X-Admin-Token": "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("with token status = %d", w.Code)
	}

	// public submission stays open
	w = postJSON(t, srv, "/api/v1/rides", map[string]any{
		"name": "A", "phone": "9045550000", "pickup_location": "x", "dropoff_location": "y",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("public submit status = %d body = %s", w.Code, w.Body.String())
	}
}
