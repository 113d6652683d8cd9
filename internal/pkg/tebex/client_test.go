package tebex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(srv *httptest.Server) *Client {
	return &Client{
		ProjectID:  "proj-1",
		PrivateKey: "key-1",
		BaseURL:    srv.URL,
		HTTPClient: &http.Client{Timeout: 2 * time.Second},
	}
}

func TestGetRecurringPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/recurring-payments/tbx-rec-7" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "proj-1" || pass != "key-1" {
			t.Fatalf("missing or wrong basic auth")
		}
		json.NewEncoder(w).Encode(RecurringPayment{
			Reference:       "tbx-rec-7",
			Status:          RecurringPaymentStatus{ID: StatusActive, Description: "Active"},
			NextPaymentDate: "2026-10-01T00:00:00Z",
		})
	}))
	defer srv.Close()

	rp, err := testClient(srv).GetRecurringPayment(context.Background(), "tbx-rec-7")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if rp.Reference != "tbx-rec-7" || rp.Status.ID != StatusActive {
		t.Fatalf("unexpected recurring payment %+v", rp)
	}
}

func TestGetPaymentUsesTxnLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/payments/tbx-1001" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("type") != "txn_id" {
			t.Fatalf("expected txn_id lookup, got query %q", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(Payment{TransactionID: "tbx-1001"})
	}))
	defer srv.Close()

	p, err := testClient(srv).GetPayment(context.Background(), "tbx-1001")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if p.TransactionID != "tbx-1001" {
		t.Fatalf("unexpected payment %+v", p)
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"title":"Not Found"}`))
	}))
	defer srv.Close()

	if _, err := testClient(srv).GetRecurringPayment(context.Background(), "missing"); err == nil {
		t.Fatalf("expected an error for a 404 response")
	}
}

func TestClientRequiresCredentials(t *testing.T) {
	c := &Client{HTTPClient: http.DefaultClient, BaseURL: "http://localhost:0"}
	if _, err := c.GetRecurringPayment(context.Background(), "ref"); err == nil {
		t.Fatalf("expected an error without credentials")
	}
	if _, err := testClient(httptest.NewUnstartedServer(nil)).GetRecurringPayment(context.Background(), ""); err == nil {
		t.Fatalf("expected an error for an empty reference")
	}
}

func TestCreateBasketCarriesUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/baskets" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		custom, _ := payload["custom"].(map[string]interface{})
		if custom["userid"] != "42" {
			t.Fatalf("basket payload is missing the user id: %+v", payload)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"ident": "bkt-1",
				"links": map[string]string{"checkout": "https://pay.example/bkt-1"},
			},
		})
	}))
	defer srv.Close()

	basket, err := testClient(srv).CreateBasket(context.Background(), "42", "https://app/complete", "https://app/cancel")
	if err != nil {
		t.Fatalf("create basket: %v", err)
	}
	if basket.Ident != "bkt-1" || basket.Links.Checkout == "" {
		t.Fatalf("unexpected basket %+v", basket)
	}
}

func TestAddPackage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/baskets/bkt-1/packages" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["package_id"] != float64(55) {
			t.Fatalf("unexpected package id %v", payload["package_id"])
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	if err := testClient(srv).AddPackage(context.Background(), "bkt-1", 55, nil); err != nil {
		t.Fatalf("add package: %v", err)
	}
}
