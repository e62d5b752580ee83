package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"butchery-pos-api/internal/models"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	}, logger)
	return client, server
}

func TestClient_CreateOrder(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody createOrderRequest

	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(createResponse{ID: "srv_42"})
	}))

	order := *models.NewOrder("jane@butchery.local")
	serverID, err := client.CreateOrder(context.Background(), order, "off_abc_1")
	if err != nil {
		t.Fatalf("CreateOrder() failed: %v", err)
	}

	if serverID != "srv_42" {
		t.Errorf("CreateOrder() = %s, want srv_42", serverID)
	}
	if gotPath != "POST /v1/orders" {
		t.Errorf("Request = %s, want POST /v1/orders", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %s, want Bearer test-key", gotAuth)
	}
	if gotBody.OfflineID != "off_abc_1" {
		t.Errorf("Offline ID in payload = %s, want off_abc_1", gotBody.OfflineID)
	}
}

func TestClient_ServerErrorIsConnectivity(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}))

	_, err := client.CreateOrder(context.Background(), *models.NewOrder("jane"), "off_1")
	if err == nil {
		t.Fatal("CreateOrder() should fail on a 503")
	}
	if !IsConnectivity(err) {
		t.Errorf("A 5xx response should classify as connectivity, got: %v", err)
	}
	if IsSemantic(err) {
		t.Error("A 5xx response should not classify as semantic")
	}
}

func TestClient_ClientErrorIsSemantic(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorBody{Message: "order total mismatch"})
	}))

	_, err := client.CreateOrder(context.Background(), *models.NewOrder("jane"), "off_1")
	if err == nil {
		t.Fatal("CreateOrder() should fail on a 400")
	}
	if IsConnectivity(err) {
		t.Errorf("A 4xx response should not classify as connectivity, got: %v", err)
	}
	if !IsSemantic(err) {
		t.Error("A 4xx response should classify as semantic")
	}
}

func TestClient_ReconciliationByDate_NotFound(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))

	_, err := client.ReconciliationByDate(context.Background(), "2026-08-28")
	if !IsNotFound(err) {
		t.Errorf("A 404 should classify as not found, got: %v", err)
	}
}

func TestClient_CreateReconciliation_Conflict(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "day already closed", http.StatusConflict)
	}))

	record := models.NewReconciliationRecord("2026-08-28", "manager@butchery.local")
	_, err := client.CreateReconciliation(context.Background(), *record)
	if !IsConflict(err) {
		t.Errorf("A 409 should classify as conflict, got: %v", err)
	}
	if IsConnectivity(err) {
		t.Error("A 409 should not classify as connectivity")
	}
}

func TestClient_TimeoutIsConnectivity(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	client.httpClient.Timeout = 50 * time.Millisecond

	err := client.Ping(context.Background())
	if err == nil {
		t.Fatal("Ping() should time out")
	}
	if !IsConnectivity(err) {
		t.Errorf("A timeout should classify as connectivity, got: %v", err)
	}
}

func TestClient_ConnectionRefusedIsConnectivity(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	// Grab a URL that is guaranteed to refuse connections.
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(ClientConfig{BaseURL: url, Timeout: time.Second}, logger)
	err := client.Ping(context.Background())
	if err == nil {
		t.Fatal("Ping() against a closed server should fail")
	}
	if !IsConnectivity(err) {
		t.Errorf("A refused connection should classify as connectivity, got: %v", err)
	}
}

func TestClient_OrdersByDay(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("date") != "2026-08-28" {
			http.Error(w, "missing date", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]models.Order{
			{ID: "o1", Total: 500, PaymentMethod: models.PaymentMethodCash},
			{ID: "o2", Total: 1200, PaymentMethod: models.PaymentMethodMpesa},
		})
	}))

	orders, err := client.OrdersByDay(context.Background(), "2026-08-28")
	if err != nil {
		t.Fatalf("OrdersByDay() failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("OrdersByDay() returned %d orders, want 2", len(orders))
	}
	if orders[0].Total != 500 || orders[1].PaymentMethod != models.PaymentMethodMpesa {
		t.Error("OrdersByDay() should decode order fields")
	}
}
