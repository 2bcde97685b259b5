package order

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"footvibe_back_end/internal/models"
	"footvibe_back_end/internal/orders"
	"footvibe_back_end/internal/payment"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "s3cr3t"

type memStore struct {
	mu       sync.Mutex
	byRzpID  map[string]*models.Order
	products map[primitive.ObjectID]models.Product
}

func (s *memStore) Insert(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *o
	s.byRzpID[o.RazorpayOrderID] = &clone
	return nil
}

func (s *memStore) MarkPaid(_ context.Context, rzpID, paymentID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byRzpID[rzpID]
	if !ok || o.Status != models.OrderStatusCreated {
		return nil, orders.ErrNotApplied
	}
	o.Status = models.OrderStatusPaid
	o.PaymentID = paymentID
	clone := *o
	return &clone, nil
}

func (s *memStore) MarkFailed(_ context.Context, rzpID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byRzpID[rzpID]
	if !ok || o.Status != models.OrderStatusCreated {
		return nil, orders.ErrNotApplied
	}
	o.Status = models.OrderStatusFailed
	clone := *o
	return &clone, nil
}

func (s *memStore) FindByRazorpayID(_ context.Context, rzpID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byRzpID[rzpID]
	if !ok {
		return nil, nil
	}
	clone := *o
	return &clone, nil
}

func (s *memStore) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Order{}
	for _, o := range s.byRzpID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	// Contrat Store : plus récentes d'abord
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) FindProducts(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[primitive.ObjectID]models.Product)
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeGateway struct {
	mu    sync.Mutex
	calls int
}

func (g *fakeGateway) CreateOrder(int64, string, string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return fmt.Sprintf("order_fake_%d", g.calls), nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return payment.VerifySignature(orderID, paymentID, signature, testSecret)
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func setup(t *testing.T) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &memStore{
		byRzpID:  make(map[string]*models.Order),
		products: make(map[primitive.ObjectID]models.Product),
	}
	Init(orders.NewService(store, &fakeGateway{}))

	r := gin.New()
	authed := func(c *gin.Context) { c.Set("user_id", "user1"); c.Next() }
	r.POST("/api/orders", authed, CreateOrder)
	r.POST("/api/orders/verify", VerifyPayment)
	r.POST("/api/orders/webhook", RazorpayWebhook)
	r.GET("/api/orders", authed, GetOrders)
	return r, store
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedProduct(store *memStore, price float64) primitive.ObjectID {
	id := primitive.NewObjectID()
	store.products[id] = models.Product{ID: id, Name: "Air Max 270", Price: price}
	return id
}

func TestCreateOrderEndpoint(t *testing.T) {
	r, store := setup(t)
	pid := seedProduct(store, 204.99)

	w := doJSON(r, http.MethodPost, "/api/orders", gin.H{
		"items": []gin.H{{"product": pid.Hex(), "quantity": 2, "price": 204.99, "size": 42}},
		"total": 409.98,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("attendu 201, reçu %d (%s)", w.Code, w.Body.String())
	}

	var resp struct {
		OrderID string `json:"orderId"`
		Amount  int64  `json:"amount"`
		Key     string `json:"key"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.OrderID != "order_fake_1" || resp.Amount != 40998 || resp.Key != "rzp_test_key" {
		t.Fatalf("réponse inattendue: %+v", resp)
	}
}

func TestCreateOrderRejectsMissingItemsOrTotal(t *testing.T) {
	r, _ := setup(t)

	for _, body := range []gin.H{
		{},
		{"items": []gin.H{}},
		{"items": []gin.H{{"product": primitive.NewObjectID().Hex(), "quantity": 1, "price": 10}}}, // total absent
	} {
		w := doJSON(r, http.MethodPost, "/api/orders", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("attendu 400 pour %v, reçu %d", body, w.Code)
		}
	}
}

func TestVerifyPaymentEndpoint(t *testing.T) {
	r, store := setup(t)
	pid := seedProduct(store, 100)

	w := doJSON(r, http.MethodPost, "/api/orders", gin.H{
		"items": []gin.H{{"product": pid.Hex(), "quantity": 1, "price": 100}},
		"total": 100,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("création: %d", w.Code)
	}

	// Mauvaise signature → 400, aucune mutation
	w = doJSON(r, http.MethodPost, "/api/orders/verify", gin.H{
		"razorpay_order_id":   "order_fake_1",
		"razorpay_payment_id": "pay_x",
		"razorpay_signature":  "deadbeef",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("signature invalide: attendu 400, reçu %d", w.Code)
	}

	// Ordre distant inconnu → 404
	w = doJSON(r, http.MethodPost, "/api/orders/verify", gin.H{
		"razorpay_order_id":   "order_inconnu",
		"razorpay_payment_id": "pay_x",
		"razorpay_signature":  sign("order_inconnu", "pay_x"),
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("ordre inconnu: attendu 404, reçu %d", w.Code)
	}

	// Bonne signature → 200
	w = doJSON(r, http.MethodPost, "/api/orders/verify", gin.H{
		"razorpay_order_id":   "order_fake_1",
		"razorpay_payment_id": "pay_x",
		"razorpay_signature":  sign("order_fake_1", "pay_x"),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("vérification: attendu 200, reçu %d (%s)", w.Code, w.Body.String())
	}

	// Relivraison de la même confirmation → toujours 200
	w = doJSON(r, http.MethodPost, "/api/orders/verify", gin.H{
		"razorpay_order_id":   "order_fake_1",
		"razorpay_payment_id": "pay_x",
		"razorpay_signature":  sign("order_fake_1", "pay_x"),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("relivraison: attendu 200, reçu %d", w.Code)
	}
}

func TestWebhookMarksOrderFailed(t *testing.T) {
	r, store := setup(t)
	pid := seedProduct(store, 100)

	doJSON(r, http.MethodPost, "/api/orders", gin.H{
		"items": []gin.H{{"product": pid.Hex(), "quantity": 1, "price": 100}},
		"total": 100,
	})

	payload := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_x","order_id":"order_fake_1"}}}}`)

	// Signature requise quand le secret est configuré
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec")
	req := httptest.NewRequest(http.MethodPost, "/api/orders/webhook", bytes.NewReader(payload))
	req.Header.Set("X-Razorpay-Signature", "deadbeef")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("signature webhook invalide: attendu 400, reçu %d", w.Code)
	}
	if store.byRzpID["order_fake_1"].Status != models.OrderStatusCreated {
		t.Fatal("une signature webhook invalide ne doit rien muter")
	}

	mac := hmac.New(sha256.New, []byte("whsec"))
	mac.Write(payload)
	req = httptest.NewRequest(http.MethodPost, "/api/orders/webhook", bytes.NewReader(payload))
	req.Header.Set("X-Razorpay-Signature", hex.EncodeToString(mac.Sum(nil)))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("webhook signé: attendu 200, reçu %d (%s)", w.Code, w.Body.String())
	}
	if store.byRzpID["order_fake_1"].Status != models.OrderStatusFailed {
		t.Fatal("payment.failed doit passer la commande en failed")
	}
}

func TestGetOrdersEndpoint(t *testing.T) {
	r, store := setup(t)
	pid := seedProduct(store, 100)

	doJSON(r, http.MethodPost, "/api/orders", gin.H{
		"items": []gin.H{{"product": pid.Hex(), "quantity": 1, "price": 100}},
		"total": 100,
	})

	w := doJSON(r, http.MethodGet, "/api/orders", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("attendu 200, reçu %d", w.Code)
	}

	var list []models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].UserID != "user1" {
		t.Fatalf("historique inattendu: %+v", list)
	}
	if list[0].Items[0].Product == nil || list[0].Items[0].Product.Name != "Air Max 270" {
		t.Fatal("les lignes doivent être enrichies des produits référencés")
	}
}
