package mock

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abdul-hamid-achik/bookcheck/packages/books"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, s *Server, email string) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api-clients", "", books.RegisterRequest{ClientName: "Ada Lovelace", ClientEmail: email})
	require.Equal(t, http.StatusCreated, rec.Code)
	var tok books.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	require.NotEmpty(t, tok.AccessToken)
	return tok.AccessToken
}

func createOrder(t *testing.T, s *Server, token string, bookID int) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/orders", token, books.CreateOrderRequest{BookID: bookID, CustomerName: "Ada Lovelace"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created books.OrderCreated
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Created)
	return created.OrderID
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e books.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e.Error
}

func TestServer_Status(t *testing.T) {
	s := NewServer()

	rec := do(t, s, http.MethodGet, "/status", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK"}`, rec.Body.String())
	assert.Equal(t, 1, s.Hits(http.MethodGet, "/status"))
}

func TestServer_Books(t *testing.T) {
	s := NewServer()

	rec := do(t, s, http.MethodGet, "/books?type=non-fiction", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []books.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	for _, b := range list {
		assert.Equal(t, "non-fiction", b.Type)
	}

	rec = do(t, s, http.MethodGet, "/books?limit=3", "", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 3)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/books?type=poetry", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/books?limit=21", "", nil).Code)

	rec = do(t, s, http.MethodGet, "/books/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var b books.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.Equal(t, 1, b.ID)
	assert.NotEmpty(t, b.Author)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/books/99", "", nil).Code)
}

func TestServer_RegisterValidation(t *testing.T) {
	s := NewServer()

	rec := do(t, s, http.MethodPost, "/api-clients", "", books.RegisterRequest{ClientEmail: "a@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api-clients", "", books.RegisterRequest{ClientName: "Ada"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "email")
}

func TestServer_RegisterTwiceConflicts(t *testing.T) {
	s := NewServer()
	register(t, s, "ada@example.com")

	rec := do(t, s, http.MethodPost, "/api-clients", "", books.RegisterRequest{ClientName: "Ada", ClientEmail: "ADA@example.com"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "API client already registered. Try a different email.", errorMessage(t, rec))
}

func TestServer_DistinctTokens(t *testing.T) {
	s := NewServer()

	a := register(t, s, "a@example.com")
	b := register(t, s, "b@example.com")

	assert.NotEqual(t, a, b)
}

func TestServer_OrdersRequireToken(t *testing.T) {
	s := NewServer()

	rec := do(t, s, http.MethodGet, "/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing Authorization header.", errorMessage(t, rec))

	rec = do(t, s, http.MethodPost, "/orders", "nope", books.CreateOrderRequest{BookID: 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid bearer token.", errorMessage(t, rec))
}

func TestServer_OrderLifecycle(t *testing.T) {
	s := NewServer()
	token := register(t, s, "ada@example.com")
	id := createOrder(t, s, token, 1)

	rec := do(t, s, http.MethodGet, "/orders/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var o books.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, id, o.ID)
	assert.Equal(t, 1, o.BookID)
	assert.Equal(t, "Ada Lovelace", o.CustomerName)
	assert.Equal(t, 1, o.Quantity)
	assert.NotZero(t, o.Timestamp)

	rec = do(t, s, http.MethodPatch, "/orders/"+id, token, books.UpdateOrderRequest{CustomerName: "Grace Hopper"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/orders/"+id, token, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, "Grace Hopper", o.CustomerName)
	assert.Equal(t, 1, o.BookID)

	rec = do(t, s, http.MethodGet, "/orders", token, nil)
	var list []books.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = do(t, s, http.MethodDelete, "/orders/"+id, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/orders/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No order with id "+id+".", errorMessage(t, rec))

	rec = do(t, s, http.MethodPatch, "/orders/"+id, token, books.UpdateOrderRequest{CustomerName: "Katherine Johnson"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No order with id "+id+".", errorMessage(t, rec))

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/orders/"+id, token, nil).Code)
	assert.Equal(t, 3, s.Hits(http.MethodGet, "/orders/{{id}}"))
	assert.Equal(t, 2, s.Hits(http.MethodDelete, "/orders/{{id}}"))
}

func TestServer_OrdersArePrivate(t *testing.T) {
	s := NewServer()
	owner := register(t, s, "owner@example.com")
	other := register(t, s, "other@example.com")
	id := createOrder(t, s, owner, 1)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/orders/"+id, other, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/orders/"+id, other, nil).Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/orders/"+id, owner, nil).Code)
}

func TestServer_CreateOrderValidation(t *testing.T) {
	s := NewServer()
	token := register(t, s, "ada@example.com")

	rec := do(t, s, http.MethodPost, "/orders", token, map[string]string{"customerName": "Ada"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/orders", token, books.CreateOrderRequest{BookID: 99})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/orders", token, books.CreateOrderRequest{BookID: 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "not in stock")
}

func TestServer_WithBooks(t *testing.T) {
	s := NewServer(WithBooks([]books.Book{{ID: 7, Name: "Only", Type: "fiction", CurrentStock: 1, Available: true}}))
	token := register(t, s, "ada@example.com")

	createOrder(t, s, token, 7)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/orders", token, books.CreateOrderRequest{BookID: 1}).Code)
}

func TestServer_FailNext(t *testing.T) {
	s := NewServer()
	s.FailNext(http.MethodGet, "/status", http.StatusServiceUnavailable)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/status", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/status", "", nil).Code)
	assert.Equal(t, 2, s.Hits(http.MethodGet, "/status"))
}

func TestServer_UnknownRoutes(t *testing.T) {
	s := NewServer()

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/nothing", "", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, s, http.MethodPut, "/orders/abc", "", nil).Code)
}
