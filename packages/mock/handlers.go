package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/bookcheck/packages/books"
)

type clientKey struct{}

func (s *Server) authorized(next HandlerFunc) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "Missing Authorization header.")
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid bearer token.")
			return
		}
		c, ok := s.store.client(strings.TrimSpace(token))
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid bearer token.")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), clientKey{}, c)), params)
	}
}

func clientFrom(r *http.Request) *apiClient {
	c, _ := r.Context().Value(clientKey{}).(*apiClient)
	return c
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	writeJSON(w, http.StatusOK, books.Status{Status: "OK"})
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	q := r.URL.Query()
	kind := q.Get("type")
	if kind != "" && kind != "fiction" && kind != "non-fiction" {
		writeError(w, http.StatusBadRequest, "Invalid value for query parameter 'type'. Must be one of: fiction, non-fiction.")
		return
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 20 {
			writeError(w, http.StatusBadRequest, "Invalid value for query parameter 'limit'. Must be between 1 and 20.")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.store.listBooks(kind, limit))
}

func (s *Server) handleGetBook(w http.ResponseWriter, _ *http.Request, params map[string]string) {
	id, err := strconv.Atoi(params["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No book with id %s", params["id"]))
		return
	}
	b, ok := s.store.book(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No book with id %d", id))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req books.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing client name.")
		return
	}
	if strings.TrimSpace(req.ClientName) == "" {
		writeError(w, http.StatusBadRequest, "Invalid or missing client name.")
		return
	}
	if !strings.Contains(req.ClientEmail, "@") {
		writeError(w, http.StatusBadRequest, "Invalid or missing client email.")
		return
	}
	token, ok := s.store.register(req.ClientName, req.ClientEmail)
	if !ok {
		writeError(w, http.StatusConflict, "API client already registered. Try a different email.")
		return
	}
	writeJSON(w, http.StatusCreated, books.TokenResponse{AccessToken: token})
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req struct {
		BookID       *int   `json:"bookId"`
		CustomerName string `json:"customerName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BookID == nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing bookId.")
		return
	}
	b, ok := s.store.book(*req.BookID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid or missing bookId.")
		return
	}
	if !b.Available || b.CurrentStock == 0 {
		writeError(w, http.StatusBadRequest, "This book is not in stock. Try again later.")
		return
	}
	o := s.store.createOrder(clientFrom(r), b.ID, req.CustomerName)
	writeJSON(w, http.StatusCreated, books.OrderCreated{Created: true, OrderID: o.ID})
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	writeJSON(w, http.StatusOK, s.store.listOrders(clientFrom(r)))
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request, params map[string]string) {
	o, ok := s.store.order(clientFrom(r), params["id"])
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No order with id %s.", params["id"]))
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var req books.UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if !s.store.renameOrder(clientFrom(r), params["id"], req.CustomerName) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No order with id %s.", params["id"]))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if !s.store.deleteOrder(clientFrom(r), params["id"]) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No order with id %s.", params["id"]))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
