package mock

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/bookcheck/packages/books"
	"github.com/google/uuid"
)

// DefaultBooks is the catalogue served by the demo API.
var DefaultBooks = []books.Book{
	{ID: 1, Name: "The Russian", Author: "James Patterson and James O. Born", Type: "fiction", Price: 12, CurrentStock: 12, Available: true},
	{ID: 2, Name: "Just as I Am", Author: "Cicely Tyson", Type: "non-fiction", Price: 20, CurrentStock: 0, Available: false},
	{ID: 3, Name: "The Vanishing Half", Author: "Brit Bennett", Type: "fiction", Price: 16, CurrentStock: 987, Available: true},
	{ID: 4, Name: "The Midnight Library", Author: "Matt Haig", Type: "fiction", Price: 15, CurrentStock: 87, Available: true},
	{ID: 5, Name: "Untamed", Author: "Glennon Doyle", Type: "non-fiction", Price: 24, CurrentStock: 24, Available: true},
	{ID: 6, Name: "Viscount Who Loved Me", Author: "Julia Quinn", Type: "fiction", Price: 20, CurrentStock: 16, Available: true},
}

type apiClient struct {
	id    string
	name  string
	email string
}

// store is the in-memory state behind the mock API.
type store struct {
	mu      sync.Mutex
	books   map[int]books.Book
	clients map[string]*apiClient // by token
	emails  map[string]bool
	orders  map[string]*books.Order
	now     func() time.Time
}

func newStore(catalogue []books.Book) *store {
	s := &store{
		books:   make(map[int]books.Book, len(catalogue)),
		clients: make(map[string]*apiClient),
		emails:  make(map[string]bool),
		orders:  make(map[string]*books.Order),
		now:     time.Now,
	}
	for _, b := range catalogue {
		s.books[b.ID] = b
	}
	return s
}

func newID(n int) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[:n]
}

// register returns a token, or ok=false when the email is taken.
func (s *store) register(name, email string) (token string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(email)
	if s.emails[key] {
		return "", false
	}
	s.emails[key] = true
	token = strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	s.clients[token] = &apiClient{id: newID(32), name: name, email: email}
	return token, true
}

func (s *store) client(token string) (*apiClient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[token]
	return c, ok
}

func (s *store) book(id int) (books.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	return b, ok
}

func (s *store) listBooks(kind string, limit int) []books.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]books.Book, 0, len(s.books))
	for _, b := range s.books {
		if kind != "" && b.Type != kind {
			continue
		}
		out = append(out, books.Book{ID: b.ID, Name: b.Name, Type: b.Type, Available: b.Available})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *store) createOrder(owner *apiClient, bookID int, customerName string) *books.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := &books.Order{
		ID:           newID(21),
		BookID:       bookID,
		CustomerName: customerName,
		CreatedBy:    owner.id,
		Quantity:     1,
		Timestamp:    s.now().UnixMilli(),
	}
	s.orders[o.ID] = o
	return o
}

// order returns a copy of an order visible to owner.
func (s *store) order(owner *apiClient, id string) (books.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.CreatedBy != owner.id {
		return books.Order{}, false
	}
	return *o, true
}

func (s *store) listOrders(owner *apiClient) []books.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]books.Order, 0)
	for _, o := range s.orders {
		if o.CreatedBy == owner.id {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

func (s *store) renameOrder(owner *apiClient, id, customerName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.CreatedBy != owner.id {
		return false
	}
	o.CustomerName = customerName
	return true
}

func (s *store) deleteOrder(owner *apiClient, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.CreatedBy != owner.id {
		return false
	}
	delete(s.orders, id)
	return true
}
