package books

// Wire types of the Simple Books API.

type RegisterRequest struct {
	ClientName  string `json:"clientName"`
	ClientEmail string `json:"clientEmail"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type CreateOrderRequest struct {
	BookID       int    `json:"bookId"`
	CustomerName string `json:"customerName"`
}

type OrderCreated struct {
	Created bool   `json:"created"`
	OrderID string `json:"orderId"`
}

// Order is a placed order. Timestamp is milliseconds since the epoch.
type Order struct {
	ID           string `json:"id"`
	BookID       int    `json:"bookId"`
	CustomerName string `json:"customerName"`
	CreatedBy    string `json:"createdBy,omitempty"`
	Quantity     int    `json:"quantity"`
	Timestamp    int64  `json:"timestamp"`
}

type UpdateOrderRequest struct {
	CustomerName string `json:"customerName"`
}

type DeleteOrderRequest struct {
	BookID       int    `json:"bookId"`
	CustomerName string `json:"customerName"`
}

type Book struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Author       string `json:"author,omitempty"`
	Type         string `json:"type"`
	Price        int    `json:"price,omitempty"`
	CurrentStock int    `json:"current-stock,omitempty"`
	Available    bool   `json:"available"`
}

type Status struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every 4xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}
