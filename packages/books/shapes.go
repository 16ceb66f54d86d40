package books

import "github.com/abdul-hamid-achik/bookcheck/packages/shape"

var (
	TokenShape = shape.New("token",
		shape.Required("accessToken", shape.String),
	)

	OrderCreatedShape = shape.New("order created",
		shape.Required("created", shape.Boolean),
		shape.Required("orderId", shape.String),
	)

	OrderShape = shape.New("order",
		shape.Required("id", shape.String),
		shape.Required("bookId", shape.Integer),
		shape.Required("customerName", shape.String),
		shape.Required("quantity", shape.Integer),
		shape.Required("timestamp", shape.Integer),
	)

	StatusShape = shape.New("status",
		shape.Required("status", shape.String),
	)

	BookShape = shape.New("book",
		shape.Required("id", shape.Integer),
		shape.Required("name", shape.String),
		shape.Required("type", shape.String),
		shape.Required("available", shape.Boolean),
	)
)
