package books

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/abdul-hamid-achik/bookcheck/packages/capture"
	"github.com/abdul-hamid-achik/bookcheck/packages/core/env"
	"github.com/abdul-hamid-achik/bookcheck/packages/core/runner"
	"github.com/abdul-hamid-achik/bookcheck/packages/fake"
	bchttp "github.com/abdul-hamid-achik/bookcheck/packages/http"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the public demo deployment.
const DefaultBaseURL = "https://simple-books-api.click"

// DefaultBookID is a book that is normally in stock.
const DefaultBookID = 1

// Context keys threaded through the order lifecycle.
const (
	KeyClientName      = "client_name"
	KeyClientEmail     = "client_email"
	KeyAccessToken     = "access_token"
	KeyOrderID         = "order_id"
	KeyRenamedCustomer = "renamed_customer"
	KeyBookID          = "book_id"
	KeyCustomerName    = "customer_name"
)

// Step names in lifecycle order.
const (
	StepStatus          = "Status"
	StepRegister        = "Register"
	StepCreateOrder     = "CreateOrder"
	StepGetOrder        = "GetOrder"
	StepRenameCustomer  = "RenameCustomer"
	StepGetRenamedOrder = "GetRenamedOrder"
	StepDeleteOrder     = "DeleteOrder"
	StepConfirmDeleted  = "ConfirmDeleted"
)

type Options struct {
	BaseURL   string
	Client    *bchttp.Client
	Generator *fake.Generator
	BookID    int

	// Fixed identities; generated when empty.
	ClientName      string
	ClientEmail     string
	NewCustomerName string

	// DeleteWithBody sends the last observed {bookId, customerName} with the
	// DELETE call. The API does not need it.
	DeleteWithBody bool
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Client == nil {
		o.Client = bchttp.NewClient()
	}
	if o.Generator == nil {
		o.Generator = fake.New(0)
	}
	if o.BookID == 0 {
		o.BookID = DefaultBookID
	}
	if o.ClientName == "" {
		o.ClientName = o.Generator.Name()
	}
	if o.ClientEmail == "" {
		o.ClientEmail = o.Generator.Email(o.ClientName)
	}
	if o.NewCustomerName == "" {
		o.NewCustomerName = o.Generator.Name()
		for o.NewCustomerName == o.ClientName {
			o.NewCustomerName = o.Generator.Name()
		}
	}
	return o
}

func (o Options) url(path string) string {
	return o.BaseURL + path
}

// StatusCheck is an optional preflight confirming the API is up.
func StatusCheck(opts Options) *runner.Step {
	opts = opts.withDefaults()
	rq := runner.Request{Client: opts.Client, Method: http.MethodGet, URL: opts.url("/status")}
	return &runner.Step{
		Name:           StepStatus,
		Action:         rq.Action(),
		ExpectedStatus: http.StatusOK,
		Shape:          StatusShape,
	}
}

// OrderLifecycle builds the register → create → read → rename → read →
// delete → confirm chain. Client and rename identities are fixed when the
// chain is built, so one chain is one run.
func OrderLifecycle(opts Options) []*runner.Step {
	opts = opts.withDefaults()
	ordersURL := opts.url("/orders")
	orderURL := opts.url("/orders/{{" + KeyOrderID + "}}")

	register := runner.Request{
		Client: opts.Client,
		Method: http.MethodPost,
		URL:    opts.url("/api-clients"),
		Body: func(*env.Context) (any, error) {
			return RegisterRequest{ClientName: opts.ClientName, ClientEmail: opts.ClientEmail}, nil
		},
	}

	create := runner.Request{
		Client: opts.Client,
		Method: http.MethodPost,
		URL:    ordersURL,
		Bearer: KeyAccessToken,
		Body: func(vars *env.Context) (any, error) {
			name, err := vars.String(KeyClientName)
			if err != nil {
				return nil, err
			}
			return CreateOrderRequest{BookID: opts.BookID, CustomerName: name}, nil
		},
	}

	get := runner.Request{Client: opts.Client, Method: http.MethodGet, URL: orderURL, Bearer: KeyAccessToken}

	rename := runner.Request{
		Client: opts.Client,
		Method: http.MethodPatch,
		URL:    orderURL,
		Bearer: KeyAccessToken,
		Body: func(*env.Context) (any, error) {
			return UpdateOrderRequest{CustomerName: opts.NewCustomerName}, nil
		},
	}

	del := runner.Request{Client: opts.Client, Method: http.MethodDelete, URL: orderURL, Bearer: KeyAccessToken}
	deleteReads := del.Reads()
	if opts.DeleteWithBody {
		del.Body = func(vars *env.Context) (any, error) {
			bookID, err := vars.Int(KeyBookID)
			if err != nil {
				return nil, err
			}
			name, err := vars.String(KeyCustomerName)
			if err != nil {
				return nil, err
			}
			return DeleteOrderRequest{BookID: bookID, CustomerName: name}, nil
		}
		deleteReads = append(deleteReads, KeyBookID, KeyCustomerName)
	}

	return []*runner.Step{
		{
			Name:           StepRegister,
			Writes:         []string{KeyClientName, KeyClientEmail},
			Action:         register.Action(),
			ExpectedStatus: http.StatusCreated,
			Shape:          TokenShape,
			Captures:       []capture.Capture{{Key: KeyAccessToken, Path: "accessToken"}},
			Check: func(resp *bchttp.Response, _ *env.Context) error {
				if gjson.GetBytes(resp.Body, "accessToken").String() == "" {
					return fmt.Errorf("accessToken is empty")
				}
				return nil
			},
			Extract: func(*bchttp.Response, *env.Context) (map[string]any, error) {
				return map[string]any{
					KeyClientName:  opts.ClientName,
					KeyClientEmail: opts.ClientEmail,
				}, nil
			},
		},
		{
			Name:           StepCreateOrder,
			Reads:          append(create.Reads(), KeyClientName),
			Action:         create.Action(),
			ExpectedStatus: http.StatusCreated,
			Shape:          OrderCreatedShape,
			Captures:       []capture.Capture{{Key: KeyOrderID, Path: "orderId"}},
			Check: func(resp *bchttp.Response, _ *env.Context) error {
				if !gjson.GetBytes(resp.Body, "created").Bool() {
					return fmt.Errorf("created: expected true")
				}
				if gjson.GetBytes(resp.Body, "orderId").String() == "" {
					return fmt.Errorf("orderId is empty")
				}
				return nil
			},
		},
		{
			Name:           StepGetOrder,
			Reads:          append(get.Reads(), KeyClientName),
			Action:         get.Action(),
			ExpectedStatus: http.StatusOK,
			Shape:          OrderShape,
			Check: func(resp *bchttp.Response, vars *env.Context) error {
				name, err := vars.String(KeyClientName)
				if err != nil {
					return err
				}
				return checkOrder(resp, vars, opts.BookID, name)
			},
			Attachments: func(resp *bchttp.Response) []runner.Attachment {
				return []runner.Attachment{{
					Name:        "created customer name",
					Content:     []byte(gjson.GetBytes(resp.Body, "customerName").String()),
					ContentType: runner.ContentTypeText,
				}}
			},
		},
		{
			Name:           StepRenameCustomer,
			Reads:          rename.Reads(),
			Writes:         []string{KeyRenamedCustomer},
			Action:         rename.Action(),
			ExpectedStatus: http.StatusNoContent,
			Extract: func(*bchttp.Response, *env.Context) (map[string]any, error) {
				return map[string]any{KeyRenamedCustomer: opts.NewCustomerName}, nil
			},
		},
		{
			Name:           StepGetRenamedOrder,
			Reads:          append(get.Reads(), KeyRenamedCustomer),
			Writes:         []string{KeyBookID, KeyCustomerName},
			Action:         get.Action(),
			ExpectedStatus: http.StatusOK,
			Shape:          OrderShape,
			Check: func(resp *bchttp.Response, vars *env.Context) error {
				renamed, err := vars.String(KeyRenamedCustomer)
				if err != nil {
					return err
				}
				return checkOrder(resp, vars, opts.BookID, renamed)
			},
			Extract: func(resp *bchttp.Response, _ *env.Context) (map[string]any, error) {
				return map[string]any{
					KeyBookID:       int(gjson.GetBytes(resp.Body, "bookId").Int()),
					KeyCustomerName: gjson.GetBytes(resp.Body, "customerName").String(),
				}, nil
			},
		},
		{
			Name:           StepDeleteOrder,
			Reads:          deleteReads,
			Action:         del.Action(),
			ExpectedStatus: http.StatusNoContent,
		},
		{
			Name:           StepConfirmDeleted,
			Reads:          get.Reads(),
			Action:         get.Action(),
			ExpectedStatus: http.StatusNotFound,
		},
	}
}

// checkOrder asserts the order still carries the id it was created with, the
// requested book and the expected customer name.
func checkOrder(resp *bchttp.Response, vars *env.Context, bookID int, customerName string) error {
	orderID, err := vars.String(KeyOrderID)
	if err != nil {
		return err
	}

	body := gjson.ParseBytes(resp.Body)
	if got := body.Get("id").String(); got != orderID {
		return fmt.Errorf("id: expected %q, got %q", orderID, got)
	}
	if got := int(body.Get("bookId").Int()); got != bookID {
		return fmt.Errorf("bookId: expected %d, got %d", bookID, got)
	}
	if got := body.Get("customerName").String(); got != customerName {
		return fmt.Errorf("customerName: expected %q, got %q", customerName, got)
	}
	return nil
}

// StepNames lists the lifecycle step names in execution order.
func StepNames(steps []*runner.Step) []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	return names
}
