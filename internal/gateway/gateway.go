package gateway

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound reports that a lookup matched nothing. It is recoverable:
// the conversation reprompts in place instead of aborting the workflow.
var ErrNotFound = errors.New("not found")

// InfrastructureError wraps connectivity/config failures of the datastore
// or the remote API. The cause is logged, never shown to the user.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

// MutationError carries the human-readable reason a mutation was rejected
// downstream. The reason is surfaced verbatim on the confirmation card.
type MutationError struct {
	Reason string
}

func (e *MutationError) Error() string { return e.Reason }

// Order is a row of order_letters as the assistant needs it.
type Order struct {
	ID             int64
	NoSP           string
	CustomerName   string
	ExtendedAmount int64
	Status         string
}

// OrderCreator is the creator snapshot used by the ganti-sales workflow.
type OrderCreator struct {
	OrderID     int64
	NoSP        string
	CreatorID   int64
	CreatorName string
}

type Store struct {
	ID       int64
	Name     string
	Category string
}

type User struct {
	ID    int64
	Name  string
	Email string
}

type Product struct {
	ID           int64
	Brand        string
	Tipe         string
	Ukuran       string
	Pricelist    int64
	EndUserPrice int64
}

// ProductPage is one page of product search results.
type ProductPage struct {
	Products []Product
	HasMore  bool
}

// Gateway is the single boundary the conversation engine talks to: the
// Postgres datastore and the Alita order-management API, uniformly.
//
// Lookups return ErrNotFound (or an empty slice for multi-result searches)
// when nothing matches and *InfrastructureError on anything else. Mutations
// return *MutationError when the downstream system rejected the change.
type Gateway interface {
	FindOrder(ctx context.Context, noSP string) (Order, error)
	SearchStores(ctx context.Context, keyword string) ([]Store, error)
	SearchUsers(ctx context.Context, email string) (User, error)
	GetOrderCreator(ctx context.Context, noSP string) (OrderCreator, error)
	SearchProducts(ctx context.Context, keyword string, page int) (ProductPage, error)

	VoidOrder(ctx context.Context, orderID int64, accessToken string) error
	ReassignCreator(ctx context.Context, noSP string, newUserID int64, newUserName string) error
	MoveOrderStore(ctx context.Context, noSP string, storeID int64) error
}
