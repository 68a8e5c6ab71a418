package catalog

import (
	"fmt"
)

// Op names a mutating catalog operation.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// FetchError is returned when the product list cannot be fetched. Status is
// zero when no HTTP response was received.
type FetchError struct {
	Status int
	Body   string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch products: %v", e.Err)
	}
	return fmt.Sprintf("fetch products: status %d: %s", e.Status, e.Body)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Message is the text shown to the user in place of the product table.
func (e *FetchError) Message() string {
	return "could not fetch products"
}

// MutationError is returned when a create, update or delete call fails.
type MutationError struct {
	Op     Op
	Status int
	Body   string
	Err    error
}

func (e *MutationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message(), e.Err)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Message(), e.Status, e.Body)
}

func (e *MutationError) Unwrap() error { return e.Err }

// Message is the operation specific text shown to the user in a toast.
func (e *MutationError) Message() string {
	return fmt.Sprintf("failed to %s product", e.Op)
}
