package db

import "fmt"

// StoreError is an application error embedded in a transport-successful
// response. The HTTP status alone never proves a statement succeeded; every
// per-statement result is inspected and any embedded error surfaces as one
// of these.
type StoreError struct {
	Index   int // position of the failing statement in the request
	Message string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error (statement %d): %s", e.Index, e.Message)
}
