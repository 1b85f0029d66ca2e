// Package delivery defines the contract every transport entry point
// implements so the application can start them uniformly.
package delivery

import "context"

// Delivery is a long-running server or worker owned by the application
// lifecycle. Serve blocks until the delivery stops or fails.
type Delivery interface {
	Serve(ctx context.Context) error
}
