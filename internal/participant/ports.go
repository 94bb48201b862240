package participant

import "context"

// TransactionManager runs fn inside a storage transaction. Participants use
// it to keep a step's local writes atomic; it is an application-layer port,
// not a domain concern.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
