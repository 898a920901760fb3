package request

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/minis3/pkg/logger"
)

type operationIDKey struct{}

// OperationIDExtractor adds the operation id to log records.
var OperationIDExtractor = logger.StringExtractor("op_id", operationIDKey{})

// WithOperationID stores id in ctx. Calls made with such a context reuse it
// instead of generating a fresh one, which groups the requests of a
// multi-step operation (a multipart upload, a paginated listing) in logs.
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, operationIDKey{}, id)
}

// OperationID returns the id stored in ctx, if any.
func OperationID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(operationIDKey{}).(string)
	return id, ok && id != ""
}

// ensureOperationID returns ctx carrying an operation id, generating one
// when absent.
func ensureOperationID(ctx context.Context) (context.Context, string) {
	if id, ok := OperationID(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return WithOperationID(ctx, id), id
}
