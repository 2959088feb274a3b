package requestdata

import (
	"context"

	"github.com/google/uuid"

	"github.com/formaplus/elearning-backend/internal/types"
)

type requestDataKeyType struct{}

var requestDataKey = requestDataKeyType{}

// RequestData is the authenticated identity carried on the request context
// by the auth middleware.
type RequestData struct {
	UserID    uuid.UUID
	Role      types.Role
	SessionID string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}
