package server

import (
	"context"
	"strings"

	v1 "dday/api/dday/v1"
	"dday/internal/service"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
)

const userIDHeader = "X-User-Id"

// userScoped lists the operations that act on behalf of a user.
var userScoped = map[string]bool{
	v1.OperationDDayServiceTrackDDay: true,
	v1.OperationDDayServiceListDDays: true,
}

// UserIDMiddleware extracts the X-User-Id header for user-scoped operations
func UserIDMiddleware() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			// Get transport info
			tr, ok := transport.FromServerContext(ctx)
			if !ok {
				return handler(ctx, req)
			}

			if userScoped[tr.Operation()] {
				userID := strings.TrimSpace(tr.RequestHeader().Get(userIDHeader))
				if userID == "" {
					return nil, errors.Unauthorized("UNAUTHORIZED", "missing X-User-Id header")
				}

				// Inject user ID into context
				ctx = service.NewUserContext(ctx, userID)
			}

			return handler(ctx, req)
		}
	}
}
