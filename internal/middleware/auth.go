package middleware

import (
	"context"
	"strings"

	"github.com/steadyhabits/backend/pkg/errorx"
	"github.com/steadyhabits/backend/pkg/router"
	"github.com/steadyhabits/backend/pkg/xcontext"
)

// WithAuth verifies the access token and records the caller in the context.
// The token comes from the Authorization header, or from the session cookie
// for browser clients.
func WithAuth() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		token := bearerToken(ctx)
		if token == "" {
			token = sessionToken(ctx)
		}

		if token == "" {
			return ctx, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		info, err := xcontext.TokenEngine(ctx).Verify(token)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
			return ctx, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		return xcontext.WithRequestUserID(ctx, info.ID), nil
	}
}

func bearerToken(ctx context.Context) string {
	auth := xcontext.HTTPRequest(ctx).Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return parts[1]
}

func sessionToken(ctx context.Context) string {
	cfg := xcontext.Configs(ctx)
	session, err := xcontext.SessionStore(ctx).Get(xcontext.HTTPRequest(ctx), cfg.Session.Name)
	if err != nil {
		return ""
	}

	token, ok := session.Values[cfg.Auth.AccessToken.Name].(string)
	if !ok {
		return ""
	}

	return token
}
