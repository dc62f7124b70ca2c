package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/steadyhabits/backend/config"
	"github.com/steadyhabits/backend/pkg/errorx"
	"github.com/steadyhabits/backend/pkg/logger"
	"github.com/steadyhabits/backend/pkg/router"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *router.Router {
	cfg := config.Configs{
		Auth:    config.AuthConfigs{TokenSecret: "secret"},
		Session: config.SessionConfigs{Secret: "secret", Name: "session"},
	}

	return router.New(nil, cfg, logger.NewLogger(logger.SILENCE))
}

type emptyRequest struct{}
type emptyResponse struct{}

func Test_Router_BeforeMiddlewareError(t *testing.T) {
	r := newTestRouter()

	r.Before(func(ctx context.Context) (context.Context, error) {
		return ctx, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	})

	handlerCalled := false
	router.GET(r, "/getSomething", func(ctx context.Context, req *emptyRequest) (*emptyResponse, error) {
		handlerCalled = true
		return &emptyResponse{}, nil
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/getSomething", nil)

	require.NotPanics(t, func() { r.Handler().ServeHTTP(w, req) })
	require.False(t, handlerCalled)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body struct {
		Error struct {
			Code    errorx.Code `json:"code"`
			Message string      `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, errorx.Unauthenticated, body.Error.Code)
	require.Equal(t, "You need to authenticate before", body.Error.Message)
}

func Test_Router_BeforeMiddlewareReplacesContext(t *testing.T) {
	r := newTestRouter()

	type markerKey struct{}
	r.Before(func(ctx context.Context) (context.Context, error) {
		return context.WithValue(ctx, markerKey{}, "set"), nil
	})

	var seen any
	router.GET(r, "/getSomething", func(ctx context.Context, req *emptyRequest) (*emptyResponse, error) {
		seen = ctx.Value(markerKey{})
		return &emptyResponse{}, nil
	})

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/getSomething", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "set", seen)
}
