package router

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/steadyhabits/backend/config"
	"github.com/steadyhabits/backend/internal/model"
	"github.com/steadyhabits/backend/pkg/authenticator"
	"github.com/steadyhabits/backend/pkg/logger"
	"github.com/steadyhabits/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// HandlerFunc is the signature of a domain operation exposed over HTTP. The
// request object is bound from the query string (GET) or the JSON body (POST).
type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It can replace the context passed
// to the handler, or abort the request by returning an error.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response has been decided. It can read the
// response or error via xcontext but cannot change them.
type CloserFunc func(ctx context.Context)

type Router struct {
	mux *http.ServeMux

	db           *gorm.DB
	cfg          config.Configs
	logger       logger.Logger
	tokenEngine  authenticator.TokenEngine[model.AccessToken]
	sessionStore sessions.Store

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

func New(db *gorm.DB, cfg config.Configs, logger logger.Logger) *Router {
	return &Router{
		mux:          http.NewServeMux(),
		db:           db,
		cfg:          cfg,
		logger:       logger,
		tokenEngine:  authenticator.NewTokenEngine[model.AccessToken](cfg.Auth.TokenSecret),
		sessionStore: sessions.NewCookieStore([]byte(cfg.Session.Secret)),
	}
}

// Branch creates a router sharing the same mux but with independent
// middleware chains. Routes registered on the branch inherit the middlewares
// the branch had at registration time.
func (r *Router) Branch() *Router {
	branch := *r
	branch.befores = append([]MiddlewareFunc{}, r.befores...)
	branch.afters = append([]MiddlewareFunc{}, r.afters...)
	branch.closers = append([]CloserFunc{}, r.closers...)
	return &branch
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	register(r, http.MethodGet, pattern, handler)
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	register(r, http.MethodPost, pattern, handler)
}

func register[Request, Response any](
	r *Router, method, pattern string, handler HandlerFunc[Request, Response],
) {
	befores := append([]MiddlewareFunc{}, r.befores...)
	afters := append([]MiddlewareFunc{}, r.afters...)
	closers := append([]CloserFunc{}, r.closers...)

	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx := req.Context()
		ctx = xcontext.WithDB(ctx, r.db)
		ctx = xcontext.WithConfigs(ctx, r.cfg)
		ctx = xcontext.WithLogger(ctx, r.logger)
		ctx = xcontext.WithTokenEngine(ctx, r.tokenEngine)
		ctx = xcontext.WithSessionStore(ctx, r.sessionStore)
		ctx = xcontext.WithHTTPRequest(ctx, req)
		ctx = xcontext.WithHTTPWriter(ctx, w)

		var err error
		for _, m := range befores {
			// The incoming ctx survives a middleware error, so the error
			// response and the closers still have a context to work with.
			newCtx, mErr := m(ctx)
			if mErr != nil {
				err = mErr
				ctx = xcontext.WithError(ctx, err)
				break
			}

			ctx = newCtx
		}

		if err == nil {
			var request Request
			if err = bindRequest(req, method, &request); err != nil {
				ctx = xcontext.WithError(ctx, err)
			} else {
				resp, handlerErr := handler(ctx, &request)
				if handlerErr != nil {
					ctx = xcontext.WithError(ctx, handlerErr)
					err = handlerErr
				} else {
					ctx = xcontext.WithResponse(ctx, resp)
				}
			}
		}

		for _, m := range afters {
			if afterCtx, afterErr := m(ctx); afterErr == nil {
				ctx = afterCtx
			}
		}

		writeResponse(w, ctx)

		for _, closer := range closers {
			closer(ctx)
		}
	})
}
