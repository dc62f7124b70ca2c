package xcontext

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/steadyhabits/backend/config"
	"github.com/steadyhabits/backend/internal/model"
	"github.com/steadyhabits/backend/pkg/authenticator"
	"github.com/steadyhabits/backend/pkg/logger"
	"gorm.io/gorm"
)

type (
	configsKey      struct{}
	loggerKey       struct{}
	dbKey           struct{}
	txKey           struct{}
	tokenEngineKey  struct{}
	sessionStoreKey struct{}
	httpRequestKey  struct{}
	httpWriterKey   struct{}
)

func WithConfigs(ctx context.Context, configs config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, configs)
}

func Configs(ctx context.Context) config.Configs {
	return ctx.Value(configsKey{}).(config.Configs)
}

func WithLogger(ctx context.Context, logger logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func Logger(ctx context.Context) logger.Logger {
	return ctx.Value(loggerKey{}).(logger.Logger)
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the database transaction opened by WithDBTransaction if there is
// an unfinished one in the context, otherwise it returns the root gorm.DB.
func DB(ctx context.Context) *gorm.DB {
	if holder, ok := ctx.Value(txKey{}).(*dbTransaction); ok && !holder.finished {
		return holder.tx
	}

	return ctx.Value(dbKey{}).(*gorm.DB)
}

type dbTransaction struct {
	tx       *gorm.DB
	finished bool
}

// HasDBTransaction reports whether an unfinished transaction opened by
// WithDBTransaction is in flight.
func HasDBTransaction(ctx context.Context) bool {
	holder, ok := ctx.Value(txKey{}).(*dbTransaction)
	return ok && !holder.finished
}

// WithDBTransaction begins a database transaction and replaces the returned
// value of DB by that transaction until it is committed or rolled back.
func WithDBTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, &dbTransaction{tx: DB(ctx).Begin()})
}

// WithCommitDBTransaction commits the current transaction if it exists and
// has not finished yet.
func WithCommitDBTransaction(ctx context.Context) {
	if holder, ok := ctx.Value(txKey{}).(*dbTransaction); ok && !holder.finished {
		holder.tx.Commit()
		holder.finished = true
	}
}

// WithRollbackDBTransaction rollbacks the current transaction if it exists
// and has not finished yet. It is safe to defer this function right after
// WithDBTransaction; the rollback becomes a no-op once the transaction is
// committed.
func WithRollbackDBTransaction(ctx context.Context) {
	if holder, ok := ctx.Value(txKey{}).(*dbTransaction); ok && !holder.finished {
		holder.tx.Rollback()
		holder.finished = true
	}
}

func WithTokenEngine(ctx context.Context, engine authenticator.TokenEngine[model.AccessToken]) context.Context {
	return context.WithValue(ctx, tokenEngineKey{}, engine)
}

func TokenEngine(ctx context.Context) authenticator.TokenEngine[model.AccessToken] {
	return ctx.Value(tokenEngineKey{}).(authenticator.TokenEngine[model.AccessToken])
}

func WithSessionStore(ctx context.Context, store sessions.Store) context.Context {
	return context.WithValue(ctx, sessionStoreKey{}, store)
}

func SessionStore(ctx context.Context) sessions.Store {
	return ctx.Value(sessionStoreKey{}).(sessions.Store)
}

func WithHTTPRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, r)
}

// HTTPRequest returns the request being served, or nil outside of a request.
func HTTPRequest(ctx context.Context) *http.Request {
	r, _ := ctx.Value(httpRequestKey{}).(*http.Request)
	return r
}

func WithHTTPWriter(ctx context.Context, w http.ResponseWriter) context.Context {
	return context.WithValue(ctx, httpWriterKey{}, w)
}

func HTTPWriter(ctx context.Context) http.ResponseWriter {
	w, _ := ctx.Value(httpWriterKey{}).(http.ResponseWriter)
	return w
}
