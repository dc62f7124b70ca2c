package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/steadyhabits/backend/internal/common"
	"github.com/steadyhabits/backend/pkg/errorx"
	"github.com/steadyhabits/backend/pkg/router"
	"github.com/steadyhabits/backend/pkg/xcontext"
)

func WithStartTime() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		return xcontext.WithStartTime(ctx, time.Now()), nil
	}
}

// Prometheus records the request counter and latency histogram after the
// response has been decided. The status label is our application error code,
// 0 for success, -1 for an error that carries no code.
func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		code := 0
		if err := xcontext.Error(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				code = int(errx.Code)
			} else {
				code = -1
			}
		}

		path := xcontext.HTTPRequest(ctx).URL.Path
		status := fmt.Sprint(code)

		common.PromCounters[common.HTTPRequestTotal].
			WithLabelValues(path, status).Inc()
		common.PromHistograms[common.HTTPRequestDurationSeconds].
			WithLabelValues(path, status).
			Observe(time.Since(xcontext.StartTime(ctx)).Seconds())
	}
}
