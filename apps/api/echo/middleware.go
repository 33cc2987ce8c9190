package echoapi

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/ratiba/core"
)

// requestLogger logs one line per request once the response is written.
func requestLogger(logger core.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			if err := next(ctx); err != nil {
				ctx.Error(err)
			}

			req, res := ctx.Request(), ctx.Response()
			fields := map[string]interface{}{
				"status":    res.Status,
				"latency":   time.Since(start).String(),
				"remote_ip": ctx.RealIP(),
				"bytes_out": res.Size,
			}
			msg := fmt.Sprintf("%s %s", req.Method, req.URL.RequestURI())
			if res.Status >= 500 {
				logger.Warn(msg, fields)
			} else {
				logger.Info(msg, fields)
			}
			return nil
		}
	}
}
