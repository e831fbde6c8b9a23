package middleware

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/conduit-lang/crudkit/pkg/crud"
)

// Recovery turns panics in later handlers into a 500 response. The panic is
// logged with its stack on the request logger.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				crud.LoggerFrom(r.Context()).Error("panic recovered",
					zap.Any("panic", v),
					zap.Stack("stack"),
				)
				crud.WriteError(w, r, crud.Internal(&panicError{value: v}))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// panicError wraps a panic value as an error
type panicError struct {
	value any
}

func (e *panicError) Error() string {
	if err, ok := e.value.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("panic: %v", e.value)
}
