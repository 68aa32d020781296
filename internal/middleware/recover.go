package middleware

import (
	"log/slog"
	"net/http"
)

const internalErrorBody = `{"error":{"code":"internal","message":"internal server error"}}`

// Recover перехватывает panic и возвращает 500, не падая процессом.
// Если обработчик уже начал ответ, статус и тело не трогаются.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := wrapWriter(w)
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						slog.Any("error", rec),
						slog.String("path", r.URL.Path),
						slog.String("request_id", r.Header.Get(headerRequestID)),
						slog.Bool("headers_sent", ww.wroteHeader),
					)
					if ww.wroteHeader {
						return
					}
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(internalErrorBody + "\n"))
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
