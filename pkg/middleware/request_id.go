package middleware

import (
	"net/http"

	"github.com/salestream/ingest/pkg/requestid"
)

// RequestID gets the correlation id from the x-request-id header or generates
// a unique one for each HTTP request and injects it into the request's
// context. The ingestion pipeline adopts this id as the run's correlation id.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = requestid.Generate()
		}

		ctx := requestid.ToContext(r.Context(), id)
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
