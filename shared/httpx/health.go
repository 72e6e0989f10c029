package httpx

import (
	"context"
	"net/http"
	"time"
)

const healthCheckTimeout = 3 * time.Second

// Health answers {"ok":true} while check succeeds and 503 {"ok":false} otherwise.
func Health(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := check(ctx); err != nil {
			WriteJSON(w, http.StatusServiceUnavailable, map[string]bool{"ok": false})
			return
		}

		WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
