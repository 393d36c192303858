package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// DenyObserver is told about requests rejected by RateLimit
type DenyObserver interface {
	OnDeny(route string)
}

// RateLimit limits requests per client IP with an in-memory store. rate
// uses the limiter format, e.g. "10-M" for ten per minute.
func RateLimit(route, rate string, observer DenyObserver) (func(http.Handler) http.Handler, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate %q: %w", rate, err)
	}
	lim := limiter.New(memory.NewStore(), r)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			key := lim.GetIPKey(req)
			result, err := lim.Get(req.Context(), key)
			if err != nil {
				log.Error().Err(err).Str("route", route).Msg("Rate limiter unavailable")
				next.ServeHTTP(w, req)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.Reset, 10))

			if result.Reached {
				retry := time.Until(time.Unix(result.Reset, 0))
				if retry < time.Second {
					retry = time.Second
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
				if observer != nil {
					observer.OnDeny(route)
				}
				log.Warn().Str("route", route).Str("key", key).Msg("Rate limit reached")
				respondError(w, "Too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, req)
		})
	}, nil
}
