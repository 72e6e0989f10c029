package ratelimit

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// Limiter counts requests per key within a fixed window.
type Limiter struct {
	instance *limiter.Limiter
	logger   *zerolog.Logger
	message  string
}

// Options configures a Limiter.
type Options struct {
	// Rate in ulule format: "3-M" = 3 per minute, "10-S" = 10 per second.
	Rate string
	// Prefix namespaces keys in the shared store.
	Prefix string
	// Redis, when non-nil, backs the counters so they are shared across instances.
	Redis *redis.Client
	// Message is returned in the 429 body.
	Message string
}

const defaultMessage = "Too many requests, please try again later."

// New creates a Limiter from a formatted rate.
func New(logger *zerolog.Logger, opts Options) (*Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(opts.Rate)
	if err != nil {
		return nil, err
	}

	return NewWithRate(logger, rate, opts)
}

// NewWithRate creates a Limiter from an explicit rate.
func NewWithRate(logger *zerolog.Logger, rate limiter.Rate, opts Options) (*Limiter, error) {
	var (
		store limiter.Store
		err   error
	)

	if opts.Redis != nil {
		store, err = sredis.NewStoreWithOptions(opts.Redis, limiter.StoreOptions{
			Prefix: opts.Prefix,
		})
		if err != nil {
			return nil, err
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          opts.Prefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		})
	}

	msg := opts.Message
	if msg == "" {
		msg = defaultMessage
	}

	return &Limiter{
		instance: limiter.New(store, rate),
		logger:   logger,
		message:  msg,
	}, nil
}

// Allow increments the counter for key and reports whether the request is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (limiter.Context, error) {
	return l.instance.Get(ctx, key)
}

// Middleware limits requests by the socket address in r.RemoteAddr. Forwarding
// headers are ignored here; middleware.TrustProxies rewrites RemoteAddr for
// requests arriving through a configured proxy.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := l.instance.GetIPKey(r)

		lctx, err := l.Allow(r.Context(), key)
		if err != nil {
			// Store outage must not take the endpoint down.
			l.logger.Error().Err(err).Str("key", key).Msg("rate limiter store error")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			l.logger.Warn().Str("key", key).Str("path", r.URL.Path).Msg("rate limit exceeded")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   l.message,
				"code":    "rate_limited",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
