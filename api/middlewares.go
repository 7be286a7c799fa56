package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/harlequingg/taskmanager/internal/logutil"
)

// requireAuthenticatedUser only trusts the bearer token: the subject is not
// looked up in the store.
func (app *application) requireAuthenticatedUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			app.invalidAuthenticationTokenResponse(w, r, "invalid Authorization header")
			return
		}
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || parts[0] != "Bearer" {
			app.invalidAuthenticationTokenResponse(w, r, "invalid Authorization header")
			return
		}

		userID, err := app.tokens.Verify(parts[1])
		if err != nil {
			log := logutil.GetOrDefault(r.Context())
			log.Debug().Err(err).Msg("rejected bearer token")
			app.invalidAuthenticationTokenResponse(w, r, "invalid token")
			return
		}
		next.ServeHTTP(w, contextSetUserID(r, userID))
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clients holds one token bucket per client IP.
type clients struct {
	mu    sync.Mutex
	byIP  map[string]*client
	rps   rate.Limit
	burst int
}

func newClients(rps float64, burst int) *clients {
	return &clients{
		byIP:  make(map[string]*client),
		rps:   rate.Limit(rps),
		burst: burst,
	}
}

func (cs *clients) allow(ip string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	c, ok := cs.byIP[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(cs.rps, cs.burst)}
		cs.byIP[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

// sweep drops clients idle for longer than idle, checking every interval,
// until ctx is done.
func (cs *clients) sweep(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		cs.mu.Lock()
		for ip, c := range cs.byIP {
			if time.Since(c.lastSeen) >= idle {
				delete(cs.byIP, ip)
			}
		}
		cs.mu.Unlock()
	}
}

func (cs *clients) size() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.byIP)
}

// rateLimit applies a per-IP token bucket. Idle buckets are swept until ctx
// is done.
func (app *application) rateLimit(ctx context.Context, next http.Handler) http.Handler {
	cs := newClients(app.config.limiter.rps, app.config.limiter.burst)
	go cs.sweep(ctx, time.Minute, 3*time.Minute)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		if !cs.allow(ip) {
			app.rateLimitExceededResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (app *application) enableCORS(next http.Handler) http.Handler {
	trusted := strings.Fields(app.config.cors.trustedOrigins)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		w.Header().Add("Vary", "Access-Control-Request-Method")

		origin := r.Header.Get("Origin")
		if origin != "" {
			for _, o := range trusted {
				if origin != o && o != "*" {
					continue
				}
				w.Header().Set("Access-Control-Allow-Origin", origin)
				// preflight request
				if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
					w.Header().Set("Access-Control-Allow-Methods", "OPTIONS, GET, POST, PUT, DELETE")
					w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
					w.WriteHeader(http.StatusOK)
					return
				}
				break
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverErrorResponse(w, r, fmt.Errorf("%v", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// logRequests tags every request with an id and a child logger, then logs the
// outcome once the handler returns.
func (app *application) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)

		logger := app.logger.With().Str("request_id", requestID).Logger()
		r = r.WithContext(logutil.WithLogger(r.Context(), logger))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Info().
			Str("method", r.Method).
			Str("uri", r.URL.RequestURI()).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
