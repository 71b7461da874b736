package auth

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// pruneAbove is the number of tracked addresses after which idle buckets
// are dropped.
const pruneAbove = 1024

// loginLimiter keeps one token bucket per client address, so a stranger
// guessing passwords cannot lock the couple out.
type loginLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*rate.Limiter
}

func newLoginLimiter(perMinute int) *loginLimiter {
	return &loginLimiter{
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Allow spends one attempt for the client that sent r.
func (l *loginLimiter) Allow(r *http.Request) bool {
	key := clientAddr(r)

	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= pruneAbove {
			l.prune()
		}
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = b
	}
	return b.Allow()
}

// prune forgets buckets that have refilled completely; they behave like a
// fresh bucket anyway.
func (l *loginLimiter) prune() {
	for key, b := range l.buckets {
		if b.Tokens() >= float64(l.burst) {
			delete(l.buckets, key)
		}
	}
}

// clientAddr is the host part of RemoteAddr. Behind a reverse proxy every
// request shares the proxy's address.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
