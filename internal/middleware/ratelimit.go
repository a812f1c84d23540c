package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ParseTrustedProxies parses proxy addresses given as bare IPs or CIDR
// prefixes.
func ParseTrustedProxies(list []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(list))
	for _, s := range list {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if strings.Contains(s, "/") {
			p, err := netip.ParsePrefix(s)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", s, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", s, err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return prefixes, nil
}

// ClientIP returns a resolver for the address of the client behind a request.
// X-Forwarded-For is only consulted when the direct peer is a trusted proxy,
// and then the right-most hop that is not itself trusted wins. With no trusted
// proxies the peer address is always used.
func ClientIP(trusted []netip.Prefix) func(*http.Request) string {
	isTrusted := func(addr netip.Addr) bool {
		for _, p := range trusted {
			if p.Contains(addr) {
				return true
			}
		}
		return false
	}

	return func(r *http.Request) string {
		peer := remoteHost(r)
		addr, err := netip.ParseAddr(peer)
		if err != nil || !isTrusted(addr.Unmap()) {
			return peer
		}

		hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			a, err := netip.ParseAddr(hop)
			if err != nil {
				return peer
			}
			if !isTrusted(a.Unmap()) {
				return a.Unmap().String()
			}
		}
		return peer
	}
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type attemptWindow struct {
	count   int
	resetAt time.Time
}

// Attempts counts attempts per key in fixed windows and refuses a key once it
// has used up its budget for the current window.
type Attempts struct {
	limit  int
	period time.Duration
	now    func() time.Time

	mu   sync.Mutex
	keys map[string]*attemptWindow
}

func NewAttempts(limit int, period time.Duration) *Attempts {
	return &Attempts{
		limit:  limit,
		period: period,
		now:    time.Now,
		keys:   make(map[string]*attemptWindow),
	}
}

// current returns the live window for key, or nil. Callers hold a.mu.
func (a *Attempts) current(key string, now time.Time) *attemptWindow {
	w := a.keys[key]
	if w == nil || !now.Before(w.resetAt) {
		return nil
	}
	return w
}

// Record counts one attempt for key. It reports false, together with the time
// left in the window, when the attempt exceeds the budget.
func (a *Attempts) Record(key string) (time.Duration, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	w := a.current(key, now)
	if w == nil {
		w = &attemptWindow{resetAt: now.Add(a.period)}
		a.keys[key] = w
	}
	w.count++
	if w.count > a.limit {
		return w.resetAt.Sub(now), false
	}
	return 0, true
}

// Blocked reports whether key has exhausted its budget, without counting an
// attempt.
func (a *Attempts) Blocked(key string) (time.Duration, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	w := a.current(key, now)
	if w == nil || w.count < a.limit {
		return 0, false
	}
	return w.resetAt.Sub(now), true
}

// Reset forgets key, for example after a successful login.
func (a *Attempts) Reset(key string) {
	a.mu.Lock()
	delete(a.keys, key)
	a.mu.Unlock()
}

// Prune drops expired windows and returns how many were removed.
func (a *Attempts) Prune() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	n := 0
	for key, w := range a.keys {
		if !now.Before(w.resetAt) {
			delete(a.keys, key)
			n++
		}
	}
	return n
}

// LimitClients refuses requests with 429 once the client resolved by clientIP
// has used up its attempts.
func LimitClients(a *Attempts, clientIP func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if wait, ok := a.Record(clientIP(r)); !ok {
				SetRetryAfter(w, wait)
				writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetRetryAfter sets the Retry-After header to d in whole seconds, at least 1.
func SetRetryAfter(w http.ResponseWriter, d time.Duration) {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
}
