package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/phrazzld/booking-api/internal/api/shared"
	"golang.org/x/time/rate"
)

// clientIdleTTL is how long an idle client's bucket is remembered.
const clientIdleTTL = 10 * time.Minute

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	perSecond rate.Limit
	burst     int
	trusted   []netip.Prefix

	mu      sync.Mutex
	buckets *lru.LRU[string, *rate.Limiter]
}

// NewRateLimiter creates a limiter allowing perSecond requests with the given
// burst per client, tracking at most maxClients clients. X-Forwarded-For is
// only consulted when the connecting peer is inside a trusted proxy network.
func NewRateLimiter(perSecond float64, burst, maxClients int, trustedProxies ...netip.Prefix) *RateLimiter {
	return &RateLimiter{
		perSecond: rate.Limit(perSecond),
		burst:     burst,
		trusted:   trustedProxies,
		buckets:   lru.NewLRU[string, *rate.Limiter](maxClients, nil, clientIdleTTL),
	}
}

// ParseTrustedProxies parses CIDR notation networks such as "10.0.0.0/8".
func ParseTrustedProxies(cidrs []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, cidr := range cidrs {
		prefix, err := netip.ParsePrefix(strings.TrimSpace(cidr))
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", cidr, err)
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return prefixes, nil
}

// Limit answers 429 once a client exhausts its bucket.
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiter(l.clientIP(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			shared.RespondWithError(w, r, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.buckets.Get(ip); ok {
		return lim
	}
	lim := rate.NewLimiter(l.perSecond, l.burst)
	l.buckets.Add(ip, lim)
	return lim
}

// clientIP keys on the connecting peer. Behind a trusted proxy it walks
// X-Forwarded-For from the right and takes the first hop that is not itself
// a trusted proxy; entries left of that are client-controlled.
func (l *RateLimiter) clientIP(r *http.Request) string {
	peer := remoteHost(r)
	if !l.isTrusted(peer) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		if !l.isTrusted(hop.String()) {
			return hop.Unmap().String()
		}
	}
	return peer
}

func (l *RateLimiter) isTrusted(ip string) bool {
	if len(l.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range l.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr == "" {
			return "unknown"
		}
		return r.RemoteAddr
	}
	return host
}
