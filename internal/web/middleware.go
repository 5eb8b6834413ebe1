package web

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/iabetor/newsroom/internal/logger"
)

// clientLimiter 每个客户端一个令牌桶。
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter 按客户端 IP 限流。
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rps     rate.Limit
	burst   int
	idle    time.Duration

	// trustProxy 为 false 时忽略客户端可伪造的 X-Forwarded-For
	trustProxy bool
}

func newRateLimiter(rps float64, burst int, trustProxy bool) *rateLimiter {
	return &rateLimiter{
		clients:    make(map[string]*clientLimiter),
		rps:        rate.Limit(rps),
		burst:      burst,
		idle:       5 * time.Minute,
		trustProxy: trustProxy,
	}
}

func (l *rateLimiter) allow(ip string) bool {
	l.mu.Lock()
	c, ok := l.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = time.Now()
	l.mu.Unlock()
	return c.limiter.Allow()
}

// cleanup 移除长时间不活跃的客户端，防止内存增长。
func (l *rateLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, c := range l.clients {
		if time.Since(c.lastSeen) > l.idle {
			delete(l.clients, ip)
		}
	}
}

func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, l.trustProxy)
		if !l.allow(ip) {
			logger.Warnf("[web] 客户端 %s 超出限流", ip)
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP 返回连接的对端地址；trustProxy 时优先取 X-Forwarded-For 的第一个地址。
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debugf("[web] %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
