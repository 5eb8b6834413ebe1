// Package web 提供首页新闻流与文章详情页的 HTTP 服务。
package web

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/iabetor/newsroom/internal/article"
	"github.com/iabetor/newsroom/internal/feed"
	"github.com/iabetor/newsroom/internal/newsletter"
)

// ArticleLookup 按 ID 回查文章（文章缓存）。未找到返回 nil, nil。
type ArticleLookup interface {
	Get(ctx context.Context, id string) (*article.Article, error)
}

// Subscriber 处理订阅表单。
type Subscriber interface {
	Subscribe(ctx context.Context, email string) (newsletter.Status, error)
}

// Options 服务参数。
type Options struct {
	SessionTTL time.Duration
	RateLimit  float64
	Burst      int

	// TrustProxy 按 X-Forwarded-For 识别客户端，仅在反向代理之后开启。
	TrustProxy bool
}

// Server 新闻站点。
type Server struct {
	sessions   *sessions
	articles   ArticleLookup
	subscriber Subscriber
	limiter    *rateLimiter
	tmpl       *template.Template
	handler    http.Handler

	stop chan struct{}
}

// New 创建服务。newFeed 为每个新会话创建新闻流控制器；articles 与 subscriber 可为 nil。
func New(newFeed func() *feed.Controller, articles ArticleLookup, subscriber Subscriber, opts Options) (*Server, error) {
	if newFeed == nil {
		return nil, fmt.Errorf("web: 缺少新闻流工厂")
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 10
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		sessions:   newSessions(opts.SessionTTL, newFeed),
		articles:   articles,
		subscriber: subscriber,
		limiter:    newRateLimiter(opts.RateLimit, opts.Burst, opts.TrustProxy),
		tmpl:       tmpl,
		stop:       make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /category", s.handleCategory)
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("POST /more", s.handleMore)
	mux.HandleFunc("GET /article/{id}", s.handleArticle)
	mux.HandleFunc("POST /newsletter", s.handleNewsletter)
	mux.HandleFunc("GET /api/feed", s.handleAPIFeed)
	mux.HandleFunc("GET /api/articles/{id}", s.handleAPIArticle)
	mux.HandleFunc("GET /healthz", handleHealth)

	s.handler = logRequests(s.limiter.middleware(mux))

	go s.sessions.janitor(time.Minute, s.stop)
	go s.limiterJanitor(time.Minute)
	return s, nil
}

// Handler 返回根 http.Handler。
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close 停止后台清理协程，并等待在途的文章下游处理完成。
func (s *Server) Close() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	s.sessions.drain()
}

func (s *Server) limiterJanitor(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			s.limiter.cleanup()
		}
	}
}
