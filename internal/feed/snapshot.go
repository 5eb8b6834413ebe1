package feed

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iabetor/newsroom/internal/article"
	"github.com/iabetor/newsroom/internal/logger"
)

// SnapshotSource 为首页默认查询（全部分类、无关键词、第 1 页）缓存一份短期结果。
// 新访客首屏共享这份结果，不再各自请求上游；其他查询直接透传。
type SnapshotSource struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	// mu 在回源期间一直持有，并发的首屏请求只触发一次上游调用
	mu        sync.Mutex
	cached    []article.Article
	valid     bool
	fetchedAt time.Time
}

// NewSnapshotSource 包装 source。ttl <= 0 时不缓存。
func NewSnapshotSource(source Source, ttl time.Duration) *SnapshotSource {
	return &SnapshotSource{source: source, ttl: ttl, now: time.Now}
}

// Search 实现 Source。
func (s *SnapshotSource) Search(ctx context.Context, q Query) ([]article.Article, error) {
	if s.ttl <= 0 || !isFrontPage(q) {
		return s.source.Search(ctx, q)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.valid && s.now().Sub(s.fetchedAt) < s.ttl {
		logger.Debugf("[feed] 首页快照命中 (%d 条)", len(s.cached))
		return article.Clone(s.cached), nil
	}

	articles, err := s.source.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	s.cached = article.Clone(articles)
	s.valid = true
	s.fetchedAt = s.now()
	return articles, nil
}

func isFrontPage(q Query) bool {
	return q.Page <= 1 && article.IsAll(q.Category) && strings.TrimSpace(q.Keywords) == ""
}
