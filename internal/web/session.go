package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iabetor/newsroom/internal/feed"
	"github.com/iabetor/newsroom/internal/logger"
	"github.com/iabetor/newsroom/internal/newsletter"
)

const sessionCookie = "newsroom_session"

// session 单个访客的页面状态。
type session struct {
	id   string
	feed *feed.Controller

	mu         sync.Mutex
	newsletter newsletter.Status
	lastSeen   time.Time
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

func (s *session) setNewsletter(st newsletter.Status) {
	s.mu.Lock()
	s.newsletter = st
	s.mu.Unlock()
}

func (s *session) newsletterStatus() newsletter.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newsletter
}

// sessions 以 cookie 中的 UUID 为键保存访客会话，空闲超时后清理。
type sessions struct {
	mu      sync.Mutex
	items   map[string]*session
	ttl     time.Duration
	factory func() *feed.Controller
	now     func() time.Time
}

func newSessions(ttl time.Duration, factory func() *feed.Controller) *sessions {
	return &sessions{
		items:   make(map[string]*session),
		ttl:     ttl,
		factory: factory,
		now:     time.Now,
	}
}

// get 返回请求对应的会话；cookie 缺失或已过期时新建并下发 cookie。
func (m *sessions) get(w http.ResponseWriter, r *http.Request) *session {
	now := m.now()

	if c, err := r.Cookie(sessionCookie); err == nil {
		m.mu.Lock()
		s, ok := m.items[c.Value]
		m.mu.Unlock()
		if ok {
			s.touch(now)
			return s
		}
	}

	s := &session{
		id:       uuid.NewString(),
		feed:     m.factory(),
		lastSeen: now,
	}
	m.mu.Lock()
	m.items[s.id] = s
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	logger.Debugf("[web] 新会话 %s", s.id)
	return s
}

// sweep 清理空闲超过 ttl 的会话，返回清理数量。
func (m *sessions) sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.items {
		if s.idleSince(now) > m.ttl {
			delete(m.items, id)
			removed++
		}
	}
	if removed > 0 {
		logger.Debugf("[web] 清理空闲会话 %d 个", removed)
	}
	return removed
}

func (m *sessions) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// drain 等待所有会话已发出的文章下游处理结束。
func (m *sessions) drain() {
	m.mu.Lock()
	items := make([]*session, 0, len(m.items))
	for _, s := range m.items {
		items = append(items, s)
	}
	m.mu.Unlock()

	for _, s := range items {
		s.feed.Wait()
	}
}

// janitor 周期性清理，直到 stop 关闭。
func (m *sessions) janitor(interval time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			m.sweep()
		}
	}
}
