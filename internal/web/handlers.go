package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/iabetor/newsroom/internal/article"
	"github.com/iabetor/newsroom/internal/feed"
	"github.com/iabetor/newsroom/internal/logger"
	"github.com/iabetor/newsroom/internal/newsletter"
)

// homeView 首页模板数据。
type homeView struct {
	State      feed.State
	Lead       article.Article
	Side       []article.Article
	Categories []string
	Today      string
	Newsletter string
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	st := sess.feed.Load(r.Context())

	view := homeView{
		State:      st,
		Categories: article.Categories,
		Today:      time.Now().Format("Monday, January 2"),
		Newsletter: sess.newsletterStatus().String(),
	}
	if len(st.Featured) > 0 {
		view.Lead = st.Featured[0]
		view.Side = st.Featured[1:]
	}
	s.render(w, http.StatusOK, "home", view)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	category := r.FormValue("category")
	if !article.IsCategory(category) {
		http.Error(w, "unknown category", http.StatusBadRequest)
		return
	}
	sess := s.sessions.get(w, r)
	sess.feed.Dispatch(r.Context(), feed.CategoryChanged{Category: category})
	http.Redirect(w, r, "/#latest", http.StatusSeeOther)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	sess.feed.Dispatch(r.Context(), feed.SearchSubmitted{Query: r.FormValue("q")})
	http.Redirect(w, r, "/#latest", http.StatusSeeOther)
}

func (s *Server) handleMore(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	sess.feed.Dispatch(r.Context(), feed.PageAdvanced{})
	http.Redirect(w, r, "/#latest", http.StatusSeeOther)
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	a, ok := s.lookup(r.Context(), sess, r.PathValue("id"))
	if !ok {
		s.render(w, http.StatusNotFound, "notfound", nil)
		return
	}
	s.render(w, http.StatusOK, "article", a)
}

func (s *Server) handleNewsletter(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	if s.subscriber == nil {
		http.Redirect(w, r, "/#newsletter", http.StatusSeeOther)
		return
	}

	status, err := s.subscriber.Subscribe(r.Context(), r.FormValue("email"))
	switch {
	case errors.Is(err, newsletter.ErrInvalidEmail):
		status = newsletter.StatusInvalid
	case err != nil:
		logger.Errorf("[web] 订阅失败: %v", err)
		status = newsletter.StatusIdle
	}
	// 空邮箱不改变表单状态
	if status != newsletter.StatusIdle || err != nil {
		sess.setNewsletter(status)
	}
	http.Redirect(w, r, "/#newsletter", http.StatusSeeOther)
}

func (s *Server) handleAPIFeed(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	writeJSON(w, http.StatusOK, sess.feed.Load(r.Context()))
}

func (s *Server) handleAPIArticle(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	a, ok := s.lookup(r.Context(), sess, r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "article not found"})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// lookup 依次查会话当前集合、文章缓存、内置文章。
func (s *Server) lookup(ctx context.Context, sess *session, id string) (article.Article, bool) {
	if id == "" {
		return article.Article{}, false
	}
	if a, ok := sess.feed.Find(id); ok {
		return a, true
	}
	if s.articles != nil {
		a, err := s.articles.Get(ctx, id)
		if err != nil {
			logger.Warnf("[web] 查询文章缓存失败: %v", err)
		} else if a != nil {
			return *a, true
		}
	}
	return article.FindFallback(id)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("[web] 编码 JSON 失败: %v", err)
	}
}
