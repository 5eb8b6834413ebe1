package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/iabetor/newsroom/internal/article"
	"github.com/iabetor/newsroom/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// cardView 文章卡片模板参数。
type cardView struct {
	Article article.Article
	Variant string
	Index   int
}

func (c cardView) Large() bool   { return c.Variant == "large" }
func (c cardView) Compact() bool { return c.Variant == "compact" }
func (c cardView) Minimal() bool { return c.Variant == "minimal" }

// ShowExcerpt compact 与 minimal 不显示摘要。
func (c cardView) ShowExcerpt() bool { return !c.Compact() && !c.Minimal() }

type tabsView struct {
	Categories []string
	Active     string
}

var funcs = template.FuncMap{
	"card": func(a article.Article, variant string, index int) cardView {
		if variant == "" {
			variant = "standard"
		}
		return cardView{Article: a, Variant: variant, Index: index}
	},
	// loop 快讯滚动条将标题重复一遍以实现无缝循环。
	"loop": func(headlines []string) []string {
		out := make([]string, 0, len(headlines)*2)
		out = append(out, headlines...)
		return append(out, headlines...)
	},
	"orDefault": func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	},
	"tabsView": func(categories []string, active string) tabsView {
		if active == "" {
			active = article.CategoryAll
		}
		return tabsView{Categories: categories, Active: active}
	},
	"sections": func() []string {
		return []string{"World", "Politics", "Business", "Tech", "Science", "Health"}
	},
	"company": func() []string {
		return []string{"About Us", "Careers", "Code of Ethics", "Privacy Policy", "Contact"}
	},
}

func parseTemplates() (*template.Template, error) {
	t, err := template.New("newsroom").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("解析模板失败: %w", err)
	}
	return t, nil
}

// render 先渲染到缓冲区，模板出错时返回 500 而不是半截页面。
func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Errorf("[web] 渲染模板 %s 失败: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
