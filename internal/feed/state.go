// Package feed 实现首页新闻流的状态机：分类、搜索、分页以及三组展示集合。
package feed

import (
	"strings"

	"github.com/iabetor/newsroom/internal/article"
)

// FeaturedCount 首屏头条数量，其余进入最新列表。
const FeaturedCount = 5

// State 首页新闻流状态。值类型，每次转换产生新值。
type State struct {
	Category string `json:"category"`
	Query    string `json:"query"`
	Page     int    `json:"page"`
	Loading  bool   `json:"loading"`
	// Live 表示已配置可用的新闻源；否则始终展示内置内容。
	Live bool `json:"live"`
	// Generation 每次分类/搜索重置时递增，过期请求的结果据此丢弃。
	Generation uint64 `json:"generation"`

	Featured []article.Article `json:"featured"`
	Latest   []article.Article `json:"latest"`
	Breaking []string          `json:"breaking"`
}

// Initial 返回展示内置内容的初始状态。
func Initial(live bool) State {
	return State{
		Category: article.CategoryAll,
		Page:     1,
		Live:     live,
		Featured: article.FallbackFeatured(),
		Latest:   article.FallbackLatest(),
		Breaking: article.FallbackBreaking(),
	}
}

// clone 深拷贝集合，保证返回给调用方的快照互不影响。
func (s State) clone() State {
	s.Featured = article.Clone(s.Featured)
	s.Latest = article.Clone(s.Latest)
	if s.Breaking != nil {
		b := make([]string, len(s.Breaking))
		copy(b, s.Breaking)
		s.Breaking = b
	}
	return s
}

// Query 一次新闻检索的参数。
type Query struct {
	Page     int
	Category string
	Keywords string
}

// Request 状态转换要求发起的一次检索。
type Request struct {
	Generation uint64
	Query
}

// Action 状态机输入。
type Action interface {
	isAction()
}

// CategoryChanged 用户切换分类。
type CategoryChanged struct{ Category string }

// SearchSubmitted 用户提交搜索框。
type SearchSubmitted struct{ Query string }

// PageAdvanced 用户点击"加载更多"。
type PageAdvanced struct{}

// FetchSucceeded 检索成功返回。
type FetchSucceeded struct {
	Generation uint64
	Page       int
	Articles   []article.Article
}

// FetchFailed 检索失败（网络或解析错误）。
type FetchFailed struct {
	Generation uint64
	Err        error
}

func (CategoryChanged) isAction() {}
func (SearchSubmitted) isAction() {}
func (PageAdvanced) isAction()    {}
func (FetchSucceeded) isAction()  {}
func (FetchFailed) isAction()     {}

// Reduce 纯函数状态转换，返回新状态以及需要发起的检索（可能为 nil）。
//
//	CategoryChanged  → Page=1，Generation+1，检索第 1 页
//	SearchSubmitted  → Page=1，Generation+1，检索第 1 页
//	PageAdvanced     → Page+1，检索下一页（Generation 不变）；检索在途时忽略
//	FetchSucceeded   → 第 1 页替换集合，后续页追加到 Latest
//	FetchFailed      → 仅清除 Loading
//
// 过期 Generation 的结果被整体忽略。未配置新闻源时不发起检索。
func Reduce(s State, a Action) (State, *Request) {
	s = s.clone()

	switch act := a.(type) {
	case CategoryChanged:
		s.Category = strings.TrimSpace(act.Category)
		if s.Category == "" {
			s.Category = article.CategoryAll
		}
		s.Page = 1
		return s.reset()

	case SearchSubmitted:
		s.Query = strings.TrimSpace(act.Query)
		s.Page = 1
		return s.reset()

	case PageAdvanced:
		// 同一会话已有检索在途时忽略，避免页码跳过或被第 1 页结果覆盖
		if s.Loading {
			return s, nil
		}
		s.Page++
		if !s.Live {
			return s, nil
		}
		s.Loading = true
		return s, s.request()

	case FetchSucceeded:
		if act.Generation != s.Generation {
			return s, nil
		}
		s.Loading = false
		if len(act.Articles) == 0 {
			return s, nil
		}
		if act.Page <= 1 {
			n := FeaturedCount
			if len(act.Articles) < n {
				n = len(act.Articles)
			}
			s.Featured = article.Clone(act.Articles[:n])
			s.Latest = article.Clone(act.Articles[n:])
			s.Breaking = article.Headlines(s.Featured)
		} else {
			s.Latest = append(s.Latest, act.Articles...)
		}
		return s, nil

	case FetchFailed:
		if act.Generation != s.Generation {
			return s, nil
		}
		s.Loading = false
		return s, nil
	}
	return s, nil
}

// reset 分类或搜索变化后开始新一代检索。
func (s State) reset() (State, *Request) {
	s.Generation++
	if !s.Live {
		s.Loading = false
		return s, nil
	}
	s.Loading = true
	return s, s.request()
}

func (s State) request() *Request {
	return &Request{
		Generation: s.Generation,
		Query: Query{
			Page:     s.Page,
			Category: s.Category,
			Keywords: s.Query,
		},
	}
}
