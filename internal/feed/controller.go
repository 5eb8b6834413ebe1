package feed

import (
	"context"
	"sync"
	"time"

	"github.com/iabetor/newsroom/internal/article"
	"github.com/iabetor/newsroom/internal/logger"
)

// Source 新闻检索来源。
type Source interface {
	Search(ctx context.Context, q Query) ([]article.Article, error)
}

// Sink 接收每批成功检索到的文章（缓存、事件发布等）。
type Sink interface {
	Accept(ctx context.Context, articles []article.Article) error
}

// SinkFunc 函数适配 Sink。
type SinkFunc func(ctx context.Context, articles []article.Article) error

func (f SinkFunc) Accept(ctx context.Context, articles []article.Article) error {
	return f(ctx, articles)
}

// SinkTimeout 单批文章交给全部下游处理的最长时间。
const SinkTimeout = 10 * time.Second

// Controller 持有单个访客的新闻流状态，并发安全。
// 检索在锁外进行，结果回灌时按 Generation 判断是否仍然有效。
// 下游在结果应用之后异步处理，不阻塞请求。
type Controller struct {
	mu     sync.Mutex
	state  State
	loaded bool

	source  Source
	sinks   []Sink
	pending sync.WaitGroup
}

// NewController 创建控制器。live 为 false 时从不调用 source。
func NewController(source Source, live bool, sinks ...Sink) *Controller {
	return &Controller{
		state:  Initial(live && source != nil),
		source: source,
		sinks:  sinks,
	}
}

// State 返回当前状态快照。
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Load 首次展示时检索第 1 页；之后的调用不再触发检索。
func (c *Controller) Load(ctx context.Context) State {
	c.mu.Lock()
	if c.loaded {
		s := c.state.clone()
		c.mu.Unlock()
		return s
	}
	c.loaded = true
	category := c.state.Category
	c.mu.Unlock()

	return c.Dispatch(ctx, CategoryChanged{Category: category})
}

// Dispatch 应用一个用户动作；若需要检索则同步完成检索并应用结果。
func (c *Controller) Dispatch(ctx context.Context, a Action) State {
	c.mu.Lock()
	c.loaded = true
	next, req := Reduce(c.state, a)
	c.state = next
	if req == nil {
		s := c.state.clone()
		c.mu.Unlock()
		return s
	}
	c.mu.Unlock()

	result := c.fetch(ctx, req)

	c.mu.Lock()
	c.state, _ = Reduce(c.state, result)
	s := c.state.clone()
	c.mu.Unlock()

	if done, succeeded := result.(FetchSucceeded); succeeded && len(done.Articles) > 0 {
		c.emit(ctx, done.Articles)
	}
	return s
}

func (c *Controller) fetch(ctx context.Context, req *Request) Action {
	logger.Debugf("[feed] 检索 page=%d category=%s keywords=%q gen=%d",
		req.Page, req.Category, req.Keywords, req.Generation)

	articles, err := c.source.Search(ctx, req.Query)
	if err != nil {
		logger.Errorf("[feed] 获取新闻失败: %v", err)
		return FetchFailed{Generation: req.Generation, Err: err}
	}

	logger.Infof("[feed] 获取到 %d 条新闻 (page=%d)", len(articles), req.Page)
	return FetchSucceeded{Generation: req.Generation, Page: req.Page, Articles: articles}
}

// emit 在后台把文章交给下游。请求结束不取消下游，但总时长受 SinkTimeout 限制。
func (c *Controller) emit(ctx context.Context, articles []article.Article) {
	if len(c.sinks) == 0 {
		return
	}
	batch := article.Clone(articles)
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), SinkTimeout)
		defer cancel()
		for _, s := range c.sinks {
			if err := s.Accept(ctx, batch); err != nil {
				logger.Warnf("[feed] 文章下游处理失败: %v", err)
			}
		}
	}()
}

// Wait 等待已发出的下游处理全部结束。
func (c *Controller) Wait() {
	c.pending.Wait()
}

// Find 在当前展示集合中按 ID 查找文章。
func (c *Controller) Find(id string) (article.Article, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if a, ok := article.Find(c.state.Featured, id); ok {
		return a, true
	}
	return article.Find(c.state.Latest, id)
}
