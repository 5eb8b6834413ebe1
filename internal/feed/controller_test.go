package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iabetor/newsroom/internal/article"
)

// fakeSource 按页返回预置结果并记录查询。
type fakeSource struct {
	mu      sync.Mutex
	pages   map[int][]article.Article
	err     error
	queries []Query
}

func (f *fakeSource) Search(_ context.Context, q Query) ([]article.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[q.Page], nil
}

func (f *fakeSource) calls() []Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Query(nil), f.queries...)
}

func TestController_NotLiveNeverFetches(t *testing.T) {
	src := &fakeSource{}
	c := NewController(src, false)

	s := c.Load(context.Background())
	s = c.Dispatch(context.Background(), SearchSubmitted{Query: "x"})
	s = c.Dispatch(context.Background(), PageAdvanced{})

	if n := len(src.calls()); n != 0 {
		t.Errorf("expected no fetches, got %d", n)
	}
	if s.Loading {
		t.Error("expected non-loading state")
	}
	if len(s.Featured) != 5 || len(s.Latest) != 6 {
		t.Error("expected fallback collections")
	}
}

func TestController_LoadOnce(t *testing.T) {
	src := &fakeSource{pages: map[int][]article.Article{1: makeArticles("p", 7)}}
	c := NewController(src, true)

	s := c.Load(context.Background())
	c.Load(context.Background())

	if n := len(src.calls()); n != 1 {
		t.Fatalf("expected one fetch, got %d", n)
	}
	if len(s.Featured) != 5 || len(s.Latest) != 2 {
		t.Errorf("unexpected partition %d/%d", len(s.Featured), len(s.Latest))
	}
}

func TestController_SearchIssuesOnePageOneFetch(t *testing.T) {
	src := &fakeSource{pages: map[int][]article.Article{1: makeArticles("p", 5)}}
	c := NewController(src, true)

	c.Dispatch(context.Background(), SearchSubmitted{Query: "mars mission"})

	calls := src.calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 fetch, got %d", len(calls))
	}
	if calls[0].Page != 1 || calls[0].Keywords != "mars mission" {
		t.Errorf("unexpected query: %+v", calls[0])
	}
}

func TestController_LoadMore(t *testing.T) {
	src := &fakeSource{pages: map[int][]article.Article{
		1: makeArticles("p1", 9),
		2: makeArticles("p2", 3),
	}}
	c := NewController(src, true)
	c.Load(context.Background())

	s := c.Dispatch(context.Background(), PageAdvanced{})
	if s.Page != 2 {
		t.Errorf("page: got %d", s.Page)
	}
	if len(s.Latest) != 7 {
		t.Errorf("latest: got %d, want 4+3", len(s.Latest))
	}
}

func TestController_FailureKeepsState(t *testing.T) {
	src := &fakeSource{pages: map[int][]article.Article{1: makeArticles("p1", 6)}}
	c := NewController(src, true)
	c.Load(context.Background())

	src.mu.Lock()
	src.err = errors.New("network down")
	src.mu.Unlock()

	s := c.Dispatch(context.Background(), CategoryChanged{Category: "Tech"})
	if s.Loading {
		t.Error("loading should be cleared")
	}
	if s.Featured[0].ID != "p1-0" {
		t.Errorf("previous collections should remain, got %s", s.Featured[0].ID)
	}
}

func TestController_SinksReceiveArticles(t *testing.T) {
	src := &fakeSource{pages: map[int][]article.Article{1: makeArticles("p1", 6)}}

	var got []article.Article
	ok := SinkFunc(func(_ context.Context, a []article.Article) error {
		got = append(got, a...)
		return nil
	})
	failing := SinkFunc(func(context.Context, []article.Article) error {
		return errors.New("sink down")
	})

	c := NewController(src, true, failing, ok)
	s := c.Load(context.Background())
	c.Wait()

	if len(got) != 6 {
		t.Errorf("sink received %d articles, want 6", len(got))
	}
	if len(s.Featured) != 5 {
		t.Error("sink failure should not affect feed")
	}
}

func TestController_Find(t *testing.T) {
	src := &fakeSource{pages: map[int][]article.Article{1: makeArticles("p1", 7)}}
	c := NewController(src, true)
	c.Load(context.Background())

	if a, ok := c.Find("p1-6"); !ok || a.Title != "p1 title 6" {
		t.Errorf("Find latest: %+v %v", a, ok)
	}
	if _, ok := c.Find("p1-0"); !ok {
		t.Error("Find featured failed")
	}
	if _, ok := c.Find("1"); ok {
		t.Error("fallback ids should be gone after a live load")
	}
}

func TestController_ConcurrentLoadMoreNeverSkipsPages(t *testing.T) {
	src := &fakeSource{pages: map[int][]article.Article{1: makeArticles("p1", 6), 2: makeArticles("p2", 2)}}
	c := NewController(src, true)
	c.Load(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Dispatch(context.Background(), PageAdvanced{})
		}()
	}
	wg.Wait()

	// 每次页码前进都对应一次检索，且页码连续不重复
	seen := make(map[int]bool)
	for _, q := range src.calls()[1:] {
		if seen[q.Page] {
			t.Errorf("page %d fetched twice", q.Page)
		}
		seen[q.Page] = true
	}
	s := c.State()
	if s.Page != len(seen)+1 {
		t.Errorf("page: got %d, want %d", s.Page, len(seen)+1)
	}
	for p := 2; p <= s.Page; p++ {
		if !seen[p] {
			t.Errorf("page %d was skipped", p)
		}
	}
	if s.Loading {
		t.Error("loading should be cleared")
	}
}

func TestController_SlowSinkDoesNotBlockDispatch(t *testing.T) {
	src := &fakeSource{pages: map[int][]article.Article{1: makeArticles("p", 6)}}

	release := make(chan struct{})
	var sinkCtxErr error
	slow := SinkFunc(func(ctx context.Context, _ []article.Article) error {
		<-release
		sinkCtxErr = ctx.Err()
		return nil
	})
	c := NewController(src, true, slow)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan State, 1)
	go func() { done <- c.Dispatch(ctx, CategoryChanged{Category: "Tech"}) }()

	select {
	case s := <-done:
		if s.Loading {
			t.Error("loading should be cleared before sinks finish")
		}
		if s.Featured[0].ID != "p-0" {
			t.Errorf("fetched page should be applied, featured[0]=%s", s.Featured[0].ID)
		}
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a slow sink")
	}

	// 请求结束后下游仍可完成
	cancel()
	close(release)
	c.Wait()
	if sinkCtxErr != nil {
		t.Errorf("sink context should outlive the request: %v", sinkCtxErr)
	}
}
