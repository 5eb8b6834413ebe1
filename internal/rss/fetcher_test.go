package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iabetor/newsroom/internal/article"
	"github.com/iabetor/newsroom/internal/feed"
)

const testRSSFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Tech</title>
    <link>https://example.com</link>
    <description>A test RSS feed</description>
    <item>
      <title>Chip makers expand fabs</title>
      <link>https://example.com/post/1</link>
      <author>reporter@example.com (Ada Byron)</author>
      <description>&lt;p&gt;New plants with &lt;b&gt;HTML tags&lt;/b&gt; &amp;amp; entities.&lt;/p&gt;</description>
      <enclosure url="https://example.com/img/1.jpg" type="image/jpeg" length="100"/>
      <pubDate>Thu, 19 Feb 2026 08:00:00 +0000</pubDate>
    </item>
    <item>
      <title>AI models get smaller</title>
      <link>https://example.com/post/2</link>
      <description>Distillation is back in fashion</description>
      <pubDate>Thu, 19 Feb 2026 07:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Quiet week for gadgets</title>
      <link>https://example.com/post/3</link>
      <description>Nothing much</description>
      <pubDate>Thu, 19 Feb 2026 06:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

const testAtomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>World Desk</title>
  <entry>
    <title>Summit opens in Geneva</title>
    <link href="https://example.com/atom/1"/>
    <summary>Leaders arrive for talks</summary>
    <updated>2026-02-19T09:00:00Z</updated>
  </entry>
</feed>`

func setupTestServer(t *testing.T, content string, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, content)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestFetcher(t *testing.T, pageSize int) (*Fetcher, *int32) {
	t.Helper()
	var calls int32
	tech := setupTestServer(t, testRSSFeed, &calls)
	world := setupTestServer(t, testAtomFeed, &calls)
	f := NewFetcher([]Feed{
		{Name: "Tech", URL: tech.URL, Category: "Tech"},
		{Name: "World", URL: world.URL, Category: "World"},
	}, Options{PageSize: pageSize})
	return f, &calls
}

func TestSearch_AllSortedNewestFirst(t *testing.T) {
	f, _ := newTestFetcher(t, 10)

	items, err := f.Search(context.Background(), feed.Query{Page: 1, Category: "All"})
	if err != nil {
		t.Fatalf("Search 失败: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("期望 4 条，得到 %d 条", len(items))
	}
	if items[0].Title != "Summit opens in Geneva" {
		t.Errorf("第一条应该是最新的: %s", items[0].Title)
	}
	if items[0].Category != "World" {
		t.Errorf("分类应来自订阅源配置: %s", items[0].Category)
	}
}

func TestSearch_CategoryFilter(t *testing.T) {
	f, _ := newTestFetcher(t, 10)

	items, err := f.Search(context.Background(), feed.Query{Page: 1, Category: "tech"})
	if err != nil {
		t.Fatalf("Search 失败: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("期望 3 条 Tech 内容，得到 %d 条", len(items))
	}

	none, err := f.Search(context.Background(), feed.Query{Page: 1, Category: "Science"})
	if err != nil {
		t.Fatalf("Search 失败: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("未配置的分类应为空，得到 %d 条", len(none))
	}
}

func TestSearch_KeywordFilter(t *testing.T) {
	f, _ := newTestFetcher(t, 10)

	items, err := f.Search(context.Background(), feed.Query{Page: 1, Keywords: "distillation"})
	if err != nil {
		t.Fatalf("Search 失败: %v", err)
	}
	if len(items) != 1 || items[0].Title != "AI models get smaller" {
		t.Fatalf("关键词过滤结果不正确: %+v", items)
	}
}

func TestSearch_Pagination(t *testing.T) {
	f, _ := newTestFetcher(t, 3)

	p1, _ := f.Search(context.Background(), feed.Query{Page: 1})
	p2, _ := f.Search(context.Background(), feed.Query{Page: 2})
	p3, _ := f.Search(context.Background(), feed.Query{Page: 3})

	if len(p1) != 3 || len(p2) != 1 || len(p3) != 0 {
		t.Fatalf("分页数量不正确: %d/%d/%d", len(p1), len(p2), len(p3))
	}
	if p2[0].Title != "Quiet week for gadgets" {
		t.Errorf("第二页内容不正确: %s", p2[0].Title)
	}
}

func TestSearch_ItemMapping(t *testing.T) {
	f, _ := newTestFetcher(t, 10)
	items, _ := f.Search(context.Background(), feed.Query{Page: 1, Category: "Tech"})

	first := items[0]
	if first.Excerpt != "New plants with HTML tags & entities." {
		t.Errorf("HTML 应被剥离，实际: %q", first.Excerpt)
	}
	if first.ImageURL != "https://example.com/img/1.jpg" {
		t.Errorf("图片应来自 enclosure: %s", first.ImageURL)
	}
	if first.URL != "https://example.com/post/1" {
		t.Errorf("URL 不匹配: %s", first.URL)
	}
	if first.Date != "Feb 19, 2026" {
		t.Errorf("日期不匹配: %s", first.Date)
	}
	if first.ID == "" {
		t.Error("ID 不应为空")
	}

	second := items[1]
	if second.ImageURL != article.DefaultImageURL {
		t.Errorf("无图时应使用默认图片: %s", second.ImageURL)
	}
	if second.Author != article.DefaultAuthor {
		t.Errorf("无作者时应为 Unknown: %s", second.Author)
	}

	again, _ := f.Search(context.Background(), feed.Query{Page: 1, Category: "Tech"})
	if again[0].ID != first.ID {
		t.Error("同一条目的 ID 应保持稳定")
	}
}

func TestSearch_AllFeedsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	f := NewFetcher([]Feed{{Name: "Broken", URL: srv.URL}}, Options{})
	if _, err := f.Search(context.Background(), feed.Query{Page: 1}); err == nil {
		t.Fatal("所有源失败时应返回错误")
	}
}

func TestEnabled(t *testing.T) {
	if NewFetcher(nil, Options{}).Enabled() {
		t.Error("无订阅源时不应启用")
	}
	if !NewFetcher([]Feed{{URL: "http://x"}}, Options{}).Enabled() {
		t.Error("有订阅源时应启用")
	}
}

func TestCacheHit(t *testing.T) {
	f, calls := newTestFetcher(t, 10)

	_, _ = f.Search(context.Background(), feed.Query{Page: 1})
	_, _ = f.Search(context.Background(), feed.Query{Page: 2})

	if n := atomic.LoadInt32(calls); n != 2 {
		t.Fatalf("第二次请求应使用缓存，实际 HTTP 调用 %d 次", n)
	}
}

func TestCacheExpired(t *testing.T) {
	f, calls := newTestFetcher(t, 10)
	f.cacheTTL = time.Millisecond

	_, _ = f.Search(context.Background(), feed.Query{Page: 1})
	time.Sleep(5 * time.Millisecond)
	_, _ = f.Search(context.Background(), feed.Query{Page: 1})

	if n := atomic.LoadInt32(calls); n != 4 {
		t.Fatalf("缓存过期后应重新请求，实际 HTTP 调用 %d 次", n)
	}
}

func TestStaleCacheOnFailure(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, testRSSFeed)
	}))
	defer srv.Close()

	f := NewFetcher([]Feed{{Name: "Tech", URL: srv.URL, Category: "Tech"}}, Options{})
	f.cacheTTL = time.Millisecond
	_, _ = f.Search(context.Background(), feed.Query{Page: 1})

	fail.Store(true)
	time.Sleep(5 * time.Millisecond)
	items, err := f.Search(context.Background(), feed.Query{Page: 1})
	if err != nil {
		t.Fatalf("有旧缓存时不应返回错误: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("应返回旧缓存内容，得到 %d 条", len(items))
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"<p>Hello <b>World</b></p>", "Hello World"},
		{"plain text", "plain text"},
		{"&amp; &lt; &gt; &quot;", "& < > \""},
		{"<div>  多个   空格  </div>", "多个 空格"},
		{"<style>p{}</style>visible<script>alert(1)</script>", "visible"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := stripHTML(tc.input); got != tc.expected {
			t.Errorf("stripHTML(%q) = %q, 期望 %q", tc.input, got, tc.expected)
		}
	}
}

func TestTruncate(t *testing.T) {
	short := "短文本"
	if got := truncate(short, 200); got != short {
		t.Errorf("短文本不应被截断: %s", got)
	}

	long := ""
	for i := 0; i < 50; i++ {
		long += "这是一段很长的文字"
	}
	got := truncate(long, 200)
	if n := len([]rune(got)); n != 203 {
		t.Errorf("截断后长度应为 203 rune，实际 %d", n)
	}
}

func TestFetcherImplementsSource(t *testing.T) {
	var _ feed.Source = NewFetcher(nil, Options{})
}
