package rss

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"

	"github.com/iabetor/newsroom/internal/article"
	"github.com/iabetor/newsroom/internal/feed"
	"github.com/iabetor/newsroom/internal/logger"
)

const (
	defaultCacheTTL     = 30 * time.Minute
	defaultPageSize     = 20
	defaultMaxItems     = 50 // 每个 Feed 缓存的最大条目数
	defaultFetchTimeout = 10 * time.Second
	maxSummaryLen       = 300
	maxFeedSize         = 10 << 20
)

// Options 抓取器配置。
type Options struct {
	CacheTTL time.Duration
	PageSize int
	Timeout  time.Duration
}

// Fetcher 抓取并缓存订阅源，按分类/关键词/页码提供检索。
type Fetcher struct {
	mu       sync.RWMutex
	feeds    []Feed
	cache    map[string]cachedFeed // key: feed URL
	cacheTTL time.Duration
	pageSize int
	parser   *gofeed.Parser
	client   *http.Client
}

type cachedFeed struct {
	FetchedAt time.Time
	Entries   []entry
}

// NewFetcher 创建抓取器。
func NewFetcher(feeds []Feed, opts Options) *Fetcher {
	f := &Fetcher{
		feeds:    append([]Feed(nil), feeds...),
		cache:    make(map[string]cachedFeed),
		cacheTTL: opts.CacheTTL,
		pageSize: opts.PageSize,
		parser:   gofeed.NewParser(),
		client:   &http.Client{Timeout: opts.Timeout},
	}
	if f.cacheTTL <= 0 {
		f.cacheTTL = defaultCacheTTL
	}
	if f.pageSize <= 0 {
		f.pageSize = defaultPageSize
	}
	if f.client.Timeout <= 0 {
		f.client.Timeout = defaultFetchTimeout
	}
	return f
}

// Enabled 至少配置了一个订阅源。
func (f *Fetcher) Enabled() bool {
	return len(f.feeds) > 0
}

// Search 合并匹配分类的订阅源，按时间倒序、关键词过滤后返回第 q.Page 页。
func (f *Fetcher) Search(ctx context.Context, q feed.Query) ([]article.Article, error) {
	var all []entry
	var lastErr error
	matched := 0
	for _, fd := range f.feeds {
		if !matchCategory(fd, q.Category) {
			continue
		}
		matched++
		entries, err := f.getEntries(ctx, fd)
		if err != nil {
			logger.Warnf("[rss] 获取 %s 失败: %v", fd.Name, err)
			lastErr = err
			continue
		}
		all = append(all, entries...)
	}
	// 所有匹配的源都失败才算失败
	if matched > 0 && len(all) == 0 && lastErr != nil {
		return nil, fmt.Errorf("所有订阅源均获取失败: %w", lastErr)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Published.After(all[j].Published)
	})

	if kw := strings.ToLower(strings.TrimSpace(q.Keywords)); kw != "" {
		filtered := all[:0]
		for _, e := range all {
			if strings.Contains(strings.ToLower(e.Title), kw) ||
				strings.Contains(strings.ToLower(e.Excerpt), kw) {
				filtered = append(filtered, e)
			}
		}
		all = filtered
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * f.pageSize
	if start >= len(all) {
		return []article.Article{}, nil
	}
	end := start + f.pageSize
	if end > len(all) {
		end = len(all)
	}

	out := make([]article.Article, 0, end-start)
	for _, e := range all[start:end] {
		out = append(out, e.Article)
	}
	return out, nil
}

func matchCategory(fd Feed, category string) bool {
	if article.IsAll(category) {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(fd.Category), strings.TrimSpace(category))
}

// getEntries 获取单个 Feed 的条目（优先使用缓存）。
func (f *Fetcher) getEntries(ctx context.Context, fd Feed) ([]entry, error) {
	f.mu.RLock()
	cached, hasCached := f.cache[fd.URL]
	f.mu.RUnlock()

	if hasCached && time.Since(cached.FetchedAt) < f.cacheTTL {
		return cached.Entries, nil
	}

	parsed, err := f.parseFeed(ctx, fd.URL)
	if err != nil {
		// 抓取失败但有旧缓存，使用旧缓存
		if hasCached {
			logger.Warnf("[rss] 抓取 %s 失败，使用旧缓存: %v", fd.Name, err)
			return cached.Entries, nil
		}
		return nil, err
	}

	entries := convertItems(parsed, fd)

	f.mu.Lock()
	f.cache[fd.URL] = cachedFeed{FetchedAt: time.Now(), Entries: entries}
	f.mu.Unlock()

	logger.Debugf("[rss] 已刷新 %s，共 %d 条", fd.Name, len(entries))
	return entries, nil
}

func (f *Fetcher) parseFeed(ctx context.Context, url string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Newsroom/1.0 RSS Reader")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return f.parser.Parse(io.LimitReader(resp.Body, maxFeedSize))
}

func convertItems(parsed *gofeed.Feed, fd Feed) []entry {
	n := len(parsed.Items)
	if n > defaultMaxItems {
		n = defaultMaxItems
	}

	category := strings.TrimSpace(fd.Category)
	if category == "" {
		category = article.DefaultCategory
	}

	entries := make([]entry, 0, n)
	for _, item := range parsed.Items[:n] {
		summary := item.Description
		if summary == "" {
			summary = item.Content
		}
		summary = truncate(stripHTML(summary), maxSummaryLen)

		published := time.Now()
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		entries = append(entries, entry{
			Article: article.Article{
				ID:       itemID(fd, item),
				Title:    strings.TrimSpace(item.Title),
				Excerpt:  summary,
				Category: category,
				Author:   itemAuthor(item),
				Date:     article.FormatDate(published),
				ImageURL: article.ImageOrDefault(itemImage(item)),
				ReadTime: article.ReadTimeFor(summary),
				URL:      item.Link,
			},
			Published: published,
		})
	}
	return entries
}

// itemID 以链接生成稳定 ID，同一条目多次抓取 ID 不变。
func itemID(fd Feed, item *gofeed.Item) string {
	key := item.Link
	if key == "" {
		key = item.GUID
	}
	if key == "" {
		key = fd.URL + "#" + item.Title
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func itemAuthor(item *gofeed.Item) string {
	for _, p := range item.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			return strings.TrimSpace(p.Name)
		}
	}
	return article.DefaultAuthor
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

// stripHTML 提取 HTML 片段中的纯文本，实体会被解码，连续空白合并。
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if name, _ := z.TagName(); isHiddenTag(string(name)) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isHiddenTag(string(name)) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isHiddenTag(name string) bool {
	return name == "script" || name == "style"
}

// truncate 截断字符串到指定字符数（按 UTF-8 字符计算）。
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}
