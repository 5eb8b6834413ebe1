// Package currents 是 Currents 新闻检索 API 的客户端。
package currents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iabetor/newsroom/internal/article"
	"github.com/iabetor/newsroom/internal/feed"
)

const (
	defaultTimeout = 10 * time.Second
	// maxResponseSize 单页响应上限，正常一页远小于此值。
	maxResponseSize = 4 << 20
)

var (
	// ErrNoCredential 未配置 API Key。
	ErrNoCredential = errors.New("currents: 未配置 API Key")
	// ErrBadStatus 响应 status 字段不是 ok。
	ErrBadStatus = errors.New("currents: 响应状态异常")
	// ErrResponseTooLarge 响应体超过上限。
	ErrResponseTooLarge = errors.New("currents: 响应过大")
)

// publishedLayouts Currents 返回的发布时间格式。
var publishedLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 Z0700",
	time.RFC3339,
}

// Options 客户端配置。
type Options struct {
	APIURL   string
	APIKey   string
	Language string
	Timeout  time.Duration
}

// Client Currents API 客户端。
type Client struct {
	apiURL   string
	apiKey   string
	language string
	client   *http.Client
	maxBody  int64
}

// NewClient 创建客户端。
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	lang := opts.Language
	if lang == "" {
		lang = "en"
	}
	return &Client{
		apiURL:   opts.APIURL,
		apiKey:   strings.TrimSpace(opts.APIKey),
		language: lang,
		client:   &http.Client{Timeout: timeout},
		maxBody:  maxResponseSize,
	}
}

// Enabled 是否配置了凭据。
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// searchResp /v1/search 响应。
type searchResp struct {
	Status string     `json:"status"`
	News   []newsItem `json:"news"`
}

type newsItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Author      string   `json:"author"`
	Image       string   `json:"image"`
	Category    []string `json:"category"`
	Published   string   `json:"published"`
}

// Search 检索一页新闻。
func (c *Client) Search(ctx context.Context, q feed.Query) ([]article.Article, error) {
	if !c.Enabled() {
		return nil, ErrNoCredential
	}

	u, err := c.buildURL(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求新闻失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: 超过 %d 字节", ErrResponseTooLarge, c.maxBody)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("新闻 API 返回 HTTP %d", resp.StatusCode)
	}

	var sr searchResp
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("解析新闻数据失败: %w", err)
	}
	if sr.Status != "ok" {
		return nil, fmt.Errorf("%w: %q", ErrBadStatus, sr.Status)
	}

	articles := make([]article.Article, 0, len(sr.News))
	for _, item := range sr.News {
		articles = append(articles, toArticle(item))
	}
	return articles, nil
}

func (c *Client) buildURL(q feed.Query) (string, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return "", fmt.Errorf("API 地址无效: %w", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}

	params := u.Query()
	params.Set("apiKey", c.apiKey)
	params.Set("language", c.language)
	params.Set("page_number", strconv.Itoa(page))
	if !article.IsAll(q.Category) {
		params.Set("category", strings.TrimSpace(q.Category))
	}
	if kw := strings.TrimSpace(q.Keywords); kw != "" {
		params.Set("keywords", kw)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

func toArticle(item newsItem) article.Article {
	category := article.DefaultCategory
	if len(item.Category) > 0 && item.Category[0] != "" {
		category = item.Category[0]
	}
	author := strings.TrimSpace(item.Author)
	if author == "" {
		author = article.DefaultAuthor
	}
	return article.Article{
		ID:       item.ID,
		Title:    item.Title,
		Excerpt:  item.Description,
		Category: category,
		Author:   author,
		Date:     displayDate(item.Published),
		ImageURL: article.ImageOrDefault(item.Image),
		ReadTime: article.ReadTimeFor(item.Description),
		URL:      item.URL,
	}
}

// displayDate 解析失败时保留原始字符串。
func displayDate(published string) string {
	published = strings.TrimSpace(published)
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, published); err == nil {
			return article.FormatDate(t)
		}
	}
	return published
}
