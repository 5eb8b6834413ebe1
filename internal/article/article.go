// Package article 定义新闻条目模型及展示用的辅助函数。
package article

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultImageURL 新闻源未提供封面图时使用的图片。
const DefaultImageURL = "https://images.unsplash.com/photo-1504711434969-e33886168f5c?q=80&w=2070&auto=format&fit=crop"

// DateLayout 展示日期格式，与内置文章一致。
const DateLayout = "Jan 2, 2006"

// 兜底展示值。
const (
	DefaultCategory = "General"
	DefaultAuthor   = "Unknown"
)

// Article 单条新闻。
type Article struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Category string `json:"category"`
	Author   string `json:"author"`
	Date     string `json:"date"`
	ImageURL string `json:"imageUrl"`
	ReadTime string `json:"readTime"`
	URL      string `json:"url"`
	IsLarge  bool   `json:"isLarge,omitempty"`
}

// HasImage 图片地址为空或为字面量 "None" 时视为无图。
func (a Article) HasImage() bool {
	return a.ImageURL != "" && a.ImageURL != "None"
}

// ReadTimeFor 按每 200 字符一分钟估算阅读时长。
func ReadTimeFor(text string) string {
	minutes := int(math.Ceil(float64(utf8.RuneCountInString(text)) / 200))
	return strconv.Itoa(minutes) + " min read"
}

// FormatDate 返回展示用日期。
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ImageOrDefault 归一化封面图地址。
func ImageOrDefault(url string) string {
	url = strings.TrimSpace(url)
	if url == "" || url == "None" {
		return DefaultImageURL
	}
	return url
}

// Headlines 按顺序提取标题。
func Headlines(articles []Article) []string {
	titles := make([]string, 0, len(articles))
	for _, a := range articles {
		titles = append(titles, a.Title)
	}
	return titles
}

// Clone 返回切片副本，避免调用方共享底层数组。
func Clone(articles []Article) []Article {
	if articles == nil {
		return nil
	}
	out := make([]Article, len(articles))
	copy(out, articles)
	return out
}

// Find 在列表中按 ID 查找。
func Find(articles []Article, id string) (Article, bool) {
	for _, a := range articles {
		if a.ID == id {
			return a, true
		}
	}
	return Article{}, false
}
