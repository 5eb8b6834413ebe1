// Package rss 以 RSS/Atom 订阅源作为新闻检索来源。
package rss

import (
	"time"

	"github.com/iabetor/newsroom/internal/article"
)

// Feed 订阅源配置。
type Feed struct {
	Name     string
	URL      string
	Category string
}

// entry 订阅源条目，保留发布时间用于排序。
type entry struct {
	article.Article
	Published time.Time
}
