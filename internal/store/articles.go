// Package store 提供基于 SQLite 的文章缓存与订阅者存储。
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iabetor/newsroom/internal/article"
	"github.com/iabetor/newsroom/internal/database"
)

// ArticleStore 文章缓存，供详情页按 ID 回查。
type ArticleStore struct {
	db *database.DB
}

// NewArticleStore 创建文章缓存。
func NewArticleStore(db *database.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// SaveAll 按 ID upsert 一批文章。
func (s *ArticleStore) SaveAll(ctx context.Context, articles []article.Article) error {
	if len(articles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO articles (id, title, excerpt, category, author, date, image_url, read_time, url, is_large, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			excerpt = excluded.excerpt,
			category = excluded.category,
			author = excluded.author,
			date = excluded.date,
			image_url = excluded.image_url,
			read_time = excluded.read_time,
			url = excluded.url,
			is_large = excluded.is_large,
			fetched_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("准备语句失败: %w", err)
	}
	defer stmt.Close()

	for _, a := range articles {
		if a.ID == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, a.ID, a.Title, a.Excerpt, a.Category, a.Author,
			a.Date, a.ImageURL, a.ReadTime, a.URL, a.IsLarge); err != nil {
			return fmt.Errorf("保存文章 %s 失败: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// Accept 实现 feed.Sink。
func (s *ArticleStore) Accept(ctx context.Context, articles []article.Article) error {
	return s.SaveAll(ctx, articles)
}

// Get 按 ID 查询，不存在时返回 nil, nil。
func (s *ArticleStore) Get(ctx context.Context, id string) (*article.Article, error) {
	var a article.Article
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, excerpt, category, author, date, image_url, read_time, url, is_large
		FROM articles WHERE id = ?`, id).Scan(
		&a.ID, &a.Title, &a.Excerpt, &a.Category, &a.Author,
		&a.Date, &a.ImageURL, &a.ReadTime, &a.URL, &a.IsLarge,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	return &a, nil
}

// Count 缓存的文章数量。
func (s *ArticleStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("统计文章失败: %w", err)
	}
	return n, nil
}
