package store

import (
	"context"
	"fmt"

	"github.com/iabetor/newsroom/internal/database"
)

// SubscriberStore 邮件订阅者。
type SubscriberStore struct {
	db *database.DB
}

func NewSubscriberStore(db *database.DB) *SubscriberStore {
	return &SubscriberStore{db: db}
}

// Add 添加订阅邮箱；已存在时 created 为 false。
func (s *SubscriberStore) Add(ctx context.Context, email string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO newsletter_subscribers (email) VALUES (?) ON CONFLICT(email) DO NOTHING`, email)
	if err != nil {
		return false, fmt.Errorf("保存订阅失败: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("保存订阅失败: %w", err)
	}
	return n > 0, nil
}

func (s *SubscriberStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM newsletter_subscribers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("统计订阅失败: %w", err)
	}
	return n, nil
}
