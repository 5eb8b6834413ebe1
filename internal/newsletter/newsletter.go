// Package newsletter 处理首页邮件订阅表单。
package newsletter

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/iabetor/newsroom/internal/logger"
)

// ErrInvalidEmail 邮箱格式不正确。
var ErrInvalidEmail = errors.New("newsletter: 邮箱地址无效")

// Status 订阅表单状态。
type Status int

const (
	// StatusIdle 未提交或提交了空邮箱。
	StatusIdle Status = iota
	// StatusSubscribed 订阅成功（包括重复订阅）。
	StatusSubscribed
	// StatusInvalid 上次提交的邮箱无效。
	StatusInvalid
)

var statusNames = [...]string{"idle", "success", "invalid"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Repository 订阅者持久化。
type Repository interface {
	Add(ctx context.Context, email string) (bool, error)
}

// Service 订阅服务。
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Subscribe 提交订阅。空输入不做任何事，重复订阅视为成功。
func (s *Service) Subscribe(ctx context.Context, email string) (Status, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return StatusIdle, nil
	}

	normalized, err := Normalize(email)
	if err != nil {
		return StatusInvalid, err
	}

	created, err := s.repo.Add(ctx, normalized)
	if err != nil {
		return StatusIdle, fmt.Errorf("订阅失败: %w", err)
	}
	if created {
		logger.Infof("[newsletter] 新订阅: %s", normalized)
	} else {
		logger.Debugf("[newsletter] 重复订阅: %s", normalized)
	}
	return StatusSubscribed, nil
}

// Normalize 校验并转为小写的纯地址（去掉显示名）。
func Normalize(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", ErrInvalidEmail
	}
	at := strings.LastIndex(addr.Address, "@")
	if at <= 0 || !strings.Contains(addr.Address[at+1:], ".") {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}
