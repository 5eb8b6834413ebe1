// Package events 将检索到的文章发布到 Kafka，供下游归档或分析。
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/iabetor/newsroom/internal/article"
	"github.com/iabetor/newsroom/internal/logger"
)

// messageWriter kafka.Writer 中用到的部分，便于测试替换。
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher 文章事件发布器。brokers 为空时为 no-op。
type Publisher struct {
	writer messageWriter
	topic  string
}

// NewPublisher 创建发布器。
func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 {
		return &Publisher{topic: topic}
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // 同一文章 ID 落到同一分区
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		MaxAttempts:  3,
		ErrorLogger:  kafka.LoggerFunc(logger.Warnf),
	}
	logger.Infof("[events] Kafka 发布器已初始化: brokers=%v topic=%s", brokers, topic)
	return &Publisher{writer: w, topic: topic}
}

// Enabled 是否实际发布。
func (p *Publisher) Enabled() bool {
	return p.writer != nil
}

// Accept 实现 feed.Sink：每篇文章一条消息，以 ID 为 key。
func (p *Publisher) Accept(ctx context.Context, articles []article.Article) error {
	if p.writer == nil || len(articles) == 0 {
		return nil
	}
	msgs, err := buildMessages(articles, time.Now())
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("写入 Kafka 失败: %w", err)
	}
	logger.Debugf("[events] 已发布 %d 篇文章到 %s", len(msgs), p.topic)
	return nil
}

func buildMessages(articles []article.Article, now time.Time) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(articles))
	for _, a := range articles {
		value, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("序列化文章 %s 失败: %w", a.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(a.ID),
			Value: value,
			Time:  now,
		})
	}
	return msgs, nil
}

// Close 关闭底层 writer。
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
