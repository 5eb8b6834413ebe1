package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/iabetor/newsroom/internal/article"
	"github.com/iabetor/newsroom/internal/config"
	"github.com/iabetor/newsroom/internal/currents"
	"github.com/iabetor/newsroom/internal/database"
	"github.com/iabetor/newsroom/internal/events"
	"github.com/iabetor/newsroom/internal/feed"
	"github.com/iabetor/newsroom/internal/logger"
	"github.com/iabetor/newsroom/internal/newsletter"
	"github.com/iabetor/newsroom/internal/rss"
	"github.com/iabetor/newsroom/internal/store"
	"github.com/iabetor/newsroom/internal/web"
)

func main() {
	configPath := flag.String("config", "configs/newsroom.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Errorf("[main] %v", err)
		os.Exit(1)
	}
	logger.Info("[main] Newsroom 已停止")
}

func run(cfg *config.Config) error {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return err
	}

	articles := store.NewArticleStore(db)
	// 内置文章也写入缓存，详情页深链接始终可用
	if err := articles.SaveAll(context.Background(), article.FallbackAll()); err != nil {
		return fmt.Errorf("写入内置文章失败: %w", err)
	}

	source, live := newSource(cfg)
	if live && cfg.News.SnapshotTTL > 0 {
		source = feed.NewSnapshotSource(source, time.Duration(cfg.News.SnapshotTTL)*time.Second)
	}
	publisher := events.NewPublisher(cfg.Events.Brokers, cfg.Events.Topic)
	defer publisher.Close()

	newFeed := func() *feed.Controller {
		return feed.NewController(source, live, articles, publisher)
	}
	srv, err := web.New(newFeed, articles, newsletter.NewService(store.NewSubscriberStore(db)), web.Options{
		SessionTTL: time.Duration(cfg.Server.SessionTTL) * time.Minute,
		RateLimit:  cfg.Server.RateLimit.RPS,
		Burst:      cfg.Server.RateLimit.Burst,
		TrustProxy: cfg.Server.TrustProxy,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Z.Info("[main] Newsroom 启动",
			zap.String("addr", cfg.Server.Addr),
			zap.String("provider", cfg.News.Provider),
			zap.Bool("live", live),
			zap.Bool("events", publisher.Enabled()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 监听系统信号，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Infof("[main] 收到信号 %v，正在关闭...", sig)
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("HTTP 服务出错: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("关闭 HTTP 服务失败: %w", err)
	}
	return nil
}

// newSource 按配置选择新闻源；没有可用凭据或订阅源时只展示内置内容。
func newSource(cfg *config.Config) (feed.Source, bool) {
	timeout := time.Duration(cfg.News.Timeout) * time.Second

	switch cfg.News.Provider {
	case "rss":
		feeds := make([]rss.Feed, 0, len(cfg.News.RSS.Feeds))
		for _, f := range cfg.News.RSS.Feeds {
			feeds = append(feeds, rss.Feed{Name: f.Name, URL: f.URL, Category: f.Category})
		}
		f := rss.NewFetcher(feeds, rss.Options{
			CacheTTL: time.Duration(cfg.News.RSS.CacheTTL) * time.Minute,
			PageSize: cfg.News.RSS.PageSize,
			Timeout:  timeout,
		})
		if !f.Enabled() {
			logger.Warn("[main] 未配置 RSS 订阅源，使用内置新闻")
		}
		return f, f.Enabled()
	default:
		c := currents.NewClient(currents.Options{
			APIURL:   cfg.News.APIURL,
			APIKey:   cfg.News.APIKey,
			Language: cfg.News.Language,
			Timeout:  timeout,
		})
		if !c.Enabled() {
			logger.Warnf("[main] 未设置 %s，使用内置新闻", config.APIKeyEnv)
		}
		return c, c.Enabled()
	}
}
