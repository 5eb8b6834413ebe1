package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iabetor/newsroom/internal/logger"
	_ "modernc.org/sqlite"
)

// DB 是 newsroom 共享的 SQLite 连接。
type DB struct {
	*sql.DB
	path string
}

// Open 打开或创建数据库。
// dbPath 为空时使用 ~/.newsroom/newsroom.db；":memory:" 用于测试。
func Open(dbPath string) (*DB, error) {
	if dbPath == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			dbPath = filepath.Join(home, ".newsroom", "newsroom.db")
		} else {
			dbPath = "./newsroom.db"
		}
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("创建数据库目录失败: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	if dbPath == ":memory:" {
		// 每个连接各有一份内存库，限制为单连接
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("执行 %s 失败: %w", p, err)
		}
	}

	logger.Infof("[database] 数据库已打开: %s", dbPath)
	return &DB{DB: db, path: dbPath}, nil
}

// Path 返回数据库文件路径。
func (db *DB) Path() string {
	return db.path
}

// Migrate 创建表和索引，可重复执行。
func (db *DB) Migrate() error {
	migrations := []string{
		// 文章缓存：详情页按 ID 回查
		`CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			excerpt TEXT DEFAULT '',
			category TEXT DEFAULT '',
			author TEXT DEFAULT '',
			date TEXT DEFAULT '',
			image_url TEXT DEFAULT '',
			read_time TEXT DEFAULT '',
			url TEXT NOT NULL,
			is_large BOOLEAN DEFAULT 0,
			fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		// 邮件订阅
		`CREATE TABLE IF NOT EXISTS newsletter_subscribers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_fetched_at ON articles(fetched_at)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			logger.Warnf("[database] 创建索引失败: %v", err)
		}
	}

	logger.Info("[database] 数据库迁移完成")
	return nil
}

// Close 关闭数据库连接。
func (db *DB) Close() error {
	if db.DB != nil {
		return db.DB.Close()
	}
	return nil
}
