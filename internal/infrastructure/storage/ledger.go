package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"NewsMirror/internal/domain"
	"NewsMirror/internal/ports"
)

const announcementsTable = "announced_articles"

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS announced_articles (
	article_id   TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	announced_at TEXT NOT NULL,
	PRIMARY KEY (article_id, content_hash)
);`

// SQLiteLedger remembers announced article revisions in a local SQLite file.
type SQLiteLedger struct {
	db *sql.DB
}

var _ ports.AnnouncementLedger = (*SQLiteLedger)(nil)

// OpenLedger opens (and creates if needed) the ledger database at path.
func OpenLedger(ctx context.Context, path string) (*SQLiteLedger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// one writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, ledgerSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize ledger schema: %w", err)
	}

	return &SQLiteLedger{db: db}, nil
}

// AlreadyAnnounced reports whether this revision of the article was posted before.
func (l *SQLiteLedger) AlreadyAnnounced(ctx context.Context, articleID, contentHash string) (bool, error) {
	query, args, err := sq.Select("1").
		From(announcementsTable).
		Where(sq.Eq{"article_id": articleID, "content_hash": contentHash}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build announcement query: %w", err)
	}

	var found int
	err = l.db.QueryRowContext(ctx, query, args...).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query announcement: %w", err)
	}
	return true, nil
}

// MarkAnnounced upserts the announcement.
func (l *SQLiteLedger) MarkAnnounced(ctx context.Context, announcement domain.Announcement) error {
	query, args, err := sq.Insert(announcementsTable).
		Columns("article_id", "content_hash", "title", "announced_at").
		Values(
			announcement.ArticleID,
			announcement.ContentHash,
			announcement.Title,
			announcement.AnnouncedAt.UTC().Format(time.RFC3339),
		).
		Suffix("ON CONFLICT (article_id, content_hash) DO UPDATE SET title = excluded.title, announced_at = excluded.announced_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build announcement insert: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert announcement: %w", err)
	}
	return nil
}

// Recent returns the latest announcements, newest first.
func (l *SQLiteLedger) Recent(ctx context.Context, limit uint64) ([]domain.Announcement, error) {
	query, args, err := sq.Select("article_id", "content_hash", "title", "announced_at").
		From(announcementsTable).
		OrderBy("announced_at DESC", "article_id DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent query: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var result []domain.Announcement
	for rows.Next() {
		var (
			a   domain.Announcement
			raw string
		)
		if err := rows.Scan(&a.ArticleID, &a.ContentHash, &a.Title, &raw); err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		if parsed := domain.ParseInstant(raw); parsed != nil {
			a.AnnouncedAt = *parsed
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}

func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
