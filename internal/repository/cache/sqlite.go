package cache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"time"

	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
	"github.com/jaennil/guide_helper/backend/offline/pkg/logger"
	"github.com/jaennil/guide_helper/backend/offline/pkg/metrics"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

type SQLiteCache struct {
	db     *sql.DB
	logger logger.Logger
}

func NewSQLiteCache(path string, l logger.Logger) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, err
	}

	c := &SQLiteCache{
		db:     db,
		logger: l,
	}

	err = c.runMigrations()
	if err != nil {
		db.Close()
		return nil, err
	}

	l.Info("sqlite cache initialized", "path", path)

	return c, nil
}

func (c *SQLiteCache) runMigrations() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	err := goose.SetDialect("sqlite3")
	if err != nil {
		return err
	}

	err = goose.Up(c.db, "migrations")
	if err != nil {
		return err
	}

	return nil
}

var _ ResourceCache = (*SQLiteCache)(nil)

func (c *SQLiteCache) Get(ctx context.Context, k resource.Key) (Entry, bool, error) {
	c.logger.Debug("sqlite cache get", "key", k.String())
	defer observe("sqlite", "get", time.Now())

	query := `SELECT data, expires
	FROM resource_cache
	WHERE kind = ? AND url_template = ? AND ratio = ? AND z = ? AND x = ? AND y = ?`

	var (
		data    []byte
		expires sql.NullInt64
	)
	err := c.db.QueryRowContext(ctx, query, int(k.Kind), k.Template, k.Ratio, k.Z, k.X, k.Y).Scan(&data, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		c.logger.Error("sqlite cache get failed", "key", k.String(), "error", err)
		return Entry{}, false, err
	}

	e := Entry{Data: data}
	if expires.Valid {
		e.Expires = time.Unix(0, expires.Int64)
	}

	return e, true, nil
}

func (c *SQLiteCache) Set(ctx context.Context, k resource.Key, v Entry) error {
	c.logger.Debug("sqlite cache set", "key", k.String(), "size", len(v.Data))
	defer observe("sqlite", "set", time.Now())

	query := `INSERT INTO resource_cache (kind, url_template, ratio, z, x, y, data, expires)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(kind, url_template, ratio, z, x, y) DO UPDATE SET data = excluded.data, expires = excluded.expires`

	var expires sql.NullInt64
	if !v.Expires.IsZero() {
		expires = sql.NullInt64{Int64: v.Expires.UnixNano(), Valid: true}
	}

	_, err := c.db.ExecContext(ctx, query, int(k.Kind), k.Template, k.Ratio, k.Z, k.X, k.Y, v.Data, expires)
	if err != nil {
		c.logger.Error("sqlite cache set failed", "key", k.String(), "error", err)
		return err
	}

	return nil
}

func (c *SQLiteCache) Clear(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM resource_cache`)
	if err != nil {
		c.logger.Error("sqlite cache clear failed", "error", err)
		return err
	}

	c.logger.Info("sqlite cache cleared")
	return nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

func observe(backend, operation string, start time.Time) {
	metrics.CacheOperationDuration.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
}
