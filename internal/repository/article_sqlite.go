package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/article-catalogue/internal/model"
)

var _ ArticleRepository = (*sqliteArticleRepository)(nil)

type sqliteArticleRepository struct {
	db *sql.DB
}

// NewSQLiteArticleRepository returns an ArticleRepository over a migrated sqlite database.
// Prices are stored as decimal text.
func NewSQLiteArticleRepository(db *sql.DB) ArticleRepository {
	return &sqliteArticleRepository{
		db: db,
	}
}

func (r sqliteArticleRepository) ListAllArticles(ctx context.Context) ([]model.Article, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT uuid, name, price FROM articles ORDER BY uuid`)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	articles := []model.Article{}
	for rows.Next() {
		article, err := scanSQLiteArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}

	return articles, nil
}

func (r sqliteArticleRepository) CountArticles(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}

	return count, nil
}

func (r sqliteArticleRepository) GetArticleByID(ctx context.Context, id string) (model.Article, error) {
	row := r.db.QueryRowContext(ctx, `SELECT uuid, name, price FROM articles WHERE uuid = ?`, id)

	article, err := scanSQLiteArticle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Article{}, ErrArticleNotFound
		}
		return model.Article{}, err
	}

	return article, nil
}

func (r sqliteArticleRepository) UpsertArticle(ctx context.Context, article model.Article) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO articles (uuid, name, price, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (uuid) DO UPDATE
		SET
			name       = excluded.name,
			price      = excluded.price,
			updated_at = excluded.updated_at;
	`, article.ID, article.Name, article.Price.String()); err != nil {
		return fmt.Errorf("upsert article: %w", err)
	}

	return nil
}

func (r sqliteArticleRepository) DeleteArticle(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE uuid = ?`, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteArticle(row rowScanner) (model.Article, error) {
	var (
		article model.Article
		price   string
	)
	if err := row.Scan(&article.ID, &article.Name, &price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Article{}, err
		}
		return model.Article{}, fmt.Errorf("scan article: %w", err)
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		return model.Article{}, fmt.Errorf("parse price of article %s: %w", article.ID, err)
	}
	article.Price = p

	return article, nil
}
