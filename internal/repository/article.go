package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/article-catalogue/internal/model"
	"github.com/tuanvumaihuynh/article-catalogue/internal/storage/db"
)

// ErrArticleNotFound is returned when no article matches the requested id.
var ErrArticleNotFound = errors.New("article not found")

type ArticleRepository interface {
	ListAllArticles(ctx context.Context) ([]model.Article, error)
	CountArticles(ctx context.Context) (int64, error)
	GetArticleByID(ctx context.Context, id string) (model.Article, error)
	UpsertArticle(ctx context.Context, article model.Article) error
	DeleteArticle(ctx context.Context, id string) error
}

var _ ArticleRepository = (*articleRepository)(nil)

type articleRepository struct {
	db db.DB
}

func NewArticleRepository(db db.DB) ArticleRepository {
	return &articleRepository{
		db: db,
	}
}

func (r articleRepository) ListAllArticles(ctx context.Context) ([]model.Article, error) {
	rows, err := r.db.Query(ctx, `SELECT uuid, name, price FROM articles ORDER BY uuid`)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}

	articles, err := pgx.CollectRows(rows, scanPgArticle)
	if err != nil {
		return nil, fmt.Errorf("collect articles: %w", err)
	}

	return articles, nil
}

func (r articleRepository) CountArticles(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}

	return count, nil
}

func (r articleRepository) GetArticleByID(ctx context.Context, id string) (model.Article, error) {
	rows, err := r.db.Query(ctx, `SELECT uuid, name, price FROM articles WHERE uuid = $1`, id)
	if err != nil {
		return model.Article{}, fmt.Errorf("query article: %w", err)
	}

	article, err := pgx.CollectExactlyOneRow(rows, scanPgArticle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Article{}, ErrArticleNotFound
		}
		return model.Article{}, fmt.Errorf("collect article: %w", err)
	}

	return article, nil
}

func (r articleRepository) UpsertArticle(ctx context.Context, article model.Article) error {
	var price pgtype.Numeric
	if err := price.Scan(article.Price.String()); err != nil {
		return fmt.Errorf("scan price: %w", err)
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO articles (uuid, name, price, updated_at)
		VALUES (@uuid, @name, @price, NOW())
		ON CONFLICT (uuid) DO UPDATE
		SET
			name       = EXCLUDED.name,
			price      = EXCLUDED.price,
			updated_at = EXCLUDED.updated_at;
	`, pgx.NamedArgs{
		"uuid":  article.ID,
		"name":  article.Name,
		"price": price,
	}); err != nil {
		return fmt.Errorf("upsert article: %w", err)
	}

	return nil
}

// DeleteArticle removes the article. Deleting an unknown id is not an error.
func (r articleRepository) DeleteArticle(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM articles WHERE uuid = $1`, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}

	return nil
}

func scanPgArticle(row pgx.CollectableRow) (model.Article, error) {
	var (
		article model.Article
		price   pgtype.Numeric
	)
	if err := row.Scan(&article.ID, &article.Name, &price); err != nil {
		return model.Article{}, err
	}

	p, err := numericToDecimal(price)
	if err != nil {
		return model.Article{}, fmt.Errorf("article %s: %w", article.ID, err)
	}
	article.Price = p

	return article, nil
}

func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Decimal{}, errors.New("price is not a finite number")
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}
