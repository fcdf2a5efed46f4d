package repository_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/article-catalogue/internal/model"
	"github.com/tuanvumaihuynh/article-catalogue/internal/repository"
	"github.com/tuanvumaihuynh/article-catalogue/internal/storage/db"
)

func newSQLiteRepository(t *testing.T) repository.ArticleRepository {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	client, err := db.NewSQLite(ctx, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.NoError(t, db.MigrateSQLite(ctx, client.DB))

	return repository.NewSQLiteArticleRepository(client.DB)
}

func TestSQLiteArticleRepository(t *testing.T) {
	ctx := context.Background()

	widget := model.Article{
		ID:    "0190b5f2-7a3c-7c1e-9b7e-3f1a2b3c4d5e",
		Name:  "Widget",
		Price: decimal.RequireFromString("9.99"),
	}
	gadget := model.Article{
		ID:    "0190b5f2-7a3c-7c1e-9b7e-3f1a2b3c4d5f",
		Name:  "Gadget",
		Price: decimal.RequireFromString("0.10"),
	}

	t.Run("Should return not found for unknown id", func(t *testing.T) {
		repo := newSQLiteRepository(t)

		_, err := repo.GetArticleByID(ctx, widget.ID)
		assert.ErrorIs(t, err, repository.ErrArticleNotFound)
	})

	t.Run("Should list nothing on empty store", func(t *testing.T) {
		repo := newSQLiteRepository(t)

		articles, err := repo.ListAllArticles(ctx)
		require.NoError(t, err)
		assert.NotNil(t, articles)
		assert.Empty(t, articles)

		count, err := repo.CountArticles(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("Should upsert and read back articles", func(t *testing.T) {
		repo := newSQLiteRepository(t)

		require.NoError(t, repo.UpsertArticle(ctx, widget))
		require.NoError(t, repo.UpsertArticle(ctx, gadget))

		got, err := repo.GetArticleByID(ctx, widget.ID)
		require.NoError(t, err)
		assert.True(t, widget.Equal(got))
		assert.Equal(t, "9.99", got.Price.String())

		articles, err := repo.ListAllArticles(ctx)
		require.NoError(t, err)
		require.Len(t, articles, 2)

		count, err := repo.CountArticles(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("Should replace existing article on upsert", func(t *testing.T) {
		repo := newSQLiteRepository(t)
		require.NoError(t, repo.UpsertArticle(ctx, widget))

		changed := widget
		changed.Name = "Widget v2"
		changed.Price = decimal.RequireFromString("19.95")
		require.NoError(t, repo.UpsertArticle(ctx, changed))

		got, err := repo.GetArticleByID(ctx, widget.ID)
		require.NoError(t, err)
		assert.True(t, changed.Equal(got))

		count, err := repo.CountArticles(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Should delete article and tolerate unknown ids", func(t *testing.T) {
		repo := newSQLiteRepository(t)
		require.NoError(t, repo.UpsertArticle(ctx, widget))

		require.NoError(t, repo.DeleteArticle(ctx, widget.ID))
		require.NoError(t, repo.DeleteArticle(ctx, widget.ID))

		_, err := repo.GetArticleByID(ctx, widget.ID)
		assert.ErrorIs(t, err, repository.ErrArticleNotFound)
	})
}
