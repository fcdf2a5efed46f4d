package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/article-catalogue/internal/apperr"
	"github.com/tuanvumaihuynh/article-catalogue/internal/event"
	"github.com/tuanvumaihuynh/article-catalogue/internal/model"
	"github.com/tuanvumaihuynh/article-catalogue/internal/repository"
	"github.com/tuanvumaihuynh/article-catalogue/internal/service"
	"github.com/tuanvumaihuynh/article-catalogue/pkg/optional"
)

type mockArticleReader struct {
	mock.Mock
}

func (m *mockArticleReader) ListAllArticles(ctx context.Context) ([]model.Article, error) {
	args := m.Called(ctx)
	articles, _ := args.Get(0).([]model.Article)
	return articles, args.Error(1)
}

func (m *mockArticleReader) CountArticles(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockArticleReader) GetArticleByID(ctx context.Context, id string) (model.Article, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Article), args.Error(1)
}

// recordingPublisher keeps every published operation; safe for concurrent use.
type recordingPublisher struct {
	mu  sync.Mutex
	ops []event.Operation
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, op event.Operation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.ops = append(p.ops, op)
	return nil
}

func (p *recordingPublisher) published() []event.Operation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.Operation(nil), p.ops...)
}

const widgetID = "0190b5f2-7a3c-7c1e-9b7e-3f1a2b3c4d5e"

var widget = model.Article{
	ID:    widgetID,
	Name:  "Widget",
	Price: decimal.RequireFromString("4.50"),
}

func setup(t *testing.T) (*mockArticleReader, *recordingPublisher, service.ArticleService) {
	t.Helper()

	repo := new(mockArticleReader)
	publisher := &recordingPublisher{}
	svc := service.NewArticleService(repo, publisher, nil)

	return repo, publisher, svc
}

func payloadOf(t *testing.T, op event.Operation) model.Article {
	t.Helper()
	article, err := op.Article()
	require.NoError(t, err)
	return article
}

func TestArticleServiceReads(t *testing.T) {
	ctx := context.Background()

	t.Run("Should list all articles", func(t *testing.T) {
		repo, publisher, svc := setup(t)
		repo.On("ListAllArticles", mock.Anything).Return([]model.Article{widget}, nil).Once()

		articles, err := svc.ListAllArticles(ctx)
		require.NoError(t, err)
		assert.Len(t, articles, 1)
		assert.Empty(t, publisher.published())
	})

	t.Run("Should count articles", func(t *testing.T) {
		repo, _, svc := setup(t)
		repo.On("CountArticles", mock.Anything).Return(int64(7), nil).Once()

		count, err := svc.CountArticles(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(7), count)
	})

	t.Run("Should get article with matching id", func(t *testing.T) {
		repo, _, svc := setup(t)
		repo.On("GetArticleByID", mock.Anything, widgetID).Return(widget, nil).Once()

		article, err := svc.GetArticle(ctx, widgetID)
		require.NoError(t, err)
		assert.Equal(t, widgetID, article.ID)
	})

	t.Run("Should map missing article to not found", func(t *testing.T) {
		repo, _, svc := setup(t)
		repo.On("GetArticleByID", mock.Anything, "missing").
			Return(model.Article{}, repository.ErrArticleNotFound).Once()

		_, err := svc.GetArticle(ctx, "missing")
		assert.ErrorIs(t, err, apperr.ArticleNotFoundErr)
	})

	t.Run("Should wrap other repository errors", func(t *testing.T) {
		repo, _, svc := setup(t)
		dbErr := errors.New("connection reset")
		repo.On("GetArticleByID", mock.Anything, widgetID).Return(model.Article{}, dbErr).Once()

		_, err := svc.GetArticle(ctx, widgetID)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, apperr.ArticleNotFoundErr)
	})
}

func TestArticleServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Should assign a new id and publish upsert", func(t *testing.T) {
		_, publisher, svc := setup(t)

		body := model.Article{ID: "client-supplied", Name: "Gadget", Price: decimal.RequireFromString("1.25")}
		created, err := svc.CreateArticle(ctx, body)
		require.NoError(t, err)

		assert.NotEmpty(t, created.ID)
		assert.NotEqual(t, "client-supplied", created.ID)

		ops := publisher.published()
		require.Len(t, ops, 1)
		assert.Equal(t, event.ActionUpsert, ops[0].Action)
		assert.Equal(t, event.DomainArticle, ops[0].Domain)
		assert.True(t, created.Equal(payloadOf(t, ops[0])))
	})

	t.Run("Should generate distinct ids", func(t *testing.T) {
		_, _, svc := setup(t)

		a, err := svc.CreateArticle(ctx, model.Article{Name: "a"})
		require.NoError(t, err)
		b, err := svc.CreateArticle(ctx, model.Article{Name: "b"})
		require.NoError(t, err)

		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("Should use injected id generator", func(t *testing.T) {
		publisher := &recordingPublisher{}
		svc := service.NewArticleService(new(mockArticleReader), publisher, func() (string, error) {
			return "fixed-id", nil
		})

		created, err := svc.CreateArticle(ctx, model.Article{Name: "x"})
		require.NoError(t, err)
		assert.Equal(t, "fixed-id", created.ID)
	})

	t.Run("Should fail when id generation fails", func(t *testing.T) {
		publisher := &recordingPublisher{}
		genErr := errors.New("entropy exhausted")
		svc := service.NewArticleService(new(mockArticleReader), publisher, func() (string, error) {
			return "", genErr
		})

		_, err := svc.CreateArticle(ctx, model.Article{Name: "x"})
		assert.ErrorIs(t, err, genErr)
		assert.Empty(t, publisher.published())
	})

	t.Run("Should propagate publish failure", func(t *testing.T) {
		_, publisher, svc := setup(t)
		publisher.err = errors.New("broker down")

		_, err := svc.CreateArticle(ctx, model.Article{Name: "x"})
		assert.ErrorIs(t, err, publisher.err)
	})
}

func TestArticleServiceReplace(t *testing.T) {
	ctx := context.Background()

	t.Run("Should publish upsert under the path id", func(t *testing.T) {
		repo, publisher, svc := setup(t)
		repo.On("GetArticleByID", mock.Anything, widgetID).Return(widget, nil).Once()

		body := model.Article{ID: "other-id", Name: "Replaced", Price: decimal.RequireFromString("3")}
		replaced, err := svc.ReplaceArticle(ctx, widgetID, body)
		require.NoError(t, err)
		assert.Equal(t, widgetID, replaced.ID)

		ops := publisher.published()
		require.Len(t, ops, 1)
		assert.Equal(t, event.ActionUpsert, ops[0].Action)

		payload := payloadOf(t, ops[0])
		assert.Equal(t, widgetID, payload.ID)
		assert.Equal(t, "Replaced", payload.Name)
		assert.True(t, decimal.RequireFromString("3").Equal(payload.Price))
	})

	t.Run("Should fail with not found and publish nothing", func(t *testing.T) {
		repo, publisher, svc := setup(t)
		repo.On("GetArticleByID", mock.Anything, "missing").
			Return(model.Article{}, repository.ErrArticleNotFound).Once()

		_, err := svc.ReplaceArticle(ctx, "missing", model.Article{Name: "x"})
		assert.ErrorIs(t, err, apperr.ArticleNotFoundErr)
		assert.Empty(t, publisher.published())
	})

	t.Run("Should publish one upsert per concurrent replace", func(t *testing.T) {
		repo, publisher, svc := setup(t)
		repo.On("GetArticleByID", mock.Anything, widgetID).Return(widget, nil)

		const n = 20
		var wg sync.WaitGroup
		for i := range n {
			wg.Go(func() {
				_, err := svc.ReplaceArticle(ctx, widgetID, model.Article{
					Name:  "concurrent",
					Price: decimal.NewFromInt(int64(i)),
				})
				assert.NoError(t, err)
			})
		}
		wg.Wait()

		ops := publisher.published()
		require.Len(t, ops, n)

		seen := map[string]bool{}
		for _, op := range ops {
			assert.Equal(t, event.ActionUpsert, op.Action)
			payload := payloadOf(t, op)
			assert.Equal(t, widgetID, payload.ID)
			seen[payload.Price.String()] = true
		}
		assert.Len(t, seen, n)
	})
}

func TestArticleServicePatch(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		patch    model.ArticlePatch
		expected model.Article
	}{
		{
			name:  "price only keeps name",
			patch: model.ArticlePatch{Price: optional.Of(decimal.RequireFromString("9.99"))},
			expected: model.Article{
				ID: widgetID, Name: "Widget", Price: decimal.RequireFromString("9.99"),
			},
		},
		{
			name:  "name only keeps price",
			patch: model.ArticlePatch{Name: optional.Of("New")},
			expected: model.Article{
				ID: widgetID, Name: "New", Price: widget.Price,
			},
		},
		{
			name:     "null price keeps price",
			patch:    model.ArticlePatch{Price: optional.Null[decimal.Decimal]()},
			expected: widget,
		},
		{
			name:     "no recognised field keeps article unchanged",
			patch:    model.ArticlePatch{},
			expected: widget,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo, publisher, svc := setup(t)
			repo.On("GetArticleByID", mock.Anything, widgetID).Return(widget, nil).Once()

			patched, err := svc.PatchArticle(ctx, widgetID, tc.patch)
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(patched))

			ops := publisher.published()
			require.Len(t, ops, 1)
			assert.Equal(t, event.ActionUpsert, ops[0].Action)
			assert.True(t, tc.expected.Equal(payloadOf(t, ops[0])))
		})
	}

	t.Run("Should fail with not found and publish nothing", func(t *testing.T) {
		repo, publisher, svc := setup(t)
		repo.On("GetArticleByID", mock.Anything, "missing").
			Return(model.Article{}, repository.ErrArticleNotFound).Once()

		_, err := svc.PatchArticle(ctx, "missing", model.ArticlePatch{Name: optional.Of("x")})
		assert.ErrorIs(t, err, apperr.ArticleNotFoundErr)
		assert.Empty(t, publisher.published())
	})
}

func TestArticleServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Should publish exactly one remove with last known state", func(t *testing.T) {
		repo, publisher, svc := setup(t)
		repo.On("GetArticleByID", mock.Anything, widgetID).Return(widget, nil).Once()

		require.NoError(t, svc.DeleteArticle(ctx, widgetID))

		ops := publisher.published()
		require.Len(t, ops, 1)
		assert.Equal(t, event.ActionRemove, ops[0].Action)
		assert.True(t, widget.Equal(payloadOf(t, ops[0])))
		repo.AssertExpectations(t)
	})

	t.Run("Should fail with not found and publish nothing", func(t *testing.T) {
		repo, publisher, svc := setup(t)
		repo.On("GetArticleByID", mock.Anything, "missing").
			Return(model.Article{}, repository.ErrArticleNotFound).Once()

		err := svc.DeleteArticle(ctx, "missing")
		assert.ErrorIs(t, err, apperr.ArticleNotFoundErr)
		assert.Empty(t, publisher.published())
	})
}
