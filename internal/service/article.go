package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/article-catalogue/internal/apperr"
	"github.com/tuanvumaihuynh/article-catalogue/internal/event"
	"github.com/tuanvumaihuynh/article-catalogue/internal/model"
	"github.com/tuanvumaihuynh/article-catalogue/internal/repository"
)

// ArticleReader is the query side of the article store.
type ArticleReader interface {
	ListAllArticles(ctx context.Context) ([]model.Article, error)
	CountArticles(ctx context.Context) (int64, error)
	GetArticleByID(ctx context.Context, id string) (model.Article, error)
}

// IDGenerator returns a new globally unique article id.
type IDGenerator func() (string, error)

// NewUUIDv7 is the default IDGenerator.
func NewUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ArticleService serves reads from the store and turns every write into an
// operation on the event bus. It never writes to the store itself.
type ArticleService interface {
	ListAllArticles(ctx context.Context) ([]model.Article, error)
	CountArticles(ctx context.Context) (int64, error)
	GetArticle(ctx context.Context, id string) (model.Article, error)
	// CreateArticle assigns a fresh id, ignoring article.ID, and publishes an upsert.
	CreateArticle(ctx context.Context, article model.Article) (model.Article, error)
	// ReplaceArticle publishes an upsert of article under id.
	ReplaceArticle(ctx context.Context, id string, article model.Article) (model.Article, error)
	// PatchArticle publishes an upsert of the current article merged with patch.
	PatchArticle(ctx context.Context, id string, patch model.ArticlePatch) (model.Article, error)
	// DeleteArticle publishes a remove carrying the last known state.
	DeleteArticle(ctx context.Context, id string) error
}

type articleService struct {
	articleRepo ArticleReader
	publisher   event.Publisher
	newID       IDGenerator
}

func NewArticleService(
	articleRepo ArticleReader,
	publisher event.Publisher,
	newID IDGenerator,
) ArticleService {
	if newID == nil {
		newID = NewUUIDv7
	}

	return &articleService{
		articleRepo: articleRepo,
		publisher:   publisher,
		newID:       newID,
	}
}

func (s *articleService) ListAllArticles(ctx context.Context) ([]model.Article, error) {
	articles, err := s.articleRepo.ListAllArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("article repository list all articles: %w", err)
	}

	return articles, nil
}

func (s *articleService) CountArticles(ctx context.Context) (int64, error) {
	count, err := s.articleRepo.CountArticles(ctx)
	if err != nil {
		return 0, fmt.Errorf("article repository count articles: %w", err)
	}

	return count, nil
}

func (s *articleService) GetArticle(ctx context.Context, id string) (model.Article, error) {
	article, err := s.articleRepo.GetArticleByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return model.Article{}, apperr.ArticleNotFoundErr
		}
		return model.Article{}, fmt.Errorf("article repository get article by id: %w", err)
	}

	return article, nil
}

func (s *articleService) CreateArticle(ctx context.Context, article model.Article) (model.Article, error) {
	id, err := s.newID()
	if err != nil {
		return model.Article{}, fmt.Errorf("generate article id: %w", err)
	}
	article.ID = id

	if err := s.publish(ctx, event.ActionUpsert, article); err != nil {
		return model.Article{}, err
	}

	return article, nil
}

func (s *articleService) ReplaceArticle(ctx context.Context, id string, article model.Article) (model.Article, error) {
	if _, err := s.GetArticle(ctx, id); err != nil {
		return model.Article{}, err
	}
	article.ID = id

	if err := s.publish(ctx, event.ActionUpsert, article); err != nil {
		return model.Article{}, err
	}

	return article, nil
}

func (s *articleService) PatchArticle(ctx context.Context, id string, patch model.ArticlePatch) (model.Article, error) {
	current, err := s.GetArticle(ctx, id)
	if err != nil {
		return model.Article{}, err
	}

	article := patch.Apply(current)

	if err := s.publish(ctx, event.ActionUpsert, article); err != nil {
		return model.Article{}, err
	}

	return article, nil
}

func (s *articleService) DeleteArticle(ctx context.Context, id string) error {
	article, err := s.GetArticle(ctx, id)
	if err != nil {
		return err
	}

	return s.publish(ctx, event.ActionRemove, article)
}

func (s *articleService) publish(ctx context.Context, action event.Action, article model.Article) error {
	op, err := event.NewArticleOperation(action, article)
	if err != nil {
		return fmt.Errorf("new article operation: %w", err)
	}

	if err := s.publisher.Publish(ctx, op); err != nil {
		return fmt.Errorf("publisher publish %s: %w", action, err)
	}

	return nil
}
