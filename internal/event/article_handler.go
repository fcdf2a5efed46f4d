package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrMalformedOperation is returned for operations that can never be applied.
var ErrMalformedOperation = errors.New("malformed operation")

// Apply applies a single operation to the article store. Operations of other
// domains share the topic and are skipped.
func (s *Service) Apply(ctx context.Context, op Operation) error {
	if op.Domain != DomainArticle {
		s.logger.DebugContext(ctx, "skipping operation of foreign domain",
			slog.String("domain", string(op.Domain)))
		return nil
	}

	article, err := op.Article()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedOperation, err)
	}
	if article.ID == "" {
		return fmt.Errorf("%w: article operation %s without uuid", ErrMalformedOperation, op.Action)
	}

	switch op.Action {
	case ActionUpsert:
		if err := s.articles.UpsertArticle(ctx, article); err != nil {
			return fmt.Errorf("upsert article: %w", err)
		}
	case ActionRemove:
		if err := s.articles.DeleteArticle(ctx, article.ID); err != nil {
			return fmt.Errorf("delete article: %w", err)
		}
	default:
		s.logger.WarnContext(ctx, "skipping operation with unknown action",
			slog.String("action", string(op.Action)),
			slog.String("article_id", article.ID))
		return nil
	}

	s.logger.InfoContext(ctx, "applied article operation",
		slog.String("action", string(op.Action)),
		slog.String("article_id", article.ID))

	return nil
}
