package zerror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/article-catalogue/pkg/zerror"
)

func TestZError(t *testing.T) {
	notFound := zerror.NewNotFound("ARTICLE_NOT_FOUND", "article not found")

	t.Run("Should match wrapped error with errors.Is", func(t *testing.T) {
		err := fmt.Errorf("get article: %w", notFound)
		assert.ErrorIs(t, err, notFound)
	})

	t.Run("Should match after parent is attached", func(t *testing.T) {
		parent := errors.New("no rows")
		err := fmt.Errorf("get article: %w", notFound.WrapParent(parent))

		assert.ErrorIs(t, err, notFound)
		assert.ErrorIs(t, err, parent)
	})

	t.Run("Should not match a different code", func(t *testing.T) {
		other := zerror.NewNotFound("USER_NOT_FOUND", "user not found")
		assert.NotErrorIs(t, notFound, other)
	})

	t.Run("Should extract fields with errors.As", func(t *testing.T) {
		var zErr zerror.ZError
		err := fmt.Errorf("wrap: %w", notFound)

		assert.True(t, errors.As(err, &zErr))
		assert.Equal(t, zerror.StatusNotFound, zErr.Status())
		assert.Equal(t, "ARTICLE_NOT_FOUND", zErr.Code())
		assert.Equal(t, "article not found", zErr.Msg())
	})

	t.Run("Should format error message with parent", func(t *testing.T) {
		err := notFound.WrapParent(errors.New("boom"))
		assert.Equal(t, "ARTICLE_NOT_FOUND: article not found: boom", err.Error())
		assert.Equal(t, "ARTICLE_NOT_FOUND: article not found", notFound.Error())
	})

	t.Run("Should leave the predefined error untouched when wrapping", func(t *testing.T) {
		_ = notFound.WrapParent(errors.New("boom"))
		assert.Nil(t, notFound.Parent())
	})

	t.Run("Should drop parent when wrapping nil", func(t *testing.T) {
		err := notFound.WrapParent(errors.New("boom")).WrapParent(nil)
		assert.Nil(t, err.Parent())
	})

	t.Run("Should build arbitrary statuses", func(t *testing.T) {
		err := zerror.New(zerror.StatusServiceUnavailable, "STORE_UNAVAILABLE", "article store unavailable")
		assert.Equal(t, zerror.StatusServiceUnavailable, err.Status())
		assert.NotErrorIs(t, err, notFound)
	})
}
