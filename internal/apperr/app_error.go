package apperr

import "github.com/tuanvumaihuynh/article-catalogue/pkg/zerror"

const (
	ValidationErrorCode      = "VALIDATION_FAILED"
	ArticleNotFoundErrorCode = "ARTICLE_NOT_FOUND"
)

var (
	ValidationErr      = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	ArticleNotFoundErr = zerror.NewNotFound(ArticleNotFoundErrorCode, "article not found")
)
