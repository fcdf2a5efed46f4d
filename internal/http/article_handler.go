package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/article-catalogue/internal/model"
	"github.com/tuanvumaihuynh/article-catalogue/internal/service"
)

const articlesPath = "/articles"

type articleHandler struct {
	articleSvc service.ArticleService
}

func newArticleHandler(articleSvc service.ArticleService) *articleHandler {
	return &articleHandler{
		articleSvc: articleSvc,
	}
}

func (h *articleHandler) ListArticles(w http.ResponseWriter, r *http.Request) error {
	articles, err := h.articleSvc.ListAllArticles(r.Context())
	if err != nil {
		return fmt.Errorf("article service list all articles: %w", err)
	}

	if articles == nil {
		articles = []model.Article{}
	}

	render.JSON(w, r, articles)
	return nil
}

func (h *articleHandler) CountArticles(w http.ResponseWriter, r *http.Request) error {
	count, err := h.articleSvc.CountArticles(r.Context())
	if err != nil {
		return fmt.Errorf("article service count articles: %w", err)
	}

	render.JSON(w, r, count)
	return nil
}

func (h *articleHandler) GetArticle(w http.ResponseWriter, r *http.Request) error {
	id, err := articleID(r)
	if err != nil {
		return err
	}

	article, err := h.articleSvc.GetArticle(r.Context(), id)
	if err != nil {
		return fmt.Errorf("article service get article: %w", err)
	}

	render.JSON(w, r, article)
	return nil
}

func (h *articleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) error {
	var body model.Article
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		return requestError{fmt.Errorf("decode article: %w", err)}
	}

	article, err := h.articleSvc.CreateArticle(r.Context(), body)
	if err != nil {
		return fmt.Errorf("article service create article: %w", err)
	}

	w.Header().Set("Location", articlesPath+"/"+article.ID)
	w.WriteHeader(http.StatusAccepted)
	return nil
}

func (h *articleHandler) ReplaceArticle(w http.ResponseWriter, r *http.Request) error {
	id, err := articleID(r)
	if err != nil {
		return err
	}

	var body model.Article
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		return requestError{fmt.Errorf("decode article: %w", err)}
	}

	if _, err := h.articleSvc.ReplaceArticle(r.Context(), id, body); err != nil {
		return fmt.Errorf("article service replace article: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *articleHandler) PatchArticle(w http.ResponseWriter, r *http.Request) error {
	id, err := articleID(r)
	if err != nil {
		return err
	}

	var patch model.ArticlePatch
	if err := render.DecodeJSON(r.Body, &patch); err != nil {
		return requestError{fmt.Errorf("decode article patch: %w", err)}
	}

	if _, err := h.articleSvc.PatchArticle(r.Context(), id, patch); err != nil {
		return fmt.Errorf("article service patch article: %w", err)
	}

	w.WriteHeader(http.StatusAccepted)
	return nil
}

func (h *articleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) error {
	id, err := articleID(r)
	if err != nil {
		return err
	}

	if err := h.articleSvc.DeleteArticle(r.Context(), id); err != nil {
		return fmt.Errorf("article service delete article: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func articleID(r *http.Request) (string, error) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Required:      true,
		})
	if err != nil {
		return "", requestError{fmt.Errorf("invalid format for parameter id: %w", err)}
	}

	return id, nil
}
