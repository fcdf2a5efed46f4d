package event

import (
	"encoding/json"
	"fmt"

	"github.com/tuanvumaihuynh/article-catalogue/internal/model"
)

type Domain string

const DomainArticle Domain = "article"

type Action string

const (
	ActionUpsert Action = "upsert"
	ActionRemove Action = "remove"
)

func (a Action) Validate() error {
	switch a {
	case ActionUpsert, ActionRemove:
		return nil
	default:
		return fmt.Errorf("unknown action: %q", string(a))
	}
}

// Operation is the change event published for downstream consumers to apply.
type Operation struct {
	Domain  Domain          `json:"domain" validate:"required,oneof=article"`
	Action  Action          `json:"action" validate:"required,enum"`
	Payload json.RawMessage `json:"payload" validate:"required"`

	// key routes all operations of one entity to the same partition.
	key string
}

// Key returns the partition key of the operation, empty when unset.
func (op Operation) Key() string { return op.key }

// NewArticleOperation captures the given state of article as an Operation.
func NewArticleOperation(action Action, article model.Article) (Operation, error) {
	payload, err := json.Marshal(article)
	if err != nil {
		return Operation{}, fmt.Errorf("marshal article: %w", err)
	}

	return Operation{
		Domain:  DomainArticle,
		Action:  action,
		Payload: payload,
		key:     article.ID,
	}, nil
}

// Article decodes the payload of an article operation.
func (op Operation) Article() (model.Article, error) {
	var article model.Article
	if err := json.Unmarshal(op.Payload, &article); err != nil {
		return model.Article{}, fmt.Errorf("unmarshal article payload: %w", err)
	}
	return article, nil
}
