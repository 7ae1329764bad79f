package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":                  {"type": "long"},
      "title":               {"type": "text"},
      "instructions":        {"type": "text"},
      "minutes_to_complete": {"type": "integer"},
      "user_id":             {"type": "long"}
    }
  }
}`

type recipeDoc struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	Instructions      string `json:"instructions"`
	MinutesToComplete int    `json:"minutes_to_complete"`
	UserID            *int64 `json:"user_id"`
}

// RecipeIndex stores recipes in Elasticsearch for free-text search.
type RecipeIndex struct {
	es     *elasticsearch.Client
	index  string
	logger *logrus.Logger
}

func NewRecipeIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *RecipeIndex {
	return &RecipeIndex{es: es, index: index, logger: logger}
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (ix *RecipeIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := ix.es.Indices.Exists([]string{ix.index}, ix.es.Indices.Exists.WithContext(c))
	if err != nil {
		return fmt.Errorf("check index %s: %w", ix.index, err)
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("check index %s: %s", ix.index, res.Status())
	}

	res, err = ix.es.Indices.Create(ix.index,
		ix.es.Indices.Create.WithContext(c),
		ix.es.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", ix.index, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", ix.index, res.Status())
	}
	ix.logger.WithField("index", ix.index).Info("search index created")
	return nil
}

func (ix *RecipeIndex) Index(ctx context.Context, rec *entity.Recipe) error {
	b, err := json.Marshal(recipeDoc{
		ID:                rec.ID,
		Title:             rec.Title,
		Instructions:      rec.Instructions,
		MinutesToComplete: rec.MinutesToComplete,
		UserID:            rec.UserID,
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      ix.index,
		DocumentID: strconv.FormatInt(rec.ID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, ix.es)
	if err != nil {
		return fmt.Errorf("index recipe %d: %w", rec.ID, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index recipe %d: %s", rec.ID, res.Status())
	}
	return nil
}

// RecipeCreated indexes the recipe right away, for setups without a queue.
func (ix *RecipeIndex) RecipeCreated(ctx context.Context, rec *entity.Recipe) error {
	return ix.Index(ctx, rec)
}

// Search runs a multi_match on title and instructions restricted to userID.
func (ix *RecipeIndex) Search(ctx context.Context, userID int64, q string, size int) ([]entity.Recipe, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^2", "instructions"},
					},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"user_id": userID}},
				},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := ix.es.Search(
		ix.es.Search.WithContext(c),
		ix.es.Search.WithIndex(ix.index),
		ix.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", ix.index, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source recipeDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.Recipe, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		d := h.Source
		out = append(out, entity.Recipe{
			ID:                d.ID,
			Title:             d.Title,
			Instructions:      d.Instructions,
			MinutesToComplete: d.MinutesToComplete,
			UserID:            d.UserID,
		})
	}
	return out, nil
}
