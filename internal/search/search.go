package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/storefront/internal/models"
)

type Config struct {
	URL      string
	Username string
	Password string
	Index    string
}

// Index keeps item documents in one Elasticsearch index.
type Index struct {
	ES   *elasticsearch.Client
	Name string
}

func NewClient(ctx context.Context, cfg Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("info", res)
	}
	return client, nil
}

const mapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "long"},
      "title":       {"type": "text"},
      "description": {"type": "text"},
      "price":       {"type": "scaled_float", "scaling_factor": 100},
      "image":       {"type": "keyword"},
      "created_at":  {"type": "date"},
      "category": {
        "properties": {
          "id":   {"type": "long"},
          "name": {"type": "text"},
          "slug": {"type": "keyword"}
        }
      }
    }
  }
}`

// EnsureIndex creates the index with the item mapping if it does not exist.
func (ix *Index) EnsureIndex(ctx context.Context) error {
	res, err := ix.ES.Indices.Exists([]string{ix.Name}, ix.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return responseError("index exists", res)
	}

	res, err = ix.ES.Indices.Create(ix.Name,
		ix.ES.Indices.Create.WithContext(ctx),
		ix.ES.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res)
	}
	return nil
}

func (ix *Index) IndexItem(ctx context.Context, item models.Item) error {
	body, err := json.Marshal(item)
	if err != nil {
		return err
	}
	res, err := ix.ES.Index(ix.Name, bytes.NewReader(body),
		ix.ES.Index.WithContext(ctx),
		ix.ES.Index.WithDocumentID(docID(item.ID)),
	)
	if err != nil {
		return fmt.Errorf("index item %d: %w", item.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index item", res)
	}
	return nil
}

// DeleteItem removes a document; a missing document is not an error.
func (ix *Index) DeleteItem(ctx context.Context, id uint) error {
	res, err := ix.ES.Delete(ix.Name, docID(id), ix.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete item", res)
	}
	return nil
}

func (ix *Index) Search(ctx context.Context, q string, from, size int) (int64, []models.Item, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"title^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := ix.ES.Search(
		ix.ES.Search.WithContext(ctx),
		ix.ES.Search.WithIndex(ix.Name),
		ix.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Item `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]models.Item, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		items[i] = hit.Source
	}
	return r.Hits.Total.Value, items, nil
}

func docID(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func responseError(op string, res *esapi.Response) error {
	b, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("elasticsearch %s: %s: %s", op, res.Status(), bytes.TrimSpace(b))
}
