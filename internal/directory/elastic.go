package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/role_gate/internal/models"
)

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":    {"type": "keyword"},
      "name":  {"type": "text"},
      "email": {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "role":  {"type": "keyword"}
    }
  }
}`

func NewESClient(ctx context.Context, url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if err := responseError(res); err != nil {
		return nil, err
	}
	return client, nil
}

type ESDirectory struct {
	ES        *elasticsearch.Client
	IndexName string
}

// EnsureIndex creates the index with its mapping if it does not exist yet.
func (d *ESDirectory) EnsureIndex(ctx context.Context) error {
	res, err := d.ES.Indices.Exists([]string{d.IndexName}, d.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()
	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("check index: elasticsearch status %s", res.Status())
	}

	res, err = d.ES.Indices.Create(
		d.IndexName,
		d.ES.Indices.Create.WithContext(ctx),
		d.ES.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	return responseError(res)
}

func (d *ESDirectory) Index(ctx context.Context, u *models.User) error {
	data, err := json.Marshal(EntryFromUser(u))
	if err != nil {
		return err
	}

	res, err := d.ES.Index(
		d.IndexName,
		bytes.NewReader(data),
		d.ES.Index.WithContext(ctx),
		d.ES.Index.WithDocumentID(u.ID),
	)
	if err != nil {
		return fmt.Errorf("index user: %w", err)
	}
	defer res.Body.Close()
	return responseError(res)
}

func (d *ESDirectory) Search(ctx context.Context, query string, from, size int) (int64, []Entry, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "email"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := d.ES.Search(
		d.ES.Search.WithContext(ctx),
		d.ES.Search.WithIndex(d.IndexName),
		d.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search users: %w", err)
	}
	defer res.Body.Close()
	if err := responseError(res); err != nil {
		return 0, nil, err
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Entry `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search: %w", err)
	}

	entries := make([]Entry, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		entries[i] = hit.Source
	}
	return r.Hits.Total.Value, entries, nil
}

func responseError(res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("elasticsearch error %s: %s", res.Status(), strings.TrimSpace(string(body)))
}
