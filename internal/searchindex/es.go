package searchindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ESIndex is the production Index adapter. The analyzer settings
// (lowercase + English stopwords + Porter stemmer) mirror the
// stemming-analyzer configuration the indexing service was known to use.
type ESIndex struct {
	client *elasticsearch.Client
}

func NewESIndex(addr string) (*ESIndex, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{addr}})
	if err != nil {
		return nil, fmt.Errorf("searchindex: new client: %w", err)
	}
	return &ESIndex{client: client}, nil
}

const indexSettings = `{
	"settings": {
		"analysis": {
			"analyzer": {
				"default": {
					"type": "custom",
					"tokenizer": "standard",
					"filter": ["lowercase", "stop", "porter_stem"]
				}
			}
		}
	},
	"mappings": {
		"properties": {
			"url": {"type": "keyword"},
			"text": {"type": "text"}
		}
	}
}`

func (idx *ESIndex) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{IndexName}}.Do(ctx, idx.client)
	if err != nil {
		return fmt.Errorf("searchindex: check index exists: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{Index: IndexName, Body: strings.NewReader(indexSettings)}.Do(ctx, idx.client)
	if err != nil {
		return fmt.Errorf("searchindex: create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("searchindex: create index: %s", res.String())
	}
	return nil
}

func (idx *ESIndex) Submit(ctx context.Context, docID string, doc Doc) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("searchindex: marshal doc: %w", err)
	}
	res, err := esapi.IndexRequest{
		Index:      IndexName,
		DocumentID: docID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, idx.client)
	if err != nil {
		return fmt.Errorf("searchindex: index doc: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("searchindex: index doc: %s", res.String())
	}
	return nil
}

func (idx *ESIndex) Search(ctx context.Context, mode Mode, query string, size int) ([]Hit, error) {
	var queryClause map[string]interface{}
	switch mode {
	case ModePhrase:
		queryClause = map[string]interface{}{"match_phrase": map[string]interface{}{"text": query}}
	case ModeBoolean:
		queryClause = map[string]interface{}{"query_string": map[string]interface{}{"query": query, "default_field": "text"}}
	default:
		queryClause = map[string]interface{}{"match": map[string]interface{}{"text": query}}
	}

	reqBody, err := json.Marshal(map[string]interface{}{"query": queryClause, "size": size})
	if err != nil {
		return nil, fmt.Errorf("searchindex: marshal search body: %w", err)
	}

	res, err := esapi.SearchRequest{
		Index: []string{IndexName},
		Body:  bytes.NewReader(reqBody),
	}.Do(ctx, idx.client)
	if err != nil {
		return nil, fmt.Errorf("searchindex: search: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == 404 {
		return nil, ErrIndexMissing
	}
	if res.IsError() {
		return nil, fmt.Errorf("searchindex: search: %s", res.String())
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("searchindex: read search response: %w", err)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source Doc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("searchindex: decode search response: %w", err)
	}

	hits := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, Hit{URL: h.Source.URL, Text: h.Source.Text})
	}
	return hits, nil
}

func (idx *ESIndex) Count(ctx context.Context) (int, error) {
	res, err := esapi.CountRequest{Index: []string{IndexName}}.Do(ctx, idx.client)
	if err != nil {
		return 0, fmt.Errorf("searchindex: count: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("searchindex: count: %s", res.String())
	}

	var parsed struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("searchindex: decode count response: %w", err)
	}
	return parsed.Count, nil
}

func (idx *ESIndex) Ping(ctx context.Context) error {
	res, err := esapi.PingRequest{}.Do(ctx, idx.client)
	if err != nil {
		return fmt.Errorf("searchindex: ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("searchindex: ping: %s", res.String())
	}
	return nil
}
