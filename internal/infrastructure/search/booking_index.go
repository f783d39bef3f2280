// Package search indexes booking records in Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/tourism-booking-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// BookingIndex stores one document per booking, keyed by booking id.
type BookingIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewBookingIndex(es *elasticsearch.Client, index string) *BookingIndex {
	return &BookingIndex{es: es, index: index}
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":           {"type": "keyword"},
      "user_id":      {"type": "keyword"},
      "kind":         {"type": "keyword"},
      "status":       {"type": "keyword"},
      "title":        {"type": "text"},
      "booking_date": {"type": "date"},
      "date":         {"type": "date"},
      "details":      {"type": "object", "dynamic": true}
    }
  }
}`

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (b *BookingIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := esapi.IndicesExistsRequest{Index: []string{b.index}}.Do(c, b.es)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}
	res, err = esapi.IndicesCreateRequest{Index: b.index, Body: strings.NewReader(indexMapping)}.Do(c, b.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && !strings.Contains(readAll(res.Body), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s: %s", b.index, res.Status())
	}
	return nil
}

func (b *BookingIndex) IndexBooking(ctx context.Context, doc entity.BookingDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: b.index, DocumentID: doc.ID, Body: bytes.NewReader(body), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, b.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index booking %s: %s", doc.ID, res.Status())
	}
	return nil
}

// buildQuery restricts a multi_match on title and details to one user's documents.
func buildQuery(userID, q string, size int) map[string]any {
	return map[string]any{
		"size": size,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"user_id": userID}},
				},
				"must": []any{
					map[string]any{"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^2", "details.*", "kind"},
					}},
				},
			},
		},
		"sort": []any{map[string]any{"booking_date": map[string]any{"order": "desc"}}},
	}
}

func (b *BookingIndex) SearchBookings(ctx context.Context, userID, q string, size int) ([]entity.BookingDocument, error) {
	body, err := json.Marshal(buildQuery(userID, q, size))
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := b.es.Search(
		b.es.Search.WithContext(c),
		b.es.Search.WithIndex(b.index),
		b.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search bookings: %s", res.Status())
	}
	return decodeHits(res.Body)
}

func decodeHits(r io.Reader) ([]entity.BookingDocument, error) {
	var parsed struct {
		Hits struct {
			Hits []struct {
				Source entity.BookingDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]entity.BookingDocument, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func readAll(r io.Reader) string {
	b, _ := io.ReadAll(r)
	return string(b)
}
