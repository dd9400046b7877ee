package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/laundry_service/internal/models"
)

const DefaultIndex = "orders"

// OrderIndex keeps a searchable copy of orders for the admin dashboard.
type OrderIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewOrderIndex(es *elasticsearch.Client, index string) *OrderIndex {
	if index == "" {
		index = DefaultIndex
	}
	return &OrderIndex{ES: es, Index: index}
}

func docID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (s *OrderIndex) IndexOrder(ctx context.Context, o *models.Order) error {
	body, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order %d: %w", o.ID, err)
	}

	res, err := s.ES.Index(
		s.Index,
		bytes.NewReader(body),
		s.ES.Index.WithContext(ctx),
		s.ES.Index.WithDocumentID(docID(o.ID)),
	)
	if err != nil {
		return fmt.Errorf("index order %d: %w", o.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index order", res.Status(), res.Body)
	}
	return nil
}

func (s *OrderIndex) DeleteOrder(ctx context.Context, id uint) error {
	res, err := s.ES.Delete(s.Index, docID(id), s.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return responseError("delete order", res.Status(), res.Body)
	}
	return nil
}

// Search runs a fuzzy match over the client and delivery fields.
func (s *OrderIndex) Search(ctx context.Context, query string, from, size int) (int64, []models.Order, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"client_name^2", "client_email", "client_phone", "address", "notes", "voucher_code"},
				"fuzziness": "AUTO",
			},
		},
		"sort": []any{map[string]any{"id": "asc"}},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search orders: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search orders", res.Status(), res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Order `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search: %w", err)
	}

	orders := make([]models.Order, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		orders[i] = hit.Source
	}
	return r.Hits.Total.Value, orders, nil
}

func responseError(op, status string, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, 1024))
	return fmt.Errorf("%s: elasticsearch %s: %s", op, status, bytes.TrimSpace(b))
}
