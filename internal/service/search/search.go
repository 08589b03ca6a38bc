package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/empdir/emp-api/internal/models"
)

// Search runs a fuzzy multi-field query over the employee index.
func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Employee, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"first_name^2", "last_name^2", "email"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search body: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Employee `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	employees := make([]models.Employee, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		employees[i] = hit.Source
	}
	return r.Hits.Total.Value, employees, nil
}

// IndexEmployee upserts one employee document. Indexing is best-effort; the
// database stays the source of truth.
func IndexEmployee(ctx context.Context, es *elasticsearch.Client, index string, emp *models.Employee) error {
	data, err := json.Marshal(emp)
	if err != nil {
		return err
	}

	res, err := es.Index(
		index,
		bytes.NewReader(data),
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(fmt.Sprint(emp.ID)),
	)
	if err != nil {
		return fmt.Errorf("index employee: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index employee: %s", res.Status())
	}
	return nil
}

// DeleteEmployee removes the document for a deleted employee.
func DeleteEmployee(ctx context.Context, es *elasticsearch.Client, index string, id uint) error {
	res, err := es.Delete(index, fmt.Sprint(id), es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete employee doc: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete employee doc: %s", res.Status())
	}
	return nil
}
