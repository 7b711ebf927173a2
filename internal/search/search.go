package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/quillmed/chartextract/internal/record"
)

// indexedRecord is the flattened document shape stored in Elasticsearch.
// Only searchable fields are indexed; the full record lives in Postgres.
type indexedRecord struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	VisitDate *time.Time `json:"visit_date,omitempty"`
	Provider  string     `json:"provider,omitempty"`
	Diagnoses []string   `json:"diagnoses,omitempty"`
	Summary   string     `json:"summary"`
}

type Hit struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	VisitDate *time.Time `json:"visit_date,omitempty"`
	Provider  string     `json:"provider,omitempty"`
}

type Service interface {
	IndexRecord(ctx context.Context, rec *record.ClinicalRecord) error
	DeleteRecord(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, to *time.Time, size int) ([]Hit, error)
}

type service struct {
	es *elasticsearch.Client
}

func NewService(esClient *elasticsearch.Client) Service {
	return &service{es: esClient}
}

const recordIndex = "chartextract_records"

func (s *service) IndexRecord(ctx context.Context, rec *record.ClinicalRecord) error {
	doc := indexedRecord{
		ID:        rec.ID,
		Title:     rec.Title(),
		VisitDate: rec.VisitDate,
		Provider:  rec.Provider,
		Summary:   record.FormatSummary(rec),
	}
	for _, d := range rec.Diagnoses {
		doc.Diagnoses = append(doc.Diagnoses, d.Name)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	res, err := s.es.Index(
		recordIndex,
		strings.NewReader(string(payload)),
		s.es.Index.WithContext(ctx),
		s.es.Index.WithDocumentID(rec.ID),
		s.es.Index.WithRefresh("true"),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing record %s: %s", rec.ID, res.String())
	}
	return nil
}

func (s *service) DeleteRecord(ctx context.Context, id string) error {
	res, err := s.es.Delete(
		recordIndex,
		id,
		s.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	// A 404 is fine: the record was never indexed or is already gone.
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("deleting record %s from index: %s", id, res.String())
	}
	return nil
}

func (s *service) Search(ctx context.Context, query string, from, to *time.Time, size int) ([]Hit, error) {
	must := []map[string]interface{}{}
	if query != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title", "provider", "diagnoses", "summary"},
			},
		})
	}
	if from != nil || to != nil {
		dateRange := map[string]interface{}{}
		if from != nil {
			dateRange["gte"] = from.Format("2006-01-02")
		}
		if to != nil {
			dateRange["lte"] = to.Format("2006-01-02")
		}
		must = append(must, map[string]interface{}{
			"range": map[string]interface{}{"visit_date": dateRange},
		})
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
		"sort": []map[string]interface{}{
			{"visit_date": map[string]interface{}{"order": "desc", "missing": "_last"}},
		},
		"size": size,
	}

	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(recordIndex),
		s.es.Search.WithBody(strings.NewReader(string(bodyJSON))),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var result struct {
		Hits struct {
			Hits []struct {
				Source Hit `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, err
	}

	hits := make([]Hit, len(result.Hits.Hits))
	for i, hit := range result.Hits.Hits {
		hits[i] = hit.Source
	}
	return hits, nil
}
