package database

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/locvowork/bi_dashboard/internal/domain"
	"github.com/olivere/elastic/v7"
)

// searchFields are the employee fields matched by free-text search.
var searchFields = []string{"name", "alias", "department", "location", "grade"}

// ElasticSearchClient wraps olivere/elastic client and implements
// domain.EmployeeIndex.
type ElasticSearchClient struct {
	client *elastic.Client
	index  string
}

var _ domain.EmployeeIndex = (*ElasticSearchClient)(nil)

// NewElasticSearchClient creates a new client for Elasticsearch 7.x.
func NewElasticSearchClient(url, index string) (*ElasticSearchClient, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	return &ElasticSearchClient{client: client, index: index}, nil
}

// IndexEmployees bulk indexes employees using employee_id as document ID.
func (es *ElasticSearchClient) IndexEmployees(ctx context.Context, employees []domain.Employee) error {
	bulkRequest := es.client.Bulk()
	for _, emp := range employees {
		req := elastic.NewBulkIndexRequest().
			Index(es.index).
			Id(emp.EmployeeID).
			Doc(emp)
		bulkRequest = bulkRequest.Add(req)
	}

	if bulkRequest.NumberOfActions() == 0 {
		return nil
	}

	bulkResponse, err := bulkRequest.Refresh("true").Do(ctx)
	if err != nil {
		return fmt.Errorf("bulk index failed: %w", err)
	}
	if bulkResponse.Errors {
		for _, item := range bulkResponse.Items {
			for _, op := range item {
				if op.Error != nil {
					return fmt.Errorf("bulk item %s failed: %s", op.Id, op.Error.Reason)
				}
			}
		}
	}
	return nil
}

// SearchEmployees runs a multi-field match over name, alias and org fields.
func (es *ElasticSearchClient) SearchEmployees(ctx context.Context, text string, size int) ([]domain.Employee, error) {
	query := elastic.NewMultiMatchQuery(text, searchFields...).
		Type("best_fields").
		Fuzziness("AUTO")

	searchResult, err := es.client.Search().
		Index(es.index).
		Query(query).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	employees := make([]domain.Employee, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		var emp domain.Employee
		if err := json.Unmarshal(hit.Source, &emp); err != nil {
			return nil, fmt.Errorf("failed to decode hit %s: %w", hit.Id, err)
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

// ScrollAllEmployees reads the whole index in batches.
func (es *ElasticSearchClient) ScrollAllEmployees(ctx context.Context, batch int) ([]domain.Employee, error) {
	var all []domain.Employee

	scroll := es.client.Scroll(es.index).
		Size(batch).
		KeepAlive("2m").
		Sort("_doc", true)
	defer scroll.Clear(context.Background())

	for {
		results, err := scroll.Do(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scroll error: %w", err)
		}
		for _, hit := range results.Hits.Hits {
			var emp domain.Employee
			if err := json.Unmarshal(hit.Source, &emp); err != nil {
				return nil, fmt.Errorf("failed to decode hit %s: %w", hit.Id, err)
			}
			all = append(all, emp)
		}
	}
	return all, nil
}
