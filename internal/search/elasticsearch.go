package search

import (
	"bytes"
	"context"
	"encoding/json"

	"example.com/ventasapp/services/pos/config"
	"example.com/ventasapp/services/pos/internal/models"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ElasticClient provides integration with Elasticsearch
type ElasticClient struct {
	client *elasticsearch.Client
	config config.ElasticConfig
}

// NewElasticClient creates a new Elasticsearch client. It returns a disabled
// client when the integration is switched off in configuration; calls on a
// disabled client are no-ops.
func NewElasticClient(cfg config.ElasticConfig) (*ElasticClient, error) {
	if !cfg.Enabled {
		return &ElasticClient{config: cfg}, nil
	}

	esConfig := elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	}

	client, err := elasticsearch.NewClient(esConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Elasticsearch client")
	}

	return &ElasticClient{
		client: client,
		config: cfg,
	}, nil
}

// Enabled reports whether the client is wired to a cluster.
func (c *ElasticClient) Enabled() bool {
	return c != nil && c.client != nil
}

// IndexSale indexes a completed sale in Elasticsearch
func (c *ElasticClient) IndexSale(ctx context.Context, sale *models.Sale) error {
	if !c.Enabled() {
		return nil
	}

	log.Info().Str("sale_id", sale.ID).Msg("indexing sale")

	// Build the document to be indexed
	saleDoc := map[string]interface{}{
		"id":             sale.ID,
		"order_id":       sale.OrderID,
		"order_sequence": sale.OrderSequence,
		"customer":       sale.Customer,
		"total":          sale.Total,
		"payment_method": sale.PaymentMethod,
		"sale_day":       sale.SaleDay,
		"created_at":     sale.CreatedAt,
	}

	var itemNames []string
	for _, item := range sale.Items {
		itemNames = append(itemNames, item.Name)
	}
	saleDoc["items"] = itemNames

	// Marshall the document to JSON
	docJson, err := json.Marshal(saleDoc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal sale document")
	}

	// Prepare the index request
	indexName := config.FormatIndex(c.config, c.config.Index)
	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: sale.ID,
		Body:       bytes.NewReader(docJson),
		Refresh:    "true",
	}

	// Execute the request
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to execute Elasticsearch index request")
	}
	defer res.Body.Close()

	// Check for errors in the response
	if res.IsError() {
		var e map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&e); err != nil {
			return errors.Wrap(err, "failed to parse Elasticsearch error response")
		}
		return errors.Errorf("Elasticsearch index error: %v", e)
	}

	log.Info().Str("sale_id", sale.ID).Msg("sale indexed successfully")
	return nil
}

// SearchSales searches indexed sales by customer name or item name.
func (c *ElasticClient) SearchSales(ctx context.Context, term string) ([]map[string]interface{}, error) {
	if !c.Enabled() {
		return nil, errors.New("search is not enabled")
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  term,
				"fields": []string{"customer", "items"},
			},
		},
	}

	// Convert query to JSON
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal search query")
	}

	// Prepare the search request
	indexName := config.FormatIndex(c.config, c.config.Index)
	req := esapi.SearchRequest{
		Index: []string{indexName},
		Body:  bytes.NewReader(queryJSON),
	}

	// Execute the request
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute Elasticsearch search request")
	}
	defer res.Body.Close()

	// Check for errors in the response
	if res.IsError() {
		var e map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&e); err != nil {
			return nil, errors.Wrap(err, "failed to parse Elasticsearch error response")
		}
		return nil, errors.Errorf("Elasticsearch search error: %v", e)
	}

	// Parse the response
	var result map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "failed to parse Elasticsearch search response")
	}

	// Extract the hits
	hits, ok := result["hits"].(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected search result format")
	}

	hitsArray, ok := hits["hits"].([]interface{})
	if !ok {
		return nil, errors.New("unexpected hits format")
	}

	// Extract the documents
	var docs []map[string]interface{}
	for _, hit := range hitsArray {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}

		source, ok := hitMap["_source"].(map[string]interface{})
		if !ok {
			continue
		}

		docs = append(docs, source)
	}

	return docs, nil
}
