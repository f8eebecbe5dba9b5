package manticore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	manticoresearch "github.com/manticoresoftware/manticoresearch-go"
	"github.com/terratensor/cnareas/internal/core/domain"
)

const maxRetries = 3

type ManticoreClient struct {
	client     *manticoresearch.APIClient
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
}

func NewClient(host string, port int, timeout time.Duration) (*ManticoreClient, error) {
	baseURL := fmt.Sprintf("http://%s:%d", host, port)

	configuration := manticoresearch.NewConfiguration()
	configuration.Servers = manticoresearch.ServerConfigurations{
		{
			URL: baseURL,
		},
	}
	configuration.HTTPClient = &http.Client{
		Timeout: timeout,
	}

	return &ManticoreClient{
		client:     manticoresearch.NewAPIClient(configuration),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		retryDelay: time.Second,
	}, nil
}

// InitSchema создает таблицы если они не существуют
func (c *ManticoreClient) InitSchema(ctx context.Context) error {
	for _, sql := range CreateTablesSQL {
		if _, err := c.querySQL(ctx, sql); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// querySQL выполняет SQL через UtilsAPI в raw режиме и возвращает результаты.
// Ошибка транспорта, HTTP статус или поле error в ответе возвращаются как error.
func (c *ManticoreClient) querySQL(ctx context.Context, sql string) ([]map[string]interface{}, error) {
	req := c.client.UtilsAPI.Sql(ctx).Body(sql).RawResponse(true)

	resp, _, err := c.client.UtilsAPI.SqlExecute(req)
	if err != nil {
		var apiErr *manticoresearch.GenericOpenAPIError
		if errors.As(err, &apiErr) && len(apiErr.Body()) > 0 {
			return nil, fmt.Errorf("failed to execute SQL: %w, response: %s", err, string(apiErr.Body()))
		}
		return nil, fmt.Errorf("failed to execute SQL: %w", err)
	}
	if resp == nil {
		return nil, nil
	}

	var results []map[string]interface{}
	switch {
	case resp.ArrayOfMapmapOfStringAny != nil:
		results = *resp.ArrayOfMapmapOfStringAny
	case resp.SqlObjResponse != nil:
		results = []map[string]interface{}{resp.SqlObjResponse.GetHits()}
	}

	for _, r := range results {
		if sqlErr, ok := r["error"]; ok && sqlErr != nil && sqlErr != "" {
			return nil, fmt.Errorf("SQL error: %v", sqlErr)
		}
	}
	return results, nil
}

// resultRows возвращает строки data первого результата
func resultRows(results []map[string]interface{}) []map[string]interface{} {
	if len(results) == 0 {
		return nil
	}
	data, _ := results[0]["data"].([]interface{})

	rows := make([]map[string]interface{}, 0, len(data))
	for _, d := range data {
		if row, ok := d.(map[string]interface{}); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// TableExists ищет таблицу через SHOW TABLES; недоступный сервер возвращает ошибку
func (c *ManticoreClient) TableExists(ctx context.Context, tableName string) (bool, error) {
	results, err := c.querySQL(ctx, fmt.Sprintf("SHOW TABLES LIKE '%s'", tableName))
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", tableName, err)
	}

	// LIKE трактует '_' как шаблон, поэтому сверяем имя точно
	for _, row := range resultRows(results) {
		for _, col := range []string{"Table", "Index"} {
			if name, ok := row[col].(string); ok && name == tableName {
				return true, nil
			}
		}
	}
	return false, nil
}

// DropTable удаляет таблицу
func (c *ManticoreClient) DropTable(ctx context.Context, tableName string) error {
	if _, err := c.querySQL(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName)); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	return nil
}

// TruncateTable очищает таблицу
func (c *ManticoreClient) TruncateTable(ctx context.Context, tableName string) error {
	if _, err := c.querySQL(ctx, fmt.Sprintf("TRUNCATE TABLE %s", tableName)); err != nil {
		return fmt.Errorf("failed to truncate table: %w", err)
	}
	return nil
}

// GetTableCount возвращает количество документов в таблице
func (c *ManticoreClient) GetTableCount(ctx context.Context, tableName string) (int64, error) {
	results, err := c.querySQL(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", tableName))
	if err != nil {
		return 0, fmt.Errorf("failed to get table count: %w", err)
	}

	rows := resultRows(results)
	if len(rows) == 0 {
		return 0, nil
	}

	// count может быть float64 или int64
	switch v := rows[0]["count(*)"].(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	}
	return 0, nil
}

// InsertAreas записывает узлы пачками; replace делает повторный импорт безопасным
func (c *ManticoreClient) InsertAreas(ctx context.Context, areas []*domain.Area, batchSize int) error {
	batch := make([]map[string]interface{}, 0, batchSize)

	for _, a := range areas {
		doc, err := areaToDoc(a)
		if err != nil {
			return err
		}
		batch = append(batch, doc)

		if len(batch) >= batchSize {
			if err := c.bulkReplace(ctx, TableAreas, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		return c.bulkReplace(ctx, TableAreas, batch)
	}
	return nil
}

// bulkReplace отправляет NDJSON в /bulk
func (c *ManticoreClient) bulkReplace(ctx context.Context, table string, docs []map[string]interface{}) error {
	var buf bytes.Buffer

	for _, doc := range docs {
		// id передаётся отдельно от полей документа
		fields := make(map[string]interface{}, len(doc))
		for k, v := range doc {
			if k != "id" {
				fields[k] = v
			}
		}

		cmd := map[string]interface{}{
			"replace": map[string]interface{}{
				"table": table,
				"id":    doc["id"],
				"doc":   fields,
			},
		}

		cmdBytes, err := json.Marshal(cmd)
		if err != nil {
			return fmt.Errorf("failed to marshal replace command: %w", err)
		}

		buf.Write(cmdBytes)
		buf.WriteByte('\n')
	}

	return c.bulkRequest(ctx, buf.Bytes())
}

// bulkRequest выполняет HTTP запрос к Manticore с ретраем
func (c *ManticoreClient) bulkRequest(ctx context.Context, data []byte) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			waitTime := c.retryDelay * time.Duration(attempt)
			log.Printf("Retry %d for bulk request after %v: %v", attempt+1, waitTime, lastErr)
			select {
			case <-time.After(waitTime):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		retry, err := c.doBulk(ctx, data)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("bulk request failed after %d attempts: %w", maxRetries, lastErr)
}

// doBulk возвращает retry=true для сетевых ошибок и 5xx
func (c *ManticoreClient) doBulk(ctx context.Context, data []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bulk", bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode >= 500, fmt.Errorf("bulk request returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	var response map[string]interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return false, fmt.Errorf("failed to parse response: %w", err)
	}

	if failed, ok := response["errors"].(bool); ok && failed {
		return false, fmt.Errorf("bulk request completed with errors: %s", string(body))
	}

	return false, nil
}
