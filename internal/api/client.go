package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"lotto-analyzer/internal/config"
	"lotto-analyzer/internal/logger"
)

// Client 远程开奖数据客户端
type Client struct {
	httpClient *http.Client
	retryCount int
	retryDelay time.Duration
}

// NewClient 创建新的API客户端
func NewClient(cfg *config.API) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		retryCount: cfg.RetryCount,
		retryDelay: cfg.RetryDelay,
	}
}

// FetchCSV 下载 CSV 数据，失败时按 retryDelay*attempt 线性退避重试
func (c *Client) FetchCSV(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retryCount; attempt++ {
		if attempt > 0 {
			logger.Warnf("CSV download retry attempt %d/%d", attempt, c.retryCount)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}

		body, err := c.makeRequest(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("failed to fetch csv after %d attempts: %w", c.retryCount+1, lastErr)
}

// makeRequest 执行HTTP请求
func (c *Client) makeRequest(ctx context.Context, url string) ([]byte, error) {
	logger.Debugf("Making CSV request to: %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %v", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	logger.Debugf("CSV request successful, got %d bytes", len(body))
	return body, nil
}
