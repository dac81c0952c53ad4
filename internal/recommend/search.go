package recommend

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bookdamapp/bookdam-server/internal/domain"
)

// PageSize is the fixed page size of the recommendation service.
const PageSize = 9

// Classify asks the service which emotion a free-text query expresses.
// Any failure (transport, non-2xx, missing field) yields an empty emotion
// rather than an error: recommendations still work without one, just
// without the emotion filter.
func (c *Client) Classify(ctx context.Context, query string) string {
	if err := c.wait(ctx); err != nil {
		c.logger.Warn("classify rate limit wait failed", "error", err)
		return ""
	}

	params := url.Values{}
	params.Set("query", query)
	analyzeURL := c.baseURL + "/analyze?" + params.Encode()

	c.logger.Debug("classifying query", "query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, analyzeURL, nil)
	if err != nil {
		c.logger.Warn("classify request build failed", "error", err)
		return ""
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("classify request failed", "query", query, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("classify returned non-OK status",
			"query", query,
			"status", resp.StatusCode,
		)
		return ""
	}

	var analyzed analyzeResponse
	if err := json.UnmarshalRead(resp.Body, &analyzed); err != nil {
		c.logger.Warn("classify response parse failed", "query", query, "error", err)
		return ""
	}

	c.logger.Debug("query classified", "query", query, "emotion", analyzed.Emotion)
	return analyzed.Emotion
}

// FetchPage retrieves one page of recommendations for the query.
// Pages are 1-based. The emotion may be empty, which disables the
// emotion filter upstream.
func (c *Client) FetchPage(ctx context.Context, query, emotion string, page int) ([]domain.Book, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("emotion", emotion)
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(PageSize))

	fetchURL := c.baseURL + "/v1/recommend?" + params.Encode()

	c.logger.Debug("fetching recommendation page",
		"query", query,
		"emotion", emotion,
		"page", page,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch page %d: status %d", page, resp.StatusCode)
	}

	var fetched recommendResponse
	if err := json.UnmarshalRead(resp.Body, &fetched); err != nil {
		return nil, fmt.Errorf("parse page %d: %w", page, err)
	}

	books := make([]domain.Book, 0, len(fetched.Items))
	for _, item := range fetched.Items {
		books = append(books, domain.Book{
			ISBN13:     item.ISBN13,
			Title:      item.Title,
			Author:     item.Author,
			Cover:      item.Cover,
			Publisher:  item.Publisher,
			Emotion:    emotion,
			Similarity: item.Similarity,
		})
	}

	c.logger.Debug("recommendation page fetched",
		"page", page,
		"count", len(books),
	)
	return books, nil
}
