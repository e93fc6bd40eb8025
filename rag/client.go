// Package rag is the boundary to the external vector-search service that
// indexes DAN (Divers Alert Network) incident reports and safety
// guidelines. Retrieval failures degrade to empty context; they never
// block or alter the numeric analysis.
package rag

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"dive-roast/utils"
)

const defaultTopK = 10

// SearchClient communicates with the DAN search service.
type SearchClient struct {
	serviceURL string
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker
	topK       int
}

// Article is one search hit with its source metadata.
type Article struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"topK"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Value string `json:"value"`
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

// NewSearchClient creates a client for the search service. The circuit
// breaker keeps a flapping upstream from stalling every chat turn.
func NewSearchClient(serviceURL string) *SearchClient {
	if serviceURL == "" {
		serviceURL = "http://localhost:5003"
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "dan-search",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &SearchClient{
		serviceURL: serviceURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		breaker: cb,
		topK:    utils.GetEnvInt("DAN_SEARCH_TOP_K", defaultTopK),
	}
}

// HealthCheck verifies the search service is reachable.
func (sc *SearchClient) HealthCheck() error {
	resp, err := sc.client.Get(sc.serviceURL + "/health")
	if err != nil {
		return fmt.Errorf("search service not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("search service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// RetrieveContext returns the concatenated text of the most relevant
// indexed chunks for query, for seeding model context.
func (sc *SearchClient) RetrieveContext(query string) (string, error) {
	results, err := sc.search(query, sc.topK)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	for i, r := range results {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(r.Value)
	}
	return buf.String(), nil
}

// SearchArticles returns search hits with metadata and a first-sentence
// snippet, deduplicated by URL.
func (sc *SearchClient) SearchArticles(query string, topK int) ([]Article, error) {
	results, err := sc.search(query, topK)
	if err != nil {
		return nil, err
	}

	seenURLs := make(map[string]bool)
	articles := make([]Article, 0, len(results))
	for _, r := range results {
		if r.URL != "" && seenURLs[r.URL] {
			continue
		}
		if r.URL != "" {
			seenURLs[r.URL] = true
		}
		articles = append(articles, Article{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: firstSentence(r.Value),
		})
	}
	return articles, nil
}

func (sc *SearchClient) search(query string, topK int) ([]searchResult, error) {
	if topK <= 0 {
		topK = sc.topK
	}

	payload, err := json.Marshal(searchRequest{Query: query, TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	raw, err := sc.breaker.Execute(func() (interface{}, error) {
		resp, err := sc.client.Post(sc.serviceURL+"/search", "application/json", bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("search request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			bodyBytes, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("search service returned status %d: %s", resp.StatusCode, string(bodyBytes))
		}

		var searchResp searchResponse
		if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
			return nil, fmt.Errorf("failed to decode search response: %w", err)
		}
		return searchResp.Results, nil
	})
	if err != nil {
		return nil, err
	}
	return raw.([]searchResult), nil
}

// firstSentence truncates a chunk to its first sentence, or 150 characters
// when no sentence boundary is found.
func firstSentence(text string) string {
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '.' && text[i+1] == ' ' {
			return text[:i+1]
		}
	}
	if len(text) > 150 {
		return text[:147] + "..."
	}
	return text
}
