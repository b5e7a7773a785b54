package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const openTDBBaseURL = "https://opentdb.com"

// OpenTDBClient fetches questions from the Open Trivia DB (no API key).
type OpenTDBClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOpenTDBClient returns a client; empty arguments select the defaults.
func NewOpenTDBClient(baseURL string, httpClient *http.Client) *OpenTDBClient {
	if baseURL == "" {
		baseURL = openTDBBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &OpenTDBClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// OpenTDBQuestion is a raw Open Trivia DB result.
type OpenTDBQuestion struct {
	Category        string   `json:"category"`
	Type            string   `json:"type"`
	Difficulty      string   `json:"difficulty"`
	Question        string   `json:"question"`
	CorrectAnswer   string   `json:"correct_answer"`
	IncorrectAnswer []string `json:"incorrect_answers"`
}

type openTDBResponse struct {
	ResponseCode int               `json:"response_code"`
	Results      []OpenTDBQuestion `json:"results"`
}

// Fetch downloads up to amount questions. Difficulty may be empty.
func (c *OpenTDBClient) Fetch(ctx context.Context, amount int, difficulty string) ([]OpenTDBQuestion, error) {
	values := url.Values{}
	values.Set("amount", fmt.Sprint(amount))
	if difficulty != "" {
		values.Set("difficulty", strings.ToLower(difficulty))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api.php?%s", c.baseURL, values.Encode()), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected opentdb status: %s", resp.Status)
	}
	var payload openTDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode opentdb response: %w", err)
	}
	if payload.ResponseCode != 0 {
		return nil, fmt.Errorf("opentdb response code %d", payload.ResponseCode)
	}
	return payload.Results, nil
}

// EntriesFromOpenTDB converts results into bank entries with ids starting at firstID.
// Boolean questions are skipped since their answers are not free text.
func EntriesFromOpenTDB(results []OpenTDBQuestion, firstID int) []Entry {
	entries := make([]Entry, 0, len(results))
	id := firstID
	for _, r := range results {
		if r.Type == "boolean" {
			continue
		}
		answer := strings.ToLower(strings.TrimSpace(html.UnescapeString(r.CorrectAnswer)))
		if answer == "" {
			continue
		}
		difficulty, ok := ParseDifficulty(r.Difficulty)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			ID:         id,
			Question:   html.UnescapeString(r.Question),
			Answer:     Answers{answer},
			Category:   cleanCategory(html.UnescapeString(r.Category)),
			Difficulty: string(difficulty),
		})
		id++
	}
	return entries
}

// "Entertainment: Video Games" => "Video Games"
func cleanCategory(c string) string {
	if _, after, ok := strings.Cut(c, ":"); ok {
		c = after
	}
	return strings.TrimSpace(c)
}

// WriteFile writes entries as YAML, replacing path atomically.
func WriteFile(path string, entries []Entry) error {
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode bank: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create bank dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "bank-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp bank: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write bank: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close bank: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write bank: %w", err)
	}
	return nil
}
