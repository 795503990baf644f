// Package flashcardclient reads flashcards from flashcard-service over HTTP.
package flashcardclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cardsync/contexts/study/quiz-service/domain/entities"
)

const (
	defaultRequestTimeout = 5 * time.Second
	maxResponseBytes      = 1 << 20
)

var ErrUnexpectedStatus = errors.New("unexpected status from flashcard service")

// Doer performs an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	http    Doer
}

func NewClient(baseURL string, doer Doer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
	}
}

type flashcardResponse struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

type instanceInfoResponse struct {
	Service    string `json:"service"`
	InstanceID string `json:"instance_id"`
	Port       string `json:"port"`
}

// ListFlashcards fetches every flashcard. A 204 answer is an empty list.
func (c *Client) ListFlashcards(ctx context.Context) ([]entities.Flashcard, error) {
	var payload []flashcardResponse
	found, err := c.getJSON(ctx, "/flashcards", &payload)
	if err != nil {
		return nil, err
	}
	if !found {
		return []entities.Flashcard{}, nil
	}

	items := make([]entities.Flashcard, 0, len(payload))
	for _, item := range payload {
		items = append(items, entities.Flashcard{
			ID:       item.ID,
			Question: item.Question,
			Answer:   item.Answer,
			Category: item.Category,
		})
	}
	return items, nil
}

func (c *Client) ServiceInfo(ctx context.Context) (entities.FlashcardServiceInfo, error) {
	var payload instanceInfoResponse
	found, err := c.getJSON(ctx, "/flashcards/port", &payload)
	if err != nil {
		return entities.FlashcardServiceInfo{}, err
	}
	if !found {
		return entities.FlashcardServiceInfo{}, fmt.Errorf("%w: empty instance info", ErrUnexpectedStatus)
	}
	return entities.FlashcardServiceInfo{
		Service:    payload.Service,
		InstanceID: payload.InstanceID,
		Port:       payload.Port,
	}, nil
}

// getJSON decodes a 200 body into out. It reports false for 204.
func (c *Client) getJSON(ctx context.Context, path string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return false, nil
	default:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return false, fmt.Errorf("%w: GET %s answered %s", ErrUnexpectedStatus, path, resp.Status)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}
