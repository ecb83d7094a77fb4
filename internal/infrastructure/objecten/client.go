// Package objecten implements the client for the external form-submission
// store, consulted only by the formulier strategy.
package objecten

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/opengemeente/klantsync/internal/domain"
)

const requestTimeout = 10 * time.Second

// Client implements domain.SubmissionStore.
type Client struct {
	rest *resty.Client
}

func New(baseURL, apiKey string) *Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetHeader("Accept", "application/json").
		SetHeader("X-Api-Key", apiKey)
	return &Client{rest: rest}
}

// GetSubmission fetches the full submission for a form reference on behalf of
// the given citizen (bsn) or company (kvk) id.
func (c *Client) GetSubmission(ctx context.Context, reference, userID, userType string) (*domain.Submission, error) {
	var sub domain.Submission
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"user_id":         userID,
			"user_type":       userType,
			"full_submission": "true",
		}).
		SetResult(&sub).
		Get("/" + reference)
	if err != nil {
		return nil, fmt.Errorf("submissions: get %s: %w", reference, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("submissions: get %s: %w", reference, domain.ErrNotFound)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("submissions: get %s: status %d: %s", reference, resp.StatusCode(), resp.String())
	}
	return &sub, nil
}
