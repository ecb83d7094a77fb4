// Package zgw implements the clients for the ZGW-family services (zaken,
// catalogi). Both share the same transport: resty with a per-request signed
// bearer token, a distinguished not-found outcome, and non-2xx responses
// wrapped with status and body for diagnosis.
package zgw

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/opengemeente/klantsync/internal/domain"
)

const requestTimeout = 10 * time.Second

func newClient(baseURL string, tokens *TokenSource) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetHeader("Accept", "application/json")

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		token, err := tokens.Token()
		if err != nil {
			return err
		}
		req.SetHeader("Authorization", "Bearer "+token)
		return nil
	})

	return client
}

// checkResponse converts transport and status errors into typed outcomes.
func checkResponse(resp *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	if resp.IsError() {
		return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode(), resp.String())
	}
	return nil
}
