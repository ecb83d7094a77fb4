package zgw

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/opengemeente/klantsync/internal/domain"
)

// CatalogiClient implements domain.CatalogiAPI against a ZGW catalogi service.
type CatalogiClient struct {
	rest *resty.Client
}

func NewCatalogiClient(baseURL, clientID, clientSecret string) *CatalogiClient {
	return &CatalogiClient{rest: newClient(baseURL, NewTokenSource(clientID, clientSecret))}
}

// GetRolType fetches a roltype by its canonical URL.
func (c *CatalogiClient) GetRolType(ctx context.Context, url string) (*domain.RolType, error) {
	var roltype domain.RolType
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&roltype).
		Get(url)
	if err := checkResponse(resp, err, "catalogi: get roltype"); err != nil {
		return nil, err
	}
	return &roltype, nil
}
