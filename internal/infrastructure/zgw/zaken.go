package zgw

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/opengemeente/klantsync/internal/domain"
)

// ZakenClient implements domain.ZakenAPI against a ZGW zaken service.
type ZakenClient struct {
	rest *resty.Client
}

func NewZakenClient(baseURL, clientID, clientSecret string) *ZakenClient {
	client := newClient(baseURL, NewTokenSource(clientID, clientSecret))
	// Geo headers the zaken API requires on every call.
	client.SetHeader("Accept-Crs", "EPSG:4326")
	client.SetHeader("Content-Crs", "EPSG:4326")
	return &ZakenClient{rest: client}
}

// GetRol fetches a rol by its canonical URL. The raw response body is kept on
// the rol so the destructive update protocol can re-post fields this service
// does not model.
func (c *ZakenClient) GetRol(ctx context.Context, url string) (*domain.Rol, error) {
	resp, err := c.rest.R().SetContext(ctx).Get(url)
	if err := checkResponse(resp, err, "zaken: get rol"); err != nil {
		return nil, err
	}

	var rol domain.Rol
	if err := json.Unmarshal(resp.Body(), &rol); err != nil {
		return nil, fmt.Errorf("zaken: decode rol: %w", err)
	}
	rol.Raw = append(json.RawMessage(nil), resp.Body()...)
	return &rol, nil
}

// DeleteRol removes a rol. Only the destructive update protocol calls this.
func (c *ZakenClient) DeleteRol(ctx context.Context, url string) error {
	resp, err := c.rest.R().SetContext(ctx).Delete(url)
	return checkResponse(resp, err, "zaken: delete rol")
}

// CreateRol posts a raw rol body and returns the recreated rol.
func (c *ZakenClient) CreateRol(ctx context.Context, body map[string]any) (*domain.Rol, error) {
	var rol domain.Rol
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&rol).
		Post("/rollen")
	if err := checkResponse(resp, err, "zaken: create rol"); err != nil {
		return nil, err
	}
	rol.Raw = append(json.RawMessage(nil), resp.Body()...)
	return &rol, nil
}

// GetZaak fetches a zaak by URL with its eigenschappen expanded.
func (c *ZakenClient) GetZaak(ctx context.Context, url string) (*domain.Zaak, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("expand", "eigenschappen").
		Get(url)
	if err := checkResponse(resp, err, "zaken: get zaak"); err != nil {
		return nil, err
	}

	var payload struct {
		domain.Zaak
		Expand struct {
			Eigenschappen []domain.ZaakEigenschap `json:"eigenschappen"`
		} `json:"_expand"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("zaken: decode zaak: %w", err)
	}

	zaak := payload.Zaak
	if len(zaak.Eigenschappen) == 0 {
		zaak.Eigenschappen = payload.Expand.Eigenschappen
	}
	return &zaak, nil
}
