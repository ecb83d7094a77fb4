// Package openklant implements the klantregistratie client. OpenKlant
// authenticates with a static token header, unlike the ZGW JWT scheme.
package openklant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/opengemeente/klantsync/internal/domain"
)

const requestTimeout = 10 * time.Second

// Client implements domain.KlantenAPI.
type Client struct {
	rest    *resty.Client
	baseURL string
}

func New(baseURL, token string) *Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "Token "+token)
	return &Client{rest: rest, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (c *Client) checkResponse(resp *resty.Response, err error, op string) error {
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

// partijURL fills in the canonical URL for partijen served by deployments
// that omit the url field.
func (c *Client) partijURL(p *domain.Partij) {
	if p.URL == "" && p.UUID != "" {
		p.URL = c.baseURL + "/partijen/" + p.UUID
	}
}

// GetPartij fetches a partij by uuid. With expandAdressen set the partij's
// digitale adressen are included.
func (c *Client) GetPartij(ctx context.Context, uuid string, expandAdressen bool) (*domain.Partij, error) {
	req := c.rest.R().SetContext(ctx)
	if expandAdressen {
		req.SetQueryParam("expand", "digitaleAdressen")
	}
	resp, err := req.Get("/partijen/" + uuid)
	if err := c.checkResponse(resp, err, "openklant: get partij"); err != nil {
		return nil, err
	}

	partij, err := decodePartij(resp.Body())
	if err != nil {
		return nil, err
	}
	c.partijURL(partij)
	return partij, nil
}

// FindPartijByIdentificator looks a partij up by an external identity value.
func (c *Client) FindPartijByIdentificator(ctx context.Context, soortObjectID, objectID string) (*domain.Partij, error) {
	var page struct {
		Count   int               `json:"count"`
		Results []json.RawMessage `json:"results"`
	}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("partijIdentificator__codeSoortObjectId", soortObjectID).
		SetQueryParam("partijIdentificator__objectId", objectID).
		SetResult(&page).
		Get("/partijen")
	if err := c.checkResponse(resp, err, "openklant: find partij"); err != nil {
		return nil, err
	}
	if page.Count == 0 || len(page.Results) == 0 {
		return nil, fmt.Errorf("openklant: find partij by %s: %w", soortObjectID, domain.ErrNotFound)
	}

	partij, err := decodePartij(page.Results[0])
	if err != nil {
		return nil, err
	}
	c.partijURL(partij)
	return partij, nil
}

// CreatePartij registers a new partij.
func (c *Client) CreatePartij(ctx context.Context, input domain.CreatePartijInput) (*domain.Partij, error) {
	var partij domain.Partij
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(input).
		SetResult(&partij).
		Post("/partijen")
	if err := c.checkResponse(resp, err, "openklant: create partij"); err != nil {
		return nil, err
	}
	c.partijURL(&partij)
	return &partij, nil
}

// SetVoorkeursDigitaalAdres patches the partij's preferred address.
func (c *Client) SetVoorkeursDigitaalAdres(ctx context.Context, partijUUID, adresUUID string) error {
	body := map[string]any{
		"voorkeursDigitaalAdres": map[string]string{"uuid": adresUUID},
	}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(body).
		Patch("/partijen/" + partijUUID)
	return c.checkResponse(resp, err, "openklant: set voorkeursadres")
}

// CreatePartijIdentificator binds an external identity to a partij.
func (c *Client) CreatePartijIdentificator(ctx context.Context, ident domain.PartijIdentificator) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(ident).
		Post("/partij-identificatoren")
	return c.checkResponse(resp, err, "openklant: create partij-identificator")
}

// CreateDigitaalAdres attaches a digitaal adres to a partij.
func (c *Client) CreateDigitaalAdres(ctx context.Context, adres domain.DigitaalAdres) (*domain.DigitaalAdres, error) {
	var created domain.DigitaalAdres
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(adres).
		SetResult(&created).
		Post("/digitaleadressen")
	if err := c.checkResponse(resp, err, "openklant: create digitaal adres"); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteDigitaalAdres removes a digitaal adres.
func (c *Client) DeleteDigitaalAdres(ctx context.Context, uuid string) error {
	resp, err := c.rest.R().SetContext(ctx).Delete("/digitaleadressen/" + uuid)
	return c.checkResponse(resp, err, "openklant: delete digitaal adres")
}

// decodePartij parses a partij, merging expanded digitale adressen when the
// response nests them under _expand.
func decodePartij(data []byte) (*domain.Partij, error) {
	var payload struct {
		domain.Partij
		Expand struct {
			DigitaleAdressen []domain.DigitaalAdres `json:"digitaleAdressen"`
		} `json:"_expand"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("openklant: decode partij: %w", err)
	}
	partij := payload.Partij
	if len(partij.DigitaleAdressen) == 0 {
		partij.DigitaleAdressen = payload.Expand.DigitaleAdressen
	}
	return &partij, nil
}
