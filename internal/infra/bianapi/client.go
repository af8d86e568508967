// Package bianapi reads service domains and their characteristics from the BIAN REST API.
package bianapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/souvikmukherjee/util-bian-modelling/internal/app/template"
	"github.com/souvikmukherjee/util-bian-modelling/internal/domain"
	"github.com/souvikmukherjee/util-bian-modelling/internal/infra/httpclient"
	"github.com/souvikmukherjee/util-bian-modelling/internal/ports"
	"github.com/souvikmukherjee/util-bian-modelling/internal/usecase/extract"
)

// maxErrorBody bounds how much of a failed response ends up in errors and logs.
const maxErrorBody = 2048

// CharacteristicRules locate the three characteristics inside a detail response.
var CharacteristicRules = extract.Rules{
	"functionalPattern":   "$[0].characteristics.functionalPattern",
	"assetType":           "$[0].characteristics.assetType",
	"genericArtefactType": "$[0].characteristics.genericArtefactType",
}

type Client struct {
	exec       *httpclient.Executor
	baseURL    string
	listPath   string
	detailPath string
	headers    map[string]string
	limiter    *Limiter
}

type Option func(*Client)

// WithLimiter paces every request through l.
func WithLimiter(l *Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithHeader adds a static header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

func New(exec *httpclient.Executor, api domain.APISettings, opts ...Option) *Client {
	c := &Client{
		exec:       exec,
		baseURL:    strings.TrimRight(api.BaseURL, "/"),
		listPath:   api.ListPath,
		detailPath: api.DetailPath,
		headers:    map[string]string{"Accept": "application/json"},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ ports.DomainLister  = (*Client)(nil)
	_ ports.DetailFetcher = (*Client)(nil)
)

// ListDomains fetches the full service domain listing. Anything but a 200 with a JSON
// array is an error; the caller treats it as fatal.
func (c *Client) ListDomains(ctx context.Context) ([]domain.DomainSummary, error) {
	target := c.join(c.listPath)

	resp, err := c.get(ctx, target)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "bianapi.list",
			Kind: domain.KindTransport,
			Path: target,
			Err:  err,
		}
	}

	if resp.Status != http.StatusOK {
		return nil, &domain.OpError{
			Op:     "bianapi.list",
			Kind:   domain.KindHTTPStatus,
			Path:   target,
			Status: resp.Status,
			Body:   clip(resp.BodyBytes),
			Err:    domain.ErrListingFailed,
		}
	}

	if resp.Truncated {
		return nil, &domain.OpError{
			Op:   "bianapi.list",
			Kind: domain.KindInvalidResponse,
			Path: target,
			Err:  fmt.Errorf("response exceeds %d bytes: %w", len(resp.BodyBytes), domain.ErrInvalidResponse),
		}
	}

	var out []domain.DomainSummary
	if err := json.Unmarshal(resp.BodyBytes, &out); err != nil {
		return nil, &domain.OpError{
			Op:   "bianapi.list",
			Kind: domain.KindInvalidResponse,
			Path: target,
			Body: clip(resp.BodyBytes),
			Err:  fmt.Errorf("%v: %w", err, domain.ErrInvalidResponse),
		}
	}
	if out == nil {
		out = []domain.DomainSummary{}
	}
	return out, nil
}

// FetchDetail looks up one domain's characteristics. Failures are folded into the
// outcome; only a done context produces an error.
func (c *Client) FetchDetail(ctx context.Context, bianID string) (domain.DetailResult, error) {
	outcome := domain.DetailOutcome{BianID: bianID}

	path, err := template.RenderString(c.detailPath, map[string]string{"bianId": url.PathEscape(bianID)})
	if err != nil {
		outcome.Status = domain.DetailTransportError
		outcome.Message = err.Error()
		return domain.DetailResult{Outcome: outcome}, nil
	}
	target := c.join(path)

	resp, err := c.get(ctx, target)
	outcome.LatencyMS = resp.Duration.Milliseconds()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.DetailResult{Outcome: outcome}, ctxErr
		}
		outcome.Status = domain.DetailTransportError
		outcome.Message = err.Error()
		return domain.DetailResult{Outcome: outcome}, nil
	}

	outcome.StatusCode = resp.Status
	if resp.Status != http.StatusOK {
		outcome.Status = domain.DetailHTTPError
		outcome.Message = clip(resp.BodyBytes)
		return domain.DetailResult{Outcome: outcome}, nil
	}

	detail, missing, msg := parseDetail(resp.BodyBytes)
	outcome.MissingFields = missing
	outcome.Message = msg
	outcome.Status = domain.DetailOK
	if len(missing) > 0 {
		outcome.Status = domain.DetailMalformed
	}
	return domain.DetailResult{Detail: detail, Outcome: outcome}, nil
}

func parseDetail(body []byte) (*domain.DomainDetail, []string, string) {
	vals, results := extract.Apply(body, CharacteristicRules)

	d := &domain.DomainDetail{}
	if v, ok := vals["functionalPattern"]; ok {
		d.FunctionalPattern = &v
	}
	if v, ok := vals["assetType"]; ok {
		d.AssetType = &v
	}
	if v, ok := vals["genericArtefactType"]; ok {
		d.GenericArtefactType = &v
	}
	missing := d.MissingFields()

	var msg string
	for _, r := range results {
		if !r.Success {
			msg = r.Message
			break
		}
	}
	return d, missing, msg
}

func (c *Client) get(ctx context.Context, target string) (httpclient.ResponseData, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return httpclient.ResponseData{}, err
		}
	}

	req, err := httpclient.BuildRequest(ctx, httpclient.RequestSpec{
		Method:  http.MethodGet,
		URL:     target,
		Headers: c.headers,
	})
	if err != nil {
		return httpclient.ResponseData{}, err
	}

	resp, err := c.exec.Do(ctx, req)
	if err != nil {
		return resp, unwrapURLError(err)
	}
	return resp, nil
}

func (c *Client) join(path string) string {
	if path == "" {
		return c.baseURL
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return fmt.Errorf("%s %s: %w", ue.Op, ue.URL, ue.Err)
	}
	return err
}

func clip(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
