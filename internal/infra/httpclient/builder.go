package httpclient

import (
	"context"
	"net/http"
	"strings"

	"github.com/souvikmukherjee/util-bian-modelling/internal/domain"
)

// RequestSpec is the minimal description of a read request against the API.
type RequestSpec struct {
	Method  string
	URL     string
	Headers map[string]string
}

// BuildRequest builds an HTTP request from a RequestSpec. Method defaults to GET.
func BuildRequest(ctx context.Context, spec RequestSpec) (*http.Request, error) {
	if strings.TrimSpace(spec.URL) == "" {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Err:  domain.ErrInvalidConfig,
		}
	}

	method := strings.ToUpper(strings.TrimSpace(spec.Method))
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, spec.URL, nil)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Path: spec.URL,
			Err:  err,
		}
	}

	for k, v := range spec.Headers {
		req.Header.Set(k, v)
	}

	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	return req, nil
}
