// Package exchangerate implements currency.Provider on top of public
// exchange-rate HTTP APIs. Each API is described by a config.ProviderConfig;
// the response envelope is normalised through a JSONPath expression.
package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/turtacn/StayLedger/internal/config"
	"github.com/turtacn/StayLedger/internal/domain/currency"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
)

const (
	userAgent       = "stayledger-fx/1.0"
	maxResponseSize = 1 << 20
)

// baseRateTolerance bounds how far a reported base-to-base rate may stray
// from 1 before the response is taken to be quoted against another base.
var baseRateTolerance = decimal.New(1, -4)

// HTTPProvider fetches a rate map from one configured endpoint.
type HTTPProvider struct {
	cfg        config.ProviderConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logging.Logger
}

var _ currency.Provider = (*HTTPProvider)(nil)

// Option configures an HTTPProvider.
type Option func(*HTTPProvider)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *HTTPProvider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// WithRequestsPerMinute throttles outbound calls. Zero or less disables it.
func WithRequestsPerMinute(n int) Option {
	return func(p *HTTPProvider) {
		if n <= 0 {
			p.limiter = nil
			return
		}
		p.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(p *HTTPProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewHTTPProvider builds a provider for cfg.
func NewHTTPProvider(cfg config.ProviderConfig, opts ...Option) (*HTTPProvider, error) {
	if cfg.Name == "" || cfg.URL == "" || cfg.RatesPath == "" {
		return nil, errors.InvalidParam("provider requires name, url and rates_path")
	}
	if cfg.RequiresKey && cfg.APIKey == "" {
		return nil, errors.New(errors.ErrCodeProviderUnavailable, "provider credentials missing").WithDetail(cfg.Name)
	}
	p := &HTTPProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *HTTPProvider) Name() string { return p.cfg.Name }

// Fetch performs one GET and returns rates relative to base.
func (p *HTTPProvider) Fetch(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	base = currency.NormalizeCode(base)

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeProviderUnavailable, "rate limit wait aborted")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint(base), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, errors.Newf(errors.ErrCodeExternalService, "%s returned HTTP %d", p.cfg.Name, resp.StatusCode)
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize))
	dec.UseNumber()
	var body interface{}
	if err := dec.Decode(&body); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode response")
	}

	return p.extract(body, base)
}

func (p *HTTPProvider) endpoint(base string) string {
	r := strings.NewReplacer(
		"{base}", url.QueryEscape(base),
		"{key}", url.QueryEscape(p.cfg.APIKey),
	)
	return r.Replace(p.cfg.URL)
}

// extract pulls the rate object out of the envelope and parses every value.
// Entries that do not parse are skipped; coverage is checked by the caller.
func (p *HTTPProvider) extract(body interface{}, base string) (map[string]decimal.Decimal, error) {
	node, err := jsonpath.Get(p.cfg.RatesPath, body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRateSnapshotInvalid, "rates path "+p.cfg.RatesPath+" not found")
	}
	// jsonpath may wrap a single match in a list
	if list, ok := node.([]interface{}); ok && len(list) == 1 {
		node = list[0]
	}
	obj, ok := node.(map[string]interface{})
	if !ok {
		return nil, errors.New(errors.ErrCodeRateSnapshotInvalid, "rates path does not select an object").WithDetail(p.cfg.RatesPath)
	}

	out := make(map[string]decimal.Decimal, len(obj))
	for key, raw := range obj {
		code := strings.ToUpper(key)
		if p.cfg.KeyPrefixed {
			if !strings.HasPrefix(code, base) || len(code) != len(base)+3 {
				continue
			}
			code = strings.TrimPrefix(code, base)
		}
		v, err := toDecimal(raw)
		if err != nil {
			p.logger.Debug("skipping unparsable rate", logging.String("provider", p.cfg.Name), logging.String("code", key))
			continue
		}
		out[code] = v
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeRateSnapshotInvalid, "response contained no rates").WithDetail(p.cfg.Name)
	}
	if self, ok := out[base]; ok && self.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(baseRateTolerance) {
		return nil, errors.Newf(errors.ErrCodeRateSnapshotInvalid,
			"%s quoted %s at %s against itself, response uses another base", p.cfg.Name, base, self)
	}
	return out, nil
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch x := v.(type) {
	case json.Number:
		return decimal.NewFromString(x.String())
	case float64:
		return decimal.NewFromFloat(x), nil
	case string:
		return decimal.NewFromString(x)
	default:
		return decimal.Zero, fmt.Errorf("unsupported rate type %T", v)
	}
}

//Personal.AI order the ending
