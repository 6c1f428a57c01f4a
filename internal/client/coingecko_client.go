package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// CoinGeckoClient defines the interface for the CoinGecko simple-price API,
// the fallback USD quote source.
type CoinGeckoClient interface {
	// SimplePrice returns the USD quote for a lowercased coin identifier.
	// The boolean is false when CoinGecko does not know the identifier.
	SimplePrice(ctx context.Context, id string) (decimal.Decimal, bool, error)
}

// coinGeckoClientImpl is the implementation of CoinGeckoClient.
type coinGeckoClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewCoinGeckoClient creates a new instance of coinGeckoClientImpl.
func NewCoinGeckoClient(baseURL string, timeout time.Duration, logger *zap.Logger) CoinGeckoClient {
	return &coinGeckoClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("CoinGeckoClient"),
	}
}

// SimplePrice implements the CoinGeckoClient interface.
func (c *coinGeckoClientImpl) SimplePrice(ctx context.Context, id string) (decimal.Decimal, bool, error) {
	if id == "" {
		return decimal.Zero, false, fmt.Errorf("id cannot be empty")
	}

	requestURL := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd", c.baseURL, url.QueryEscape(id))
	c.logger.Debug("Requesting simple price from CoinGecko", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return decimal.Zero, false, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			return decimal.Zero, false, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	rawBody := resp.Body()

	if resp.StatusCode() != fasthttp.StatusOK {
		return decimal.Zero, false, fmt.Errorf("CoinGecko API request to %s failed with status %d: %s", requestURL, resp.StatusCode(), string(rawBody))
	}

	// Response shape: {"<id>": {"usd": 2.0}}. An unknown id yields an empty object.
	var quotes map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(rawBody, &quotes); err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to unmarshal CoinGecko response from %s: %w. Body: %s", requestURL, err, string(rawBody))
	}

	quote, ok := quotes[id]
	if !ok {
		c.logger.Debug("CoinGecko has no entry for id", zap.String("id", id))
		return decimal.Zero, false, nil
	}
	usd, ok := quote["usd"]
	if !ok {
		c.logger.Debug("CoinGecko entry carries no usd quote", zap.String("id", id))
		return decimal.Zero, false, nil
	}
	return usd, true, nil
}
