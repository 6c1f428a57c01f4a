package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MEXCClient defines the interface for the MEXC ticker price API, the primary
// USD quote source.
type MEXCClient interface {
	// TickerPrice returns the last price for a ticker pair such as "FOOUSDT".
	// The boolean is false when the response carries no price for the pair.
	TickerPrice(ctx context.Context, pair string) (decimal.Decimal, bool, error)
}

// mexcClientImpl is the implementation of MEXCClient.
type mexcClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewMEXCClient creates a new instance of mexcClientImpl.
func NewMEXCClient(baseURL string, timeout time.Duration, logger *zap.Logger) MEXCClient {
	return &mexcClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("MEXCClient"),
	}
}

type mexcTickerPriceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// TickerPrice implements the MEXCClient interface.
func (c *mexcClientImpl) TickerPrice(ctx context.Context, pair string) (decimal.Decimal, bool, error) {
	if pair == "" {
		return decimal.Zero, false, fmt.Errorf("pair cannot be empty")
	}

	requestURL := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", c.baseURL, url.QueryEscape(pair))
	c.logger.Debug("Requesting ticker price from MEXC", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentTypeBytes([]byte("application/json"))

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

	// MEXC answers an unknown pair with a client-error status. That is a
	// "no quote here" signal, not a transport failure.
	if resp.StatusCode() == fasthttp.StatusBadRequest || resp.StatusCode() == fasthttp.StatusNotFound {
		c.logger.Debug("MEXC has no quote for pair",
			zap.String("pair", pair),
			zap.Int("statusCode", resp.StatusCode()))
		return decimal.Zero, false, nil
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return decimal.Zero, false, fmt.Errorf("MEXC API request to %s failed with status %d: %s", requestURL, resp.StatusCode(), string(rawBody))
	}

	var ticker mexcTickerPriceResponse
	if err := json.Unmarshal(rawBody, &ticker); err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to unmarshal MEXC response from %s: %w. Body: %s", requestURL, err, string(rawBody))
	}
	if ticker.Price == "" {
		c.logger.Debug("MEXC response carries no price field", zap.String("pair", pair))
		return decimal.Zero, false, nil
	}

	price, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to parse MEXC price %q for pair %s: %w", ticker.Price, pair, err)
	}
	return price, true, nil
}
