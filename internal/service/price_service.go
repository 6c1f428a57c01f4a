package service

import (
	"context"
	"strings"

	"hotwallet_monitor/internal/client"
	"hotwallet_monitor/pkg/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceService resolves the current USD unit price for a token symbol.
type PriceService interface {
	// USDPrice returns the price and whether any source had a quote. A false
	// result means "valuation unavailable" and is never an error; transport
	// failures in either source degrade to the same signal.
	USDPrice(ctx context.Context, symbol string) (decimal.Decimal, bool)
}

// priceServiceImpl implements the PriceService interface. The primary source
// is the MEXC ticker pair "{SYMBOL}USDT"; on a missing or failed primary
// result the CoinGecko simple-price API is queried with the lowercased
// symbol. Quotes are looked up fresh on every call.
type priceServiceImpl struct {
	mexc      client.MEXCClient
	coinGecko client.CoinGeckoClient
	logger    *zap.Logger
}

// NewPriceService creates a new instance of PriceService.
func NewPriceService(mexc client.MEXCClient, coinGecko client.CoinGeckoClient, logger *zap.Logger) PriceService {
	return &priceServiceImpl{
		mexc:      mexc,
		coinGecko: coinGecko,
		logger:    logger.Named("PriceService"),
	}
}

// USDPrice implements the PriceService interface.
func (s *priceServiceImpl) USDPrice(ctx context.Context, symbol string) (decimal.Decimal, bool) {
	canonical := strings.ToUpper(strings.TrimSpace(symbol))
	if canonical == "" {
		return decimal.Zero, false
	}

	pair := canonical + "USDT"
	price, found, err := s.mexc.TickerPrice(ctx, pair)
	switch {
	case err != nil:
		metrics.PriceLookups.WithLabelValues("mexc", "error").Inc()
		s.logger.Warn("Primary price source failed, trying fallback",
			zap.String("pair", pair), zap.Error(err))
	case found:
		metrics.PriceLookups.WithLabelValues("mexc", "hit").Inc()
		return price, true
	default:
		metrics.PriceLookups.WithLabelValues("mexc", "miss").Inc()
		s.logger.Debug("Primary price source has no quote, trying fallback",
			zap.String("pair", pair))
	}

	id := strings.ToLower(canonical)
	price, found, err = s.coinGecko.SimplePrice(ctx, id)
	if err != nil {
		metrics.PriceLookups.WithLabelValues("coingecko", "error").Inc()
		s.logger.Warn("Fallback price source failed, valuation unavailable",
			zap.String("id", id), zap.Error(err))
		return decimal.Zero, false
	}
	if !found {
		metrics.PriceLookups.WithLabelValues("coingecko", "miss").Inc()
		s.logger.Info("No USD quote available for symbol", zap.String("symbol", canonical))
		return decimal.Zero, false
	}

	metrics.PriceLookups.WithLabelValues("coingecko", "hit").Inc()
	return price, true
}
