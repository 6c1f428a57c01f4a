package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ChainReadDuration tracks single-wallet balance reads against chain RPC nodes.
	ChainReadDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hotwallet_chain_read_duration_seconds",
		Help:    "Duration of single-wallet balance reads by chain and outcome.",
		Buckets: prometheus.DefBuckets,
	}, []string{"chain", "status"})

	// PriceLookups counts USD quote lookups by source and outcome.
	PriceLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hotwallet_price_lookups_total",
		Help: "Price lookups by source (mexc, coingecko) and outcome (hit, miss, error).",
	}, []string{"source", "outcome"})

	// WalletRegistrations counts registration attempts by outcome.
	WalletRegistrations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hotwallet_wallet_registrations_total",
		Help: "Wallet registration attempts by outcome (created, rejected, failed).",
	}, []string{"outcome"})

	// HTTPRequestDuration tracks API latency by route and status code.
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hotwallet_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// MustRegisterMetrics registers all collectors with the default registry.
// Call once from main before serving traffic.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		ChainReadDuration,
		PriceLookups,
		WalletRegistrations,
		HTTPRequestDuration,
	)
}

// ObserveChainRead records one chain read with its outcome.
func ObserveChainRead(chain, status string, elapsed time.Duration) {
	ChainReadDuration.WithLabelValues(chain, status).Observe(elapsed.Seconds())
}
