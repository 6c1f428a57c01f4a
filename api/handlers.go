package api

import (
	"errors"
	"net/http"

	"hotwallet_monitor/internal/entity"
	"hotwallet_monitor/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WalletHandler handles HTTP requests for wallet registration and balances.
type WalletHandler struct {
	coinSvc    service.CoinService
	aggregator service.BalanceAggregator
	logger     *zap.Logger
}

// NewWalletHandler creates a new instance of WalletHandler.
func NewWalletHandler(coinSvc service.CoinService, aggregator service.BalanceAggregator, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{
		coinSvc:    coinSvc,
		aggregator: aggregator,
		logger:     logger.Named("WalletHandler"),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type registerWalletRequest struct {
	Symbol          string `json:"symbol"`
	Chain           string `json:"chain"`
	ContractAddress string `json:"contract_address"`
	WalletAddress   string `json:"wallet_address"`
	WalletName      string `json:"wallet_name"`
}

type registerWalletResponse struct {
	Success bool                 `json:"success"`
	Wallet  *entity.WalletRecord `json:"wallet"`
}

// RegisterWalletHandler handles POST /api/v1/wallets.
func (h *WalletHandler) RegisterWalletHandler(c *gin.Context) {
	var req registerWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	record, err := h.coinSvc.RegisterWallet(c.Request.Context(), service.RegisterWalletParams{
		Symbol:          req.Symbol,
		Chain:           req.Chain,
		ContractAddress: req.ContractAddress,
		WalletAddress:   req.WalletAddress,
		WalletName:      req.WalletName,
	})
	if err != nil {
		status := http.StatusInternalServerError
		var validationErr *entity.ValidationError
		var unsupportedErr *entity.UnsupportedChainError
		if errors.As(err, &validationErr) || errors.As(err, &unsupportedErr) {
			status = http.StatusBadRequest
		} else {
			h.logger.Error("Failed to register wallet", zap.Error(err))
		}
		c.JSON(status, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, registerWalletResponse{Success: true, Wallet: record})
}

type walletBalanceRequest struct {
	Wallets []entity.WalletRecord `json:"wallets"`
}

type walletBalanceTotal struct {
	Symbol   string           `json:"symbol"`
	Balance  decimal.Decimal  `json:"balance"`
	Price    *decimal.Decimal `json:"price"`
	USDValue *decimal.Decimal `json:"usd_value"`
}

type walletBalanceResponse struct {
	Wallets []entity.BalanceSnapshot `json:"wallets"`
	Total   walletBalanceTotal       `json:"total"`
}

// WalletBalanceHandler handles POST /api/v1/wallet-balance. A single wallet's
// chain-read failure never fails the batch; the snapshot carries an error
// marker instead.
func (h *WalletHandler) WalletBalanceHandler(c *gin.Context) {
	var req walletBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "wallets must be a list of wallet records"})
		return
	}
	if req.Wallets == nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "wallets is required"})
		return
	}

	result, err := h.aggregator.Aggregate(c.Request.Context(), req.Wallets)
	if err != nil {
		h.logger.Error("Failed to aggregate wallet balances", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to aggregate wallet balances"})
		return
	}

	c.JSON(http.StatusOK, walletBalanceResponse{
		Wallets: result.Wallets,
		Total: walletBalanceTotal{
			Symbol:   result.Symbol,
			Balance:  result.Total.Amount,
			Price:    result.Price,
			USDValue: result.Total.USDValue,
		},
	})
}

// GetCoinSummaryHandler handles GET /api/v1/coins/:symbol.
func (h *WalletHandler) GetCoinSummaryHandler(c *gin.Context) {
	symbol := c.Param("symbol")

	summary, err := h.coinSvc.GetSummary(c.Request.Context(), symbol)
	if err != nil {
		var validationErr *entity.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("Failed to build coin summary", zap.String("symbol", symbol), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load coin summary"})
		return
	}
	if summary == nil {
		// Not an error: the UI offers "register a new coin" on this signal.
		c.JSON(http.StatusNotFound, errorResponse{Error: "no wallets registered for symbol"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
