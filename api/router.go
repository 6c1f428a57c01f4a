package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterWalletRoutes mounts the wallet API under /api/v1.
func RegisterWalletRoutes(router *gin.Engine, handler *WalletHandler) {
	v1 := router.Group("/api/v1")
	{
		v1.POST("/wallets", handler.RegisterWalletHandler)
		v1.POST("/wallet-balance", handler.WalletBalanceHandler)
		v1.GET("/coins/:symbol", handler.GetCoinSummaryHandler)
	}
}

// RegisterSwaggerRoutes serves the static OpenAPI document and the Swagger UI.
func RegisterSwaggerRoutes(router *gin.Engine, path string) {
	router.StaticFile("/docs/swagger.yaml", "./docs/swagger.yaml")
	swaggerURL := ginSwagger.URL("/docs/swagger.yaml")
	router.GET(path+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))
}
