package routes

import (
	"tripsalama/internal/handlers"
	"tripsalama/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupWalletRoutes mounts the wallet and ledger surface.
func SetupWalletRoutes(r *gin.RouterGroup, walletHandler *handlers.WalletHandler, jwtSecret string) {
	wallet := r.Group("/wallet")
	wallet.Use(middleware.AuthRequired(jwtSecret))
	{
		wallet.GET("", walletHandler.GetWallet)
		wallet.POST("/topup", walletHandler.Topup)
		wallet.POST("/withdraw", walletHandler.Withdraw)
		wallet.POST("/tip", middleware.PassengerRequired(), walletHandler.Tip)
		wallet.GET("/transactions", walletHandler.GetTransactions)
		wallet.GET("/stats", walletHandler.GetStats)
		wallet.GET("/reconcile", walletHandler.Reconcile)
	}
}
