package routes

import (
	"serbisyo/config"
	"serbisyo/handlers"
	"serbisyo/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the handlers the router needs.
type HandlerBundle struct {
	Payment *handlers.PaymentHandler
	Webhook *handlers.WebhookHandler
	Monitor *handlers.MonitorHandler
	Storage *handlers.StorageHandler
}

// Register wires every endpoint of the payment core.
func Register(r *gin.Engine, cfg *config.Config, b *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	userAuth := middleware.JWTAuthUserMiddleware([]byte(cfg.JWTSecret))
	adminAuth := middleware.AdminAuthMiddleware(cfg.AdminToken)

	payments := r.Group("/api/payments")
	{
		payments.POST("", userAuth, b.Payment.InitiatePayment)
		payments.GET("/:bookingID", userAuth, b.Payment.GetPaymentStatus)
		payments.POST("/:bookingID/cancel", userAuth, b.Payment.CancelPayment)
		payments.POST("/:bookingID/proof", userAuth, b.Storage.UploadProof)
		// Provider redirect target; no bearer auth, the session is resolved
		// against the provider's authoritative status.
		payments.GET("/:bookingID/callback", b.Payment.RedirectCallback)
	}

	webhooks := r.Group("/api/webhooks")
	{
		webhooks.POST("/checkout", b.Webhook.CheckoutWebhook)
	}

	admin := r.Group("/api/admin", adminAuth)
	{
		admin.GET("/metrics", b.Monitor.GetMetrics)
		admin.GET("/anomalies", b.Monitor.GetAnomalies)
		admin.POST("/payments/:bookingID/verify", b.Payment.VerifyManualPayment)
		admin.POST("/payments/:bookingID/reject", b.Payment.RejectManualPayment)
	}
}
