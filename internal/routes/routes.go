package routes

import (
	"footvibe_back_end/internal/handlers/order"
	"footvibe_back_end/internal/handlers/product"
	"footvibe_back_end/internal/handlers/setting"
	"footvibe_back_end/internal/handlers/user"
	"footvibe_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// Auth
	auth := api.Group("/auth")
	auth.POST("/signup", user.Signup)
	auth.POST("/login", middleware.LoginRateLimit(), user.Login)

	// Produits
	products := api.Group("/products")
	products.GET("", product.GetProducts)
	products.GET("/search", middleware.SearchRateLimit(), product.SearchProducts)
	products.GET("/:id", product.GetProductByID)
	products.POST("", middleware.AuthRequired(), middleware.RequireAdmin, product.AddProduct)
	products.PUT("/:id", middleware.AuthRequired(), middleware.RequireAdmin, product.UpdateProduct)
	products.DELETE("/:id", middleware.AuthRequired(), middleware.RequireAdmin, product.DeleteProduct)
	products.POST("/:id/image", middleware.AuthRequired(), middleware.RequireAdmin, product.UploadImage)

	// Commandes / paiement
	ord := api.Group("/orders")
	ord.POST("", middleware.AuthRequired(), order.CreateOrder)
	// La vérification n'est pas protégée : sa preuve d'authenticité est la
	// signature HMAC, pas le bearer token
	ord.POST("/verify", order.VerifyPayment)
	ord.POST("/webhook", order.RazorpayWebhook)
	ord.GET("", middleware.AuthRequired(), order.GetOrders)

	// Réglages boutique
	settings := api.Group("/settings")
	settings.GET("", setting.GetSettings)
	settings.PUT("", middleware.AuthRequired(), middleware.RequireAdmin, setting.UpdateSettings)
}
