package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"footvibe_back_end/internal/config"
	"footvibe_back_end/internal/database"
	"footvibe_back_end/internal/handlers/order"
	"footvibe_back_end/internal/orders"
	"footvibe_back_end/internal/payment"
	"footvibe_back_end/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.Load()

	// Les secrets critiques doivent exister avant d'accepter du trafic
	config.MustGetenv("JWT_SECRET")
	payment.Init()

	database.ConnectDatabases()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(ctx); err != nil {
		log.Fatal("❌ Erreur création index MongoDB:", err)
	}
	cancel()

	// Le service commandes reçoit ses dépendances une seule fois ici
	store := orders.NewMongoStore(database.Orders(), database.Products())
	order.Init(orders.NewService(store, payment.Gateway{}))

	r := gin.Default()

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:5173"
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	routes.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		log.Println("🚀 Serveur FootVibe lancé sur le port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ Erreur serveur:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("⚠️ Arrêt du serveur...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("⚠️ Arrêt forcé:", err)
	}
	database.Disconnect(shutdownCtx)
	log.Println("✅ Serveur arrêté proprement")
}
