package order

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"footvibe_back_end/internal/models"
	"footvibe_back_end/internal/orders"
	"footvibe_back_end/internal/payment"

	"github.com/gin-gonic/gin"
)

// razorpayEvent est le sous-ensemble du payload webhook qui nous intéresse
type razorpayEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// RazorpayWebhook reçoit les notifications serveur-à-serveur de la passerelle.
// Elles font avancer la même machine à états que le callback client : en cas
// de course, la mise à jour conditionnelle garantit une seule mutation.
func RazorpayWebhook(c *gin.Context) {
	const maxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	secret := os.Getenv("RAZORPAY_WEBHOOK_SECRET")
	if secret == "" {
		log.Println("⚠️ Pas de RAZORPAY_WEBHOOK_SECRET — mode test")
	} else if !payment.VerifyWebhookSignature(body, c.GetHeader("X-Razorpay-Signature"), secret) {
		log.Println("🚨 Signature webhook Razorpay invalide")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
		return
	}

	var event razorpayEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "JSON invalide"})
		return
	}

	log.Printf("📥 Événement Razorpay reçu : %s", event.Event)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	order, transitioned, err := Svc.ApplyGatewayEvent(ctx,
		event.Event,
		event.Payload.Payment.Entity.OrderID,
		event.Payload.Payment.Entity.ID,
	)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			// Acquitté quand même : la passerelle n'a rien d'utile à relivrer
			log.Println("⚠️ Webhook pour un ordre inconnu :", event.Payload.Payment.Entity.OrderID)
			c.Status(http.StatusOK)
			return
		}
		log.Println("❌ Erreur traitement webhook:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur traitement webhook"})
		return
	}

	if transitioned && order.Status == models.OrderStatusPaid {
		go sendConfirmation(*order)
	}

	c.Status(http.StatusOK)
}
