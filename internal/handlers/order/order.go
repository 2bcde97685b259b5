package order

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"footvibe_back_end/internal/cache"
	"footvibe_back_end/internal/database"
	"footvibe_back_end/internal/models"
	"footvibe_back_end/internal/orders"
	"footvibe_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Svc est construit une fois dans main et injecté ici
var Svc *orders.Service

func Init(svc *orders.Service) { Svc = svc }

type itemInput struct {
	Product  string   `json:"product"`
	Quantity int      `json:"quantity"`
	Price    float64  `json:"price"`
	Size     *float64 `json:"size,omitempty"`
	Color    *string  `json:"color,omitempty"`
}

// CreateOrder crée la commande locale et l'ordre Razorpay correspondant
func CreateOrder(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var req struct {
		Items []itemInput `json:"items"`
		Total *float64    `json:"total"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 || req.Total == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Items et total sont requis"})
		return
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, in := range req.Items {
		pid, err := primitive.ObjectIDFromHex(in.Product)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide: " + in.Product})
			return
		}
		items = append(items, models.OrderItem{
			ProductID: pid,
			Quantity:  in.Quantity,
			Price:     in.Price,
			Size:      in.Size,
			Color:     in.Color,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	res, err := Svc.Create(ctx, userID, items, *req.Total)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrEmptyItems),
			errors.Is(err, orders.ErrInvalidItem),
			errors.Is(err, orders.ErrUnknownProduct),
			errors.Is(err, orders.ErrTotalMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			// Échec passerelle ou persistance : jamais de faux succès
			log.Println("❌ Erreur création commande:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création commande"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"orderId": res.RazorpayOrderID,
		"amount":  res.AmountPaise,
		"key":     res.KeyID,
	})
}

// VerifyPayment vérifie la signature Razorpay et passe la commande en "paid"
func VerifyPayment(c *gin.Context) {
	var req struct {
		RazorpayOrderID   string `json:"razorpay_order_id"`
		RazorpayPaymentID string `json:"razorpay_payment_id"`
		RazorpaySignature string `json:"razorpay_signature"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Champs de vérification manquants"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, transitioned, err := Svc.Verify(ctx, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrBadSignature):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Signature de paiement invalide"})
		case errors.Is(err, orders.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Commande introuvable"})
		case errors.Is(err, orders.ErrOrderFinalized):
			c.JSON(http.StatusConflict, gin.H{"message": "Commande déjà finalisée"})
		default:
			log.Println("❌ Erreur vérification paiement:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Erreur vérification paiement"})
		}
		return
	}

	// E-mail uniquement quand CETTE invocation a réalisé la transition :
	// les relivraisons idempotentes ne doivent déclencher aucun effet de bord
	if transitioned {
		go sendConfirmation(*order)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Paiement vérifié avec succès"})
}

// GetOrders retourne l'historique de l'utilisateur connecté
func GetOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	list, err := Svc.History(ctx, userID)
	if err != nil {
		log.Println("❌ Erreur récupération commandes:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// sendConfirmation envoie l'e-mail de confirmation pour une commande payée
func sendConfirmation(order models.Order) {
	if database.MongoDB == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	userOID, err := primitive.ObjectIDFromHex(order.UserID)
	if err != nil {
		log.Println("⚠️ user id invalide pour l'e-mail de confirmation:", order.UserID)
		return
	}

	var user models.User
	if err := database.Users().FindOne(ctx, bson.M{"_id": userOID}).Decode(&user); err != nil {
		log.Println("⚠️ Utilisateur introuvable pour l'e-mail de confirmation:", err)
		return
	}

	// Enrichit les lignes avec les noms produits (cache read-through)
	for i := range order.Items {
		if p, err := cache.GetProduct(ctx, order.Items[i].ProductID); err == nil {
			order.Items[i].Product = p
		}
	}

	html := utils.GenerateOrderConfirmationHTML(order)
	if err := utils.SendConfirmationEmail(user.Email, "Confirmation de votre commande FootVibe", html); err != nil {
		log.Println("❌ Erreur envoi e-mail confirmation:", err)
	} else {
		log.Println("📧 E-mail de confirmation envoyé à", user.Email)
	}
}
