package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"

	razorpay "github.com/razorpay/razorpay-go"
)

var (
	client    *razorpay.Client
	keyID     string
	keySecret string
)

// Init crée le client Razorpay une seule fois au démarrage.
// Si les clés manquent on arrête tout de suite, pas à la première commande.
func Init() {
	keyID = os.Getenv("RAZORPAY_KEY_ID")
	keySecret = os.Getenv("RAZORPAY_KEY_SECRET")

	if keyID == "" || keySecret == "" {
		log.Fatal("❌ Impossible d'initialiser Razorpay : clés manquantes dans .env")
	}

	client = razorpay.NewClient(keyID, keySecret)
	log.Println("✅ Razorpay initialisé")
}

// Gateway est le binding Razorpay injecté dans le service commandes
type Gateway struct{}

// KeyID retourne la clé publique à renvoyer au front (Razorpay Checkout)
func (Gateway) KeyID() string { return keyID }

// CreateOrder crée l'ordre de paiement distant. Le receipt est l'identifiant
// de la commande locale : c'est lui qui rend la relation auditable et qui
// sert de clé d'idempotence côté passerelle.
func (Gateway) CreateOrder(amountPaise int64, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("création ordre Razorpay: %w", err)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", errors.New("réponse Razorpay sans identifiant d'ordre")
	}
	return id, nil
}

// VerifySignature vérifie la signature d'une confirmation de paiement
func (Gateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(orderID, paymentID, signature, keySecret)
}

// VerifySignature recalcule la signature HMAC-SHA256 (hex minuscule) de
// "orderID|paymentID" — l'ordre et le séparateur sont imposés par la
// convention de signature Razorpay, ne pas y toucher.
// Comparaison en temps constant : c'est la seule preuve que la confirmation
// vient bien de la passerelle et pas d'un client qui forge la requête.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature vérifie l'en-tête X-Razorpay-Signature d'un webhook :
// HMAC-SHA256 du body brut avec le secret de webhook, hex minuscule
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
