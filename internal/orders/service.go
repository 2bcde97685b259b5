package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"footvibe_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrEmptyItems     = errors.New("items et total sont requis")
	ErrInvalidItem    = errors.New("ligne de commande invalide")
	ErrUnknownProduct = errors.New("produit introuvable")
	ErrTotalMismatch  = errors.New("le total déclaré ne correspond pas aux lignes")
	ErrBadSignature   = errors.New("signature de paiement invalide")
	ErrOrderNotFound  = errors.New("commande introuvable")
	ErrOrderFinalized = errors.New("commande déjà finalisée")

	// ErrNotApplied est renvoyé par le Store quand la transition
	// conditionnelle created → paid n'a correspondu à aucun document
	ErrNotApplied = errors.New("transition non appliquée")
)

// Store est la persistance des commandes. MarkPaid doit être une mise à jour
// conditionnelle atomique (filtre sur status = created) : c'est elle qui
// garantit qu'une seule des deux vérifications concurrentes mute la commande.
// ListByUser retourne les commandes les plus récentes d'abord.
type Store interface {
	Insert(ctx context.Context, o *models.Order) error
	MarkPaid(ctx context.Context, razorpayOrderID, paymentID string) (*models.Order, error)
	MarkFailed(ctx context.Context, razorpayOrderID string) (*models.Order, error)
	FindByRazorpayID(ctx context.Context, razorpayOrderID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	FindProducts(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
}

// Gateway est le binding vers la passerelle de paiement
type Gateway interface {
	CreateOrder(amountPaise int64, currency, receipt string) (string, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// Service porte le flux commande/paiement : création locale + ordre distant,
// puis vérification de la confirmation et transition de statut.
type Service struct {
	store   Store
	gateway Gateway
}

func NewService(store Store, gateway Gateway) *Service {
	return &Service{store: store, gateway: gateway}
}

// CreateResult est ce que le front a besoin pour ouvrir Razorpay Checkout
type CreateResult struct {
	RazorpayOrderID string
	AmountPaise     int64
	KeyID           string
}

// Create valide le panier, recalcule le total, crée l'ordre Razorpay puis
// persiste la commande locale en une seule écriture. L'_id est généré avant
// l'appel passerelle pour servir de receipt ; si la passerelle échoue, rien
// n'est persisté.
func (s *Service) Create(ctx context.Context, userID string, items []models.OrderItem, declaredTotal float64) (*CreateResult, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantité < 1", ErrInvalidItem)
		}
		if item.Price < 0 {
			return nil, fmt.Errorf("%w: prix négatif", ErrInvalidItem)
		}
		if item.ProductID.IsZero() {
			return nil, fmt.Errorf("%w: produit manquant", ErrInvalidItem)
		}
		ids = append(ids, item.ProductID)
	}

	// Chaque référence produit doit exister au moment de la commande
	products, err := s.store.FindProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("résolution produits: %w", err)
	}
	for _, item := range items {
		if _, ok := products[item.ProductID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, item.ProductID.Hex())
		}
	}

	// Le total facturé est TOUJOURS recalculé depuis les lignes ; le total
	// envoyé par le client n'est qu'une déclaration qu'on contrôle
	total := 0.0
	for _, item := range items {
		total += item.Subtotal()
	}
	if math.Abs(total-declaredTotal) > 0.009 {
		return nil, fmt.Errorf("%w: déclaré %.2f, calculé %.2f", ErrTotalMismatch, declaredTotal, total)
	}

	orderID := primitive.NewObjectID()
	amountPaise := int64(math.Round(total * 100))

	rzpOrderID, err := s.gateway.CreateOrder(amountPaise, "INR", orderID.Hex())
	if err != nil {
		// Rien n'a été persisté : le client peut simplement réessayer
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		ID:              orderID,
		UserID:          userID,
		Items:           items,
		Total:           total,
		Status:          models.OrderStatusCreated,
		RazorpayOrderID: rzpOrderID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.Insert(ctx, order); err != nil {
		// Ordre distant orphelin : il expirera non payé côté passerelle,
		// mais on le trace pour la réconciliation manuelle
		log.Printf("🚨 Commande %s non persistée après création ordre Razorpay %s: %v",
			orderID.Hex(), rzpOrderID, err)
		return nil, fmt.Errorf("persistance commande: %w", err)
	}

	log.Printf("💳 Commande %s créée (ordre Razorpay %s, %d paise) pour user %s",
		orderID.Hex(), rzpOrderID, amountPaise, userID)

	return &CreateResult{
		RazorpayOrderID: rzpOrderID,
		AmountPaise:     amountPaise,
		KeyID:           s.gateway.KeyID(),
	}, nil
}

// Verify contrôle la signature puis fait avancer la commande created → paid.
// Retourne (commande, true) si cette invocation a réalisé la transition,
// (commande, false) si elle était déjà payée (relivraison de confirmation).
func (s *Service) Verify(ctx context.Context, razorpayOrderID, paymentID, signature string) (*models.Order, bool, error) {
	if razorpayOrderID == "" || paymentID == "" || signature == "" {
		return nil, false, ErrBadSignature
	}

	if !s.gateway.VerifySignature(razorpayOrderID, paymentID, signature) {
		// Possible tentative de forge : on trace pour l'audit
		log.Printf("🚨 Signature invalide pour ordre Razorpay %s (paiement %s)", razorpayOrderID, paymentID)
		return nil, false, ErrBadSignature
	}

	// La recherche se fait STRICTEMENT par l'identifiant d'ordre signé,
	// jamais par un id local fourni par le client
	order, err := s.store.MarkPaid(ctx, razorpayOrderID, paymentID)
	if err == nil {
		log.Printf("✅ Commande %s payée (paiement %s)", order.ID.Hex(), paymentID)
		return order, true, nil
	}
	if !errors.Is(err, ErrNotApplied) {
		return nil, false, fmt.Errorf("transition commande: %w", err)
	}

	// La mise à jour conditionnelle n'a rien touché : soit la commande
	// n'existe pas, soit elle est déjà dans un état terminal
	order, err = s.store.FindByRazorpayID(ctx, razorpayOrderID)
	if err != nil {
		return nil, false, err
	}
	if order == nil {
		return nil, false, ErrOrderNotFound
	}

	switch order.Status {
	case models.OrderStatusPaid:
		// Relivraison de confirmation : succès idempotent, aucune mutation
		return order, false, nil
	case models.OrderStatusFailed:
		return nil, false, ErrOrderFinalized
	default:
		return nil, false, fmt.Errorf("état de commande incohérent pour %s: %s", razorpayOrderID, order.Status)
	}
}

// ApplyGatewayEvent applique un événement webhook déjà authentifié (la
// signature du webhook est contrôlée par le handler sur le body brut).
// Les webhooks et le callback client se font concurrence sur la même
// commande : les deux passent par les mêmes transitions conditionnelles.
func (s *Service) ApplyGatewayEvent(ctx context.Context, event, razorpayOrderID, paymentID string) (*models.Order, bool, error) {
	if razorpayOrderID == "" {
		return nil, false, ErrOrderNotFound
	}

	switch event {
	case "payment.captured":
		order, err := s.store.MarkPaid(ctx, razorpayOrderID, paymentID)
		if err == nil {
			log.Printf("✅ Commande %s payée via webhook (paiement %s)", order.ID.Hex(), paymentID)
			return order, true, nil
		}
		if !errors.Is(err, ErrNotApplied) {
			return nil, false, err
		}
	case "payment.failed":
		order, err := s.store.MarkFailed(ctx, razorpayOrderID)
		if err == nil {
			log.Printf("⚠️ Commande %s marquée failed via webhook", order.ID.Hex())
			return order, true, nil
		}
		if !errors.Is(err, ErrNotApplied) {
			return nil, false, err
		}
	default:
		// Événement non géré : acquitté sans effet pour éviter les relivraisons
		return nil, false, nil
	}

	order, err := s.store.FindByRazorpayID(ctx, razorpayOrderID)
	if err != nil {
		return nil, false, err
	}
	if order == nil {
		return nil, false, ErrOrderNotFound
	}

	// État déjà terminal : no-op idempotent. Un payment.failed tardif ne
	// dégrade jamais une commande déjà payée (une nouvelle tentative de
	// paiement sur le même ordre a pu réussir entre-temps).
	return order, false, nil
}

// History retourne les commandes de l'utilisateur, plus récentes d'abord,
// avec les lignes enrichies des produits référencés.
func (s *Service) History(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var ids []primitive.ObjectID
	for _, o := range orders {
		for _, item := range o.Items {
			ids = append(ids, item.ProductID)
		}
	}
	if len(ids) == 0 {
		return orders, nil
	}

	products, err := s.store.FindProducts(ctx, ids)
	if err != nil {
		// L'historique reste consultable même si l'enrichissement échoue
		log.Println("⚠️ Enrichissement produits impossible:", err)
		return orders, nil
	}

	for i := range orders {
		for j := range orders[i].Items {
			if p, ok := products[orders[i].Items[j].ProductID]; ok {
				prod := p
				orders[i].Items[j].Product = &prod
			}
		}
	}
	return orders, nil
}
