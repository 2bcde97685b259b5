package payment

import "testing"

// Vecteur de référence calculé avec une implémentation HMAC-SHA256 indépendante
const (
	refOrderID   = "order_Lx123"
	refPaymentID = "pay_Lx987"
	refSecret    = "s3cr3t"
	refSignature = "ddabd3f1b18a1dee7fa404a89ce20a2c3ecef1c695d6b61ba779298a0adc386d"
)

func TestVerifySignatureReferenceVector(t *testing.T) {
	if !VerifySignature(refOrderID, refPaymentID, refSignature, refSecret) {
		t.Fatal("la signature de référence doit être acceptée")
	}
}

func TestVerifySignatureRejectsTamperedSignature(t *testing.T) {
	// Un seul caractère inversé suffit à invalider
	tampered := "d" + refSignature[1:]
	if tampered == refSignature {
		tampered = "e" + refSignature[1:]
	}
	if VerifySignature(refOrderID, refPaymentID, tampered, refSecret) {
		t.Fatal("une signature altérée ne doit jamais être acceptée")
	}
}

func TestVerifySignatureRejectsSwappedInputs(t *testing.T) {
	// L'ordre de concaténation "order|payment" fait partie de la convention :
	// inverser les deux identifiants doit casser la vérification
	if VerifySignature(refPaymentID, refOrderID, refSignature, refSecret) {
		t.Fatal("l'inversion order/payment ne doit pas valider")
	}
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	if VerifySignature(refOrderID, refPaymentID, refSignature, "autre_secret") {
		t.Fatal("un mauvais secret ne doit pas valider")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	// HMAC-SHA256(body, "whsec") calculé avec une implémentation indépendante
	good := "4673dd707ef4c41b987cb7fefe1583142dc702388c93145b7814b9ad3d3c183e"

	if !VerifyWebhookSignature(body, good, "whsec") {
		t.Fatal("la signature webhook de référence doit être acceptée")
	}
	if VerifyWebhookSignature(body, good, "autre") {
		t.Fatal("un mauvais secret webhook ne doit pas valider")
	}
	if VerifyWebhookSignature(append(body, ' '), good, "whsec") {
		t.Fatal("un body modifié ne doit pas valider")
	}
}

func TestVerifySignatureRejectsUppercaseHex(t *testing.T) {
	// La convention Razorpay est l'hex minuscule, la comparaison est stricte
	upper := make([]byte, len(refSignature))
	for i := 0; i < len(refSignature); i++ {
		c := refSignature[i]
		if c >= 'a' && c <= 'f' {
			c -= 'a' - 'A'
		}
		upper[i] = c
	}
	if VerifySignature(refOrderID, refPaymentID, string(upper), refSecret) {
		t.Fatal("l'hex majuscule ne doit pas valider")
	}
}
