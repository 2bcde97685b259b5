package utils

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("ch4ussures!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	ok, err := VerifyPassword("ch4ussures!", hash)
	if err != nil || !ok {
		t.Fatalf("le bon mot de passe doit être accepté (ok=%v, err=%v)", ok, err)
	}

	ok, err = VerifyPassword("autre", hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatal("un mauvais mot de passe ne doit pas être accepté")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	if ok, err := VerifyPassword("x", "$2a$10$pasdutoutargon2"); err == nil && ok {
		t.Fatal("un hash non Argon2 doit être rejeté")
	}
}

func TestHashPasswordSaltsAreUnique(t *testing.T) {
	h1, _ := HashPassword("même")
	h2, _ := HashPassword("même")
	if h1 == h2 {
		t.Fatal("deux hashs du même mot de passe doivent différer (salt aléatoire)")
	}
}
