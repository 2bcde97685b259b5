package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func Load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
}

// MustGetenv arrête le serveur si une variable critique est absente.
// On échoue au démarrage plutôt qu'à la première requête.
func MustGetenv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("❌ Variable d'environnement manquante : %s", key)
	}
	return v
}
