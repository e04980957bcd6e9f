package config

import (
	"log"
	"os"
	"time"
)

type Config struct {
	Port           string
	DBDSN          string
	LogFile        string
	MediaDir       string
	JWTSecret      string
	TokenTTL       time.Duration
	WhatsAppNumber string // country code + number, no "+" or spaces
	BankAccount    string
	BankAccountNum string
	BankName       string
}

func Load() Config {
	cfg := Config{
		Port:           getenv("PORT", "8080"),
		DBDSN:          getenv("DB_DSN", "demaincloset.db"), // sqlite file in project root
		LogFile:        getenv("LOG_FILE", "./demaincloset.log"),
		MediaDir:       getenv("MEDIA_DIR", "./web/media"),
		JWTSecret:      getenv("JWT_SECRET", "dev-only-secret-change-me"),
		TokenTTL:       24 * time.Hour,
		WhatsAppNumber: getenv("WHATSAPP_NUMBER", "2349053223790"),
		BankAccount:    getenv("BANK_ACCOUNT_NAME", "Demain Closet"),
		BankAccountNum: getenv("BANK_ACCOUNT_NUMBER", "0123456789"),
		BankName:       getenv("BANK_NAME", "GTBank"),
	}
	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.TokenTTL = d
		} else {
			log.Printf("[warn] bad TOKEN_TTL %q: %v", ttl, err)
		}
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s MEDIA_DIR=%s WHATSAPP=%s TOKEN_TTL=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.MediaDir, cfg.WhatsAppNumber, cfg.TokenTTL)
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
