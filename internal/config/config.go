package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
)

// WhatsApp providers.
const (
	ProviderMeta      = "meta"
	ProviderTwilio    = "twilio"
	ProviderSimulated = "simulated"
)

// Config is the environment-supplied runtime configuration. Load validates
// it once at startup so misconfiguration fails fast instead of surfacing
// mid-request.
type Config struct {
	Port          string
	StorageDriver string

	MongoURI string
	MongoDB  string

	Provider        string
	WhatsAppToken   string
	WhatsAppPhoneID string
	WhatsAppAPIBase string

	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string

	OTPTTL         time.Duration
	OTPCodeLength  int
	SimulateSends  bool
	GatewayTimeout time.Duration

	JWTSecret         string
	RequireMetaReview bool

	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		StorageDriver: getEnv("STORAGE_DRIVER", StorageMemory),

		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  getEnv("MONGO_DB", "trustedlinks"),

		Provider:        getEnv("WHATSAPP_PROVIDER", ProviderMeta),
		WhatsAppToken:   os.Getenv("WHATSAPP_TOKEN"),
		WhatsAppPhoneID: os.Getenv("WHATSAPP_PHONE_ID"),
		WhatsAppAPIBase: getEnv("WHATSAPP_API_BASE", "https://graph.facebook.com/v19.0"),

		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom: os.Getenv("TWILIO_WHATSAPP_FROM"),

		OTPTTL:         time.Duration(getEnvInt("OTP_TTL_SECONDS", 300)) * time.Second,
		OTPCodeLength:  getEnvInt("OTP_CODE_LENGTH", 6),
		SimulateSends:  getEnvBool("OTP_SIMULATE", false),
		GatewayTimeout: time.Duration(getEnvInt("GATEWAY_TIMEOUT_SECONDS", 15)) * time.Second,

		JWTSecret:         getEnv("JWT_SECRET", "trustedlinks_secret"),
		RequireMetaReview: getEnvBool("REQUIRE_META_REVIEW", false),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@trustedlinks.app"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	switch cfg.StorageDriver {
	case StorageMemory, StoragePostgres:
	case StorageMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("STORAGE_DRIVER=mongo requires MONGO_URI")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.SimulateSends {
		cfg.Provider = ProviderSimulated
	}

	switch cfg.Provider {
	case ProviderSimulated:
	case ProviderMeta:
		if cfg.WhatsAppToken == "" || cfg.WhatsAppPhoneID == "" {
			return nil, fmt.Errorf("WhatsApp provider %q requires WHATSAPP_TOKEN and WHATSAPP_PHONE_ID (or set OTP_SIMULATE=true for development)", cfg.Provider)
		}
	case ProviderTwilio:
		if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioWhatsAppFrom == "" {
			return nil, fmt.Errorf("WhatsApp provider %q requires TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_WHATSAPP_FROM (or set OTP_SIMULATE=true for development)", cfg.Provider)
		}
	default:
		return nil, fmt.Errorf("unknown WHATSAPP_PROVIDER %q", cfg.Provider)
	}

	if cfg.OTPCodeLength < 4 || cfg.OTPCodeLength > 10 {
		return nil, fmt.Errorf("OTP_CODE_LENGTH must be between 4 and 10, got %d", cfg.OTPCodeLength)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
