package config // package config loads application configuration from environment variables

import (
	"log"     // log reports configuration errors and halts execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types

	"github.com/joho/godotenv" // godotenv loads a local .env file when present
)

// Config holds all runtime configuration values.  Each field corresponds to an
// environment variable.  Required values (server, database, JWT) abort startup
// when missing; integration values (Razorpay, object storage, Google OAuth)
// are optional so the service can boot without the external accounts wired up.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret        string // secret used to sign access tokens
	JWTRefreshSecret string // secret used to sign refresh tokens
	AccessTTLMin     int    // access token time-to-live in minutes
	RefreshTTLDays   int    // refresh token time-to-live in days
	BcryptCost       int    // bcrypt cost for password hashing

	RazorpayKeyID         string // Razorpay API key id (published to the checkout client)
	RazorpayKeySecret     string // Razorpay API key secret, also the HMAC key for payment signatures
	RazorpayWebhookSecret string // shared secret for webhook signature verification

	S3Endpoint  string // object store endpoint (host:port)
	S3AccessKey string // object store access key
	S3SecretKey string // object store secret key
	S3Bucket    string // bucket holding uploaded project images
	S3Region    string // bucket region
	S3UseSSL    bool   // use https when talking to the object store

	GoogleClientID     string // Google OAuth client id
	GoogleClientSecret string // Google OAuth client secret
	GoogleRedirectURL  string // registered OAuth callback URL

	PendingTxnTTLMin int    // minutes before a pending transaction is swept as expired
	ReconcileSpec    string // cron spec for the pending-transaction sweep
}

// Load reads configuration from the environment.  A .env file in the working
// directory is merged in first so local development does not need exported
// variables.  Missing required values cause a fatal log message.
func Load() Config {
	_ = godotenv.Load() // absence of .env is fine; exported vars win anyway

	return Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"), // empty password allowed
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret:        must("JWT_SECRET"),
		JWTRefreshSecret: must("JWT_REFRESH_SECRET"),
		AccessTTLMin:     mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:   mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:       mustInt("BCRYPT_COST"),

		RazorpayKeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    os.Getenv("S3_REGION"),
		S3UseSSL:    envBool("S3_USE_SSL", true),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		PendingTxnTTLMin: envInt("PENDING_TXN_TTL_MIN", 30),
		ReconcileSpec:    envStr("RECONCILE_CRON", "@every 5m"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
