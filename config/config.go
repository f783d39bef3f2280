package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// DevJWTSecret is the signing secret used when JWT_SECRET is unset. Rejected in production.
const DevJWTSecret = "your_jwt_secret"

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// Storage: postgres, mongo or memory
	DBDriver string

	// Postgres
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration
	MigrationsDir string

	// MongoDB
	MongoURI string
	MongoDB  string

	// Redis user cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheEnabled  bool
	CacheTTL      time.Duration

	// JWT
	JWTSecret      string
	JWTTTL         time.Duration
	JWTRememberTTL time.Duration
	JWTOTPTTL      time.Duration

	OTPTTL time.Duration

	// CORS
	CORSAllowedOrigins string // comma-separated

	// SMS: log, twilio or queue
	SMSTransport      string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	SMSCountryCode    string

	// RabbitMQ
	RabbitMQURL        string
	RabbitMQSMSQueue   string
	RabbitMQEmailQueue string

	// Mailgun
	MailSendEnabled bool
	MailgunDomain   string
	MailgunAPIKey   string
	MailgunSender   string

	// Company/Links for emails
	CompanyName string
	SupportURL  string

	// Elasticsearch; empty address list disables booking search
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESBookingsIndex    string

	SentryDSN string

	// Prometheus /metrics
	DebugMetricsEnabled bool

	// HTTP access log toggle
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "tourism-booking-api"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "5000"),
		GinMode: getenv("GIN_MODE", "release"),

		DBDriver: strings.ToLower(getenv("DB_DRIVER", "postgres")),

		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "tourism"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),
		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),

		MongoURI: getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getenv("MONGO_DB", "tourism"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),
		CacheEnabled:  getbool("CACHE_ENABLED", false),
		CacheTTL:      getdur("CACHE_TTL", 5*time.Minute),

		JWTSecret:      getenv("JWT_SECRET", DevJWTSecret),
		JWTTTL:         getdur("JWT_TTL", 7*24*time.Hour),
		JWTRememberTTL: getdur("JWT_REMEMBER_TTL", 30*24*time.Hour),
		JWTOTPTTL:      getdur("JWT_OTP_TTL", 30*24*time.Hour),

		OTPTTL: getdur("OTP_TTL", 10*time.Minute),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:5500"),

		SMSTransport:      strings.ToLower(getenv("SMS_TRANSPORT", "log")),
		TwilioAccountSID:  getenv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getenv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber: getenv("TWILIO_PHONE_NUMBER", ""),
		SMSCountryCode:    getenv("SMS_COUNTRY_CODE", "+91"),

		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		RabbitMQSMSQueue:   getenv("RABBITMQ_SMS_QUEUE", "sms"),
		RabbitMQEmailQueue: getenv("RABBITMQ_EMAIL_QUEUE", "emails"),

		MailSendEnabled: getbool("MAIL_SEND_ENABLED", false),
		MailgunDomain:   getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:   getenv("MAILGUN_API_KEY", ""),
		MailgunSender:   getenv("MAILGUN_SENDER", ""),

		CompanyName: getenv("COMPANY_NAME", "Uttarakhand Tourist Guide"),
		SupportURL:  getenv("SUPPORT_URL", ""),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESBookingsIndex:    getenv("ES_BOOKINGS_INDEX", "bookings"),

		SentryDSN: getenv("SENTRY_DSN", ""),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", true),
		HTTPLogEnabled:      getbool("HTTP_LOG_ENABLED", false),
	}
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Validate rejects settings that are unsafe or incomplete for the current environment.
func (c *Config) Validate() error {
	var problems []string
	switch c.DBDriver {
	case "postgres", "mongo", "memory":
	default:
		problems = append(problems, "DB_DRIVER must be postgres, mongo or memory")
	}
	switch c.SMSTransport {
	case "log":
	case "twilio":
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" || c.TwilioPhoneNumber == "" {
			problems = append(problems, "SMS_TRANSPORT=twilio requires TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_PHONE_NUMBER")
		}
	case "queue":
		if c.RabbitMQURL == "" {
			problems = append(problems, "SMS_TRANSPORT=queue requires RABBITMQ_URL")
		}
	default:
		problems = append(problems, "SMS_TRANSPORT must be log, twilio or queue")
	}
	if c.Env == "production" {
		if c.JWTSecret == "" || c.JWTSecret == DevJWTSecret {
			problems = append(problems, "JWT_SECRET must be set in production")
		}
		if c.SMSTransport == "log" {
			problems = append(problems, "SMS_TRANSPORT=log is not allowed in production")
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// PostgresDSN returns a DSN compatible with pgx
func (c *Config) PostgresDSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string { return splitList(c.CORSAllowedOrigins) }

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string { return splitList(c.ElasticsearchAddrs) }
