package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for residency documents.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PresignExpirySec bounds the lifetime of retrieval links handed to reviewers.
	PresignExpirySec int
}

// PolicyConfig groups the tunable business thresholds. The defaults mirror the
// values the district currently operates with; none of them are regulatory facts.
type PolicyConfig struct {
	MultiRegistrationThreshold int
	ContractExpiringDays       int
	InsuranceExpiringDays      int
	SchoolYearCutoverMonth     int
	RequiredStateReportType    string
	ReferenceRatePerRoute      float64
	BidWeights                 Weights
	ReadinessWeights           Weights
	ReviewMaxAttempts          int
	BatchConcurrency           int
}

// RegionalConfig backs the regional statistics collaborator when no external
// feed is configured.
type RegionalConfig struct {
	AvgRatePerRoute float64
	AvgOnTimePct    float64
	AvgUtilization  float64
	DistrictCount   int
	RouteCount      int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost      string
	Port         string
	Timezone     string
	LogLevel     string
	StoreBackend string
	Database     DatabaseConfig
	MinIO        MinIOConfig
	Policy       PolicyConfig
	Regional     RegionalConfig
}

// Bid and readiness weight keys.
const (
	WeightPrice      = "price"
	WeightSafety     = "safety"
	WeightFleet      = "fleet"
	WeightExperience = "experience"

	WeightStateFilings       = "state_filings"
	WeightProtectedTransport = "protected_transport"
	WeightDataSharing        = "data_sharing"
	WeightTraining           = "training"
)

// DefaultBidWeights is the rubric the district publishes with each solicitation.
func DefaultBidWeights() Weights {
	return Weights{WeightPrice: 40, WeightSafety: 25, WeightFleet: 20, WeightExperience: 15}
}

// DefaultReadinessWeights weighs every compliance category equally.
func DefaultReadinessWeights() Weights {
	return Weights{WeightStateFilings: 25, WeightProtectedTransport: 25, WeightDataSharing: 25, WeightTraining: 25}
}

// DefaultPolicy returns the policy used when no overrides are set.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		MultiRegistrationThreshold: 4,
		ContractExpiringDays:       90,
		InsuranceExpiringDays:      30,
		SchoolYearCutoverMonth:     8,
		RequiredStateReportType:    "transportation_annual",
		ReferenceRatePerRoute:      450,
		BidWeights:                 DefaultBidWeights(),
		ReadinessWeights:           DefaultReadinessWeights(),
		ReviewMaxAttempts:          3,
		BatchConcurrency:           4,
	}
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence.
func Load() (*AppConfig, error) {
	def := DefaultPolicy()

	bidWeights, err := getEnvWeights("BID_WEIGHTS", def.BidWeights)
	if err != nil {
		return nil, err
	}
	readinessWeights, err := getEnvWeights("READINESS_WEIGHTS", def.ReadinessWeights)
	if err != nil {
		return nil, err
	}

	cfg := &AppConfig{
		AppHost:      getEnv("APP_HOST", "localhost:8080"),
		Port:         getEnv("PORT", "8080"),
		Timezone:     getEnv("APP_TIMEZONE", "UTC"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		StoreBackend: getEnv("STORE_BACKEND", "postgres"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:         getEnv("MINIO_ENDPOINT", ""),
			AccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:        getEnv("MINIO_SECRET_KEY", ""),
			Bucket:           getEnv("MINIO_BUCKET", ""),
			UseSSL:           getEnvBool("MINIO_USE_SSL", false),
			PresignExpirySec: getEnvInt("MINIO_PRESIGN_EXPIRY_SEC", 900),
		},
		Policy: PolicyConfig{
			MultiRegistrationThreshold: getEnvInt("MULTI_REGISTRATION_THRESHOLD", def.MultiRegistrationThreshold),
			ContractExpiringDays:       getEnvInt("CONTRACT_EXPIRING_DAYS", def.ContractExpiringDays),
			InsuranceExpiringDays:      getEnvInt("INSURANCE_EXPIRING_DAYS", def.InsuranceExpiringDays),
			SchoolYearCutoverMonth:     getEnvInt("SCHOOL_YEAR_CUTOVER_MONTH", def.SchoolYearCutoverMonth),
			RequiredStateReportType:    getEnv("REQUIRED_STATE_REPORT_TYPE", def.RequiredStateReportType),
			ReferenceRatePerRoute:      getEnvFloat("REFERENCE_RATE_PER_ROUTE", def.ReferenceRatePerRoute),
			BidWeights:                 bidWeights,
			ReadinessWeights:           readinessWeights,
			ReviewMaxAttempts:          getEnvInt("REVIEW_MAX_ATTEMPTS", def.ReviewMaxAttempts),
			BatchConcurrency:           getEnvInt("BATCH_CONCURRENCY", def.BatchConcurrency),
		},
		Regional: RegionalConfig{
			AvgRatePerRoute: getEnvFloat("REGIONAL_AVG_RATE_PER_ROUTE", 0),
			AvgOnTimePct:    getEnvFloat("REGIONAL_AVG_ON_TIME_PCT", 0),
			AvgUtilization:  getEnvFloat("REGIONAL_AVG_UTILIZATION", 0),
			DistrictCount:   getEnvInt("REGIONAL_DISTRICT_COUNT", 0),
			RouteCount:      getEnvInt("REGIONAL_ROUTE_COUNT", 0),
		},
	}

	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that thresholds are usable and weight maps sum to 100.
func (p PolicyConfig) Validate() error {
	if p.MultiRegistrationThreshold < 1 {
		return fmt.Errorf("invalid policy: multi-registration threshold must be at least 1")
	}
	if p.ContractExpiringDays < 0 || p.InsuranceExpiringDays < 0 {
		return fmt.Errorf("invalid policy: expiring horizons must not be negative")
	}
	if p.SchoolYearCutoverMonth < 1 || p.SchoolYearCutoverMonth > 12 {
		return fmt.Errorf("invalid policy: school year cutover month must be 1-12")
	}
	if p.ReferenceRatePerRoute <= 0 {
		return fmt.Errorf("invalid policy: reference rate per route must be positive")
	}
	if p.ReviewMaxAttempts < 1 || p.BatchConcurrency < 1 {
		return fmt.Errorf("invalid policy: review attempts and batch concurrency must be at least 1")
	}
	if err := p.BidWeights.Validate(WeightPrice, WeightSafety, WeightFleet, WeightExperience); err != nil {
		return fmt.Errorf("bid weights: %w", err)
	}
	if err := p.ReadinessWeights.Validate(WeightStateFilings, WeightProtectedTransport, WeightDataSharing, WeightTraining); err != nil {
		return fmt.Errorf("readiness weights: %w", err)
	}
	return nil
}

// Weights maps a scoring component to its share of 100.
type Weights map[string]float64

// Validate requires exactly the given keys, no negative values, and a total of 100.
func (w Weights) Validate(keys ...string) error {
	if len(w) != len(keys) {
		return fmt.Errorf("expected %d weights, got %d", len(keys), len(w))
	}
	var total float64
	for _, k := range keys {
		v, ok := w[k]
		if !ok {
			return fmt.Errorf("missing weight %q", k)
		}
		if v < 0 {
			return fmt.Errorf("weight %q must not be negative", k)
		}
		total += v
	}
	if total < 99.999 || total > 100.001 {
		return fmt.Errorf("weights must sum to 100, got %g", total)
	}
	return nil
}

// String renders weights as "key:value,..." in key order.
func (w Weights) String() string {
	keys := make([]string, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+strconv.FormatFloat(w[k], 'f', -1, 64))
	}
	return strings.Join(parts, ",")
}

// ParseWeights reads "key:value,key:value".
func ParseWeights(s string) (Weights, error) {
	w := Weights{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid weight entry %q", part)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight value for %q: %w", k, err)
		}
		w[strings.TrimSpace(k)] = f
	}
	return w, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getEnvWeights(key string, def Weights) (Weights, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	w, err := ParseWeights(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return w, nil
}
