package config

import (
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
	Store    *storeConfig
	Events   *eventsConfig
}

// dbConfig configures the optional idempotency ledger. Type "none" disables
// it; the guard then relies on the object-store probe alone.
type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"none"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"ingest"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address        string `envconfig:"SALES_INGEST_ADDRESS" default:":8080"`
	MetricsAddress string `envconfig:"SALES_INGEST_METRICS_ADDRESS" default:":8081"`
	LogLevel       string `envconfig:"SALES_INGEST_LOG_LEVEL" default:"info"`
	MaxAttempts    int    `envconfig:"SALES_INGEST_MAX_ATTEMPTS" default:"3"`
}

type storeConfig struct {
	Endpoint        string `envconfig:"SALES_INGEST_S3_ENDPOINT" default:"localhost:9000"`
	AccessKey       string `envconfig:"SALES_INGEST_S3_ACCESS_KEY" default:""`
	SecretKey       string `envconfig:"SALES_INGEST_S3_SECRET_KEY" default:""`
	Bucket          string `envconfig:"SALES_INGEST_S3_BUCKET" default:"sales-data"`
	UseSSL          bool   `envconfig:"SALES_INGEST_S3_USE_SSL" default:"false"`
	InboundPrefix   string `envconfig:"SALES_INGEST_INBOUND_PREFIX" default:"input/"`
	ProcessedPrefix string `envconfig:"SALES_INGEST_PROCESSED_PREFIX" default:"processed/"`
	RejectedPrefix  string `envconfig:"SALES_INGEST_REJECTED_PREFIX" default:"rejected/"`
}

type eventsConfig struct {
	Topic string `envconfig:"SALES_INGEST_EVENTS_TOPIC" default:"sales.ingest.events"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}
