package config

import (
	"os"
	"time"
)

// Records drivers.
const (
	RecordsREST     = "rest"
	RecordsPostgres = "postgres"
)

// Storage drivers.
const (
	StorageS3    = "s3"
	StorageMinio = "minio"
)

// Config holds runtime settings for the client.
type Config struct {
	BackendURL          string        `env:"BACKEND_URL"`
	AnonKey             string        `env:"ANON_KEY"`
	StateDB             string        `env:"STATE_DB"`
	LogLevel            string        `env:"LOG_LEVEL"`
	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT"`
	// RefreshLeeway is how long before expiry the access token is renewed.
	RefreshLeeway time.Duration `env:"REFRESH_LEEWAY"`

	Records Records `envPrefix:"RECORDS_"`
	Storage Storage `envPrefix:"STORAGE_"`
}

// Records selects how flat records (brands, tells, profiles) are read.
type Records struct {
	Driver string `env:"DRIVER"`
	// DSN is only used by the postgres driver.
	DSN string `env:"DSN"`
}

// Storage configures the media bucket.
type Storage struct {
	Driver    string `env:"DRIVER"`
	Endpoint  string `env:"ENDPOINT"`
	Region    string `env:"REGION"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET"`
	// PublicURL is the prefix under which uploaded objects are readable.
	PublicURL string `env:"PUBLIC_URL"`
	UseSSL    bool   `env:"USE_SSL"`
}

// LoadDefaults populates c with defaults suitable for a local backend.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:54321"
	c.AnonKey = ""
	c.StateDB = "tellbrandz.db"
	c.LogLevel = "info"
	c.OnlineCheckInterval = 10 * time.Second
	c.RequestTimeout = 15 * time.Second
	c.RefreshLeeway = time.Minute
	c.Records = Records{Driver: RecordsREST}
	c.Storage = Storage{
		Driver:    StorageS3,
		Endpoint:  "http://127.0.0.1:54321/storage/v1/s3",
		Region:    "local",
		Bucket:    "tell-media",
		PublicURL: "http://127.0.0.1:54321/storage/v1/object/public/tell-media",
	}
}

// LoadConfig applies defaults, then the JSON file, environment and flags
// from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig with explicit arguments.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
