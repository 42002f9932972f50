package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, database connection,
// background training runs, and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"10s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"imgclass" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// JWT contains the RS256 key material for API authentication
	JWT struct {
		// PublicKey is the PEM-encoded RSA public key used to verify bearer tokens
		PublicKey string `env:"JWT_PUBLIC_KEY" yaml:"publicKey"`
		// PrivateKey is the PEM-encoded RSA private key used by the jwt command to sign tokens
		PrivateKey string `env:"JWT_PRIVATE_KEY" yaml:"privateKey"`
	} `yaml:"jwt"`

	// Dataset locates the labeled images used for training
	Dataset struct {
		// ManifestPath is the image,label CSV; image paths resolve relative to it
		ManifestPath string `env:"DATASET_MANIFEST_PATH" env-default:"data/manifest.csv" yaml:"manifestPath"`
		// Workers bounds the feature-extraction pool; 0 means one per CPU
		Workers int `env:"DATASET_WORKERS" env-default:"0" yaml:"workers"`
	} `yaml:"dataset"`

	// Training declares the benchmark parameters and the hyperparameter grids
	Training struct {
		// TestFraction is the share of the dataset held out for the final evaluation
		TestFraction float64 `env:"TRAINING_TEST_FRACTION" env-default:"0.2" yaml:"testFraction"`
		// Folds is the number of stratified cross-validation folds
		Folds int `env:"TRAINING_FOLDS" env-default:"5" yaml:"folds"`
		// Seed drives every random decision of a run
		Seed int64 `env:"TRAINING_SEED" env-default:"42" yaml:"seed"`
		// TopK is the leaderboard size kept in the report
		TopK int `env:"TRAINING_TOP_K" env-default:"10" yaml:"topK"`

		// KNN is the k-nearest-neighbors grid
		KNN struct {
			K       []int    `env:"TRAINING_KNN_K" env-default:"3,5,7" yaml:"k"`
			Weights []string `env:"TRAINING_KNN_WEIGHTS" env-default:"uniform,distance" yaml:"weights"`
		} `yaml:"knn"`

		// Forest is the random-forest grid; maxDepth 0 means unlimited
		Forest struct {
			Trees    []int `env:"TRAINING_FOREST_TREES" env-default:"50" yaml:"trees"`
			MaxDepth []int `env:"TRAINING_FOREST_MAX_DEPTH" env-default:"0,8" yaml:"maxDepth"`
			MinLeaf  []int `env:"TRAINING_FOREST_MIN_LEAF" env-default:"1,3" yaml:"minLeaf"`
		} `yaml:"forest"`

		// SVM is the linear-SVM grid
		SVM struct {
			Lambda []float64 `env:"TRAINING_SVM_LAMBDA" env-default:"0.01,0.1" yaml:"lambda"`
			Epochs []int     `env:"TRAINING_SVM_EPOCHS" env-default:"50" yaml:"epochs"`
		} `yaml:"svm"`
	} `yaml:"training"`

	// Runs contains settings for background training runs
	Runs struct {
		// MaxAttempts is how many times a training job is retried before the run is marked failed
		MaxAttempts int `env:"RUNS_MAX_ATTEMPTS" env-default:"3" yaml:"maxAttempts"`
		// ResultCacheTTL is how long a completed report satisfies new runs with an identical spec
		ResultCacheTTL time.Duration `env:"RUNS_RESULT_CACHE_TTL" env-default:"24h" yaml:"resultCacheTTL"`
		// QueueMaxWorkers limits how many training jobs may run concurrently
		QueueMaxWorkers int `env:"RUNS_QUEUE_MAX_WORKERS" env-default:"2" yaml:"queueMaxWorkers"`
	} `yaml:"runs"`

	// Model contains settings for the artifact served by the predict endpoint
	Model struct {
		// Path is the trained model artifact loaded at server start
		Path string `env:"MODEL_PATH" env-default:"model.json" yaml:"path"`
	} `yaml:"model"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for a yaml config file and returns a filled Config
// struct. When the file does not exist, configuration is read from the
// environment alone so one-shot commands work without a config file.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from environment: %w", err)
		}

		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
