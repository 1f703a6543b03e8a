package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"task-tracker/backend/internal/database"

	gormlogger "gorm.io/gorm/logger"
)

var configEnvVars = []string{
	"HOST", "PORT", "READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT", "ENVIRONMENT",
	"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE", "DB_SQLITE_PATH",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME", "DB_LOG_QUERIES",
	"REDIS_ENABLED", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "REDIS_POOL_SIZE",
	"REDIS_MIN_IDLE_CONNS", "REDIS_MAX_RETRIES", "REDIS_DIAL_TIMEOUT", "REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT",
	"CACHE_L1_SIZE", "CACHE_L1_TTL",
	"JWT_SECRET", "JWT_ISSUER", "TOKEN_TTL", "BCRYPT_COST",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT_RPM", "RATE_LIMIT_BURST", "RATE_LIMIT_CLEANUP",
	"CORS_ALLOWED_ORIGINS", "CORS_MAX_AGE", "LOG_LEVEL", "LOG_DEV",
}

// clearConfigEnv unsets every variable LoadConfig reads for the duration of
// the test.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error with default config, got: %v", err)
	}

	if config.Server.Host != "localhost" {
		t.Errorf("Expected default host 'localhost', got %s", config.Server.Host)
	}

	if config.Server.Port != "8080" {
		t.Errorf("Expected default port '8080', got %s", config.Server.Port)
	}

	if config.Server.Environment != "development" {
		t.Errorf("Expected default environment 'development', got %s", config.Server.Environment)
	}

	if config.Database.Driver != database.DriverPostgres {
		t.Errorf("Expected default DB driver 'postgres', got %s", config.Database.Driver)
	}

	if config.Database.Name != "task_tracker" {
		t.Errorf("Expected default DB name 'task_tracker', got %s", config.Database.Name)
	}

	if config.Database.MaxOpenConns != 25 {
		t.Errorf("Expected default max open conns 25, got %d", config.Database.MaxOpenConns)
	}

	if config.Redis.Enabled {
		t.Error("Expected Redis to be disabled by default")
	}

	if config.Redis.L1Size != 1024 {
		t.Errorf("Expected default L1 size 1024, got %d", config.Redis.L1Size)
	}

	if config.Auth.BCryptCost != 10 {
		t.Errorf("Expected default bcrypt cost 10, got %d", config.Auth.BCryptCost)
	}

	if config.Auth.TokenTTL != time.Hour {
		t.Errorf("Expected default token TTL 1h, got %v", config.Auth.TokenTTL)
	}

	if config.Auth.Issuer != "task-tracker" {
		t.Errorf("Expected default issuer 'task-tracker', got %s", config.Auth.Issuer)
	}

	if !config.RateLimit.Enabled {
		t.Error("Expected rate limiting to be enabled by default")
	}

	if config.RateLimit.RequestsPerMin != 100 {
		t.Errorf("Expected default requests per minute 100, got %d", config.RateLimit.RequestsPerMin)
	}

	if len(config.CORS.AllowedOrigins) != 1 || config.CORS.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("Expected default CORS origin, got %v", config.CORS.AllowedOrigins)
	}

	if !config.Log.Dev {
		t.Error("Expected development logging by default")
	}
}

func TestLoadConfig_CustomEnvironment(t *testing.T) {
	clearConfigEnv(t)
	setEnvVars(t, map[string]string{
		"HOST":                 "0.0.0.0",
		"PORT":                 "9000",
		"ENVIRONMENT":          "production",
		"DB_HOST":              "db.example.com",
		"DB_PASSWORD":          "secure_password",
		"DB_MAX_OPEN_CONNS":    "50",
		"REDIS_ENABLED":        "true",
		"REDIS_HOST":           "redis.example.com",
		"REDIS_PORT":           "6380",
		"REDIS_DB":             "1",
		"JWT_SECRET":           "super-secret-key",
		"TOKEN_TTL":            "30m",
		"RATE_LIMIT_ENABLED":   "false",
		"READ_TIMEOUT":         "45s",
		"CORS_ALLOWED_ORIGINS": "https://a.example.com, https://b.example.com,",
		"LOG_LEVEL":            "warn",
	})

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error with custom config, got: %v", err)
	}

	if config.GetServerAddr() != "0.0.0.0:9000" {
		t.Errorf("Expected server addr '0.0.0.0:9000', got %s", config.GetServerAddr())
	}

	if !config.IsProduction() {
		t.Error("Expected production environment")
	}

	if config.Database.MaxOpenConns != 50 {
		t.Errorf("Expected max open conns 50, got %d", config.Database.MaxOpenConns)
	}

	if !config.Redis.Enabled || config.GetRedisAddr() != "redis.example.com:6380" {
		t.Errorf("Expected enabled Redis at redis.example.com:6380, got %v %s", config.Redis.Enabled, config.GetRedisAddr())
	}

	if config.Auth.TokenTTL != 30*time.Minute {
		t.Errorf("Expected token TTL 30m, got %v", config.Auth.TokenTTL)
	}

	if config.RateLimit.Enabled {
		t.Error("Expected rate limiting to be disabled")
	}

	if config.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Expected read timeout 45s, got %v", config.Server.ReadTimeout)
	}

	if len(config.CORS.AllowedOrigins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %v", config.CORS.AllowedOrigins)
	}

	if config.Log.Dev {
		t.Error("Expected production logging outside development")
	}

	if got := config.LoggerConfig().Level; got != "warn" {
		t.Errorf("Expected log level 'warn', got %s", got)
	}
}

func TestLoadConfig_ProductionValidation(t *testing.T) {
	clearConfigEnv(t)
	setEnvVars(t, map[string]string{
		"ENVIRONMENT": "production",
		"JWT_SECRET":  "secure-jwt-secret",
	})

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("Expected error for missing database password in production")
	}

	if err.Error() != "database password is required in production" {
		t.Errorf("Expected specific error message, got: %v", err)
	}
}

func TestLoadConfig_ProductionSQLiteNeedsNoPassword(t *testing.T) {
	clearConfigEnv(t)
	setEnvVars(t, map[string]string{
		"ENVIRONMENT": "production",
		"DB_DRIVER":   "SQLite",
		"JWT_SECRET":  "secure-jwt-secret",
	})

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if config.Database.Driver != database.DriverSQLite {
		t.Errorf("Expected sqlite driver, got %s", config.Database.Driver)
	}
}

func TestLoadConfig_ProductionJWTValidation(t *testing.T) {
	clearConfigEnv(t)
	setEnvVars(t, map[string]string{
		"ENVIRONMENT": "production",
		"DB_PASSWORD": "secure-db-password",
	})

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("Expected error for default JWT secret in production")
	}

	if err.Error() != "JWT secret must be set in production" {
		t.Errorf("Expected specific error message, got: %v", err)
	}
}

func TestLoadConfig_RejectsBadValues(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown driver":  {"DB_DRIVER": "mysql"},
		"low bcrypt cost": {"BCRYPT_COST": "2"},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			clearConfigEnv(t)
			setEnvVars(t, vars)
			if _, err := LoadConfig(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestConfig_GetDatabaseDSN(t *testing.T) {
	config := &Config{
		Database: DatabaseConfig{
			Driver:   database.DriverPostgres,
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
			SSLMode:  "require",
		},
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=require"
	actual := config.GetDatabaseDSN()

	if actual != expected {
		t.Errorf("Expected DSN '%s', got '%s'", expected, actual)
	}

	config.Database.Driver = database.DriverSQLite
	config.Database.SQLitePath = "data/tasks.db"
	if got := config.GetDatabaseDSN(); got != "data/tasks.db" {
		t.Errorf("Expected sqlite path as DSN, got '%s'", got)
	}
}

func TestConfig_PoolAndCacheConfig(t *testing.T) {
	config := &Config{
		Database: DatabaseConfig{
			Driver:       database.DriverSQLite,
			SQLitePath:   ":memory:",
			MaxOpenConns: 5,
			LogQueries:   true,
		},
		Redis: RedisConfig{
			Host:        "cache",
			Port:        "6379",
			PoolSize:    3,
			ReadTimeout: 250 * time.Millisecond,
		},
	}

	pool := config.PoolConfig()
	if pool.Driver != database.DriverSQLite || pool.DSN != ":memory:" || pool.MaxOpenConns != 5 {
		t.Errorf("Unexpected pool config: %+v", pool)
	}
	if pool.LogLevel != gormlogger.Info {
		t.Errorf("Expected query logging at info, got %v", pool.LogLevel)
	}

	cacheCfg := config.CacheConfig()
	if cacheCfg.Addr != "cache:6379" || cacheCfg.PoolSize != 3 || cacheCfg.OpTimeout != 250*time.Millisecond {
		t.Errorf("Unexpected cache config: %+v", cacheCfg)
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		environment string
		expected    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
		{"", false},
	}

	for _, test := range tests {
		config := &Config{Server: ServerConfig{Environment: test.environment}}

		if actual := config.IsProduction(); actual != test.expected {
			t.Errorf("For environment '%s', expected IsProduction() = %v, got %v",
				test.environment, test.expected, actual)
		}
	}
}

func TestLoadEnvFiles(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("PORT=7070\nJWT_ISSUER=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JWT_ISSUER", "from-env")

	if err := LoadEnvFiles(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("Expected missing files to be skipped, got: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("PORT") })

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if config.Server.Port != "7070" {
		t.Errorf("Expected port from env file, got %s", config.Server.Port)
	}
	if config.Auth.Issuer != "from-env" {
		t.Errorf("Expected existing variable to win, got %s", config.Auth.Issuer)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT_VAR", "not-a-number")
	if got := getEnvAsInt("TEST_INT_VAR", 42); got != 42 {
		t.Errorf("Expected default for invalid int, got %d", got)
	}

	t.Setenv("TEST_BOOL_VAR", "True")
	if got := getEnvAsBool("TEST_BOOL_VAR", false); !got {
		t.Error("Expected 'True' to parse as true")
	}

	t.Setenv("TEST_DURATION_VAR", "1h30m")
	if got := getEnvAsDuration("TEST_DURATION_VAR", time.Minute); got != 90*time.Minute {
		t.Errorf("Expected 1h30m, got %v", got)
	}

	t.Setenv("TEST_SLICE_VAR", " , ")
	if got := getEnvAsSlice("TEST_SLICE_VAR", []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Errorf("Expected default for blank list, got %v", got)
	}
}
