package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DocumentStoreDriver != DriverMemory {
		t.Fatalf("unexpected document store driver: %q", cfg.DocumentStoreDriver)
	}
	if cfg.AccountStoreDriver != DriverMemory {
		t.Fatalf("unexpected account store driver: %q", cfg.AccountStoreDriver)
	}
	if cfg.StorageDriver != DriverMemory {
		t.Fatalf("unexpected storage driver: %q", cfg.StorageDriver)
	}
	if cfg.SessionRevocationDriver != DriverMemory {
		t.Fatalf("unexpected revocation driver: %q", cfg.SessionRevocationDriver)
	}
	if cfg.AuthVerificationTTL != 24*time.Hour {
		t.Fatalf("unexpected verification ttl: %s", cfg.AuthVerificationTTL)
	}
	if cfg.ProfileReadTimeout != 5*time.Second {
		t.Fatalf("unexpected profile read timeout: %s", cfg.ProfileReadTimeout)
	}
	if cfg.StorageMaxUploadSize != 5<<20 {
		t.Fatalf("unexpected max upload size: %d", cfg.StorageMaxUploadSize)
	}
	if !cfg.GoogleCircuit.Enabled || cfg.GoogleCircuit.FailureCount != 5 {
		t.Fatalf("unexpected google circuit defaults: %+v", cfg.GoogleCircuit)
	}
}

func TestLoad_DriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("unknown document driver", func(t *testing.T) {
		t.Setenv("DOCUMENT_STORE_DRIVER", "firestore")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown DOCUMENT_STORE_DRIVER")
		}
	})

	t.Run("accounts cannot live in mongo", func(t *testing.T) {
		t.Setenv("ACCOUNT_STORE_DRIVER", "mongo")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for ACCOUNT_STORE_DRIVER=mongo")
		}
	})

	t.Run("redis revocation requires url", func(t *testing.T) {
		t.Setenv("SESSION_REVOCATION_DRIVER", "redis")
		t.Setenv("REDIS_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when SESSION_REVOCATION_DRIVER=redis without REDIS_URL")
		}
	})

	t.Run("drivers are case insensitive", func(t *testing.T) {
		t.Setenv("DOCUMENT_STORE_DRIVER", " Postgres ")
		t.Setenv("STORAGE_DRIVER", "DISK")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.DocumentStoreDriver != DriverPostgres || cfg.StorageDriver != DriverDisk {
			t.Fatalf("unexpected drivers: %q %q", cfg.DocumentStoreDriver, cfg.StorageDriver)
		}
	})
}

func TestLoad_AuthSecret(t *testing.T) {
	t.Run("required in prod", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("AUTH_JWT_SECRET", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when AUTH_JWT_SECRET is missing in prod")
		}
	})

	t.Run("too short", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("AUTH_JWT_SECRET", "short")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for short AUTH_JWT_SECRET")
		}
	})

	t.Run("bcrypt cost bounds", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("AUTH_JWT_SECRET", "")
		t.Setenv("AUTH_BCRYPT_COST", "2")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for AUTH_BCRYPT_COST below minimum")
		}
	})
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-other=1, uptrace-dsn='https://token@api.uptrace.dev/1'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected uptrace dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_BetterStackConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "s1765114.eu-fsn-3.betterstackdata.com")
	t.Setenv("BETTERSTACK_TOKEN", "token-123")
	t.Setenv("BETTERSTACK_TIMEOUT", "4s")
	t.Setenv("BETTERSTACK_MIN_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BetterStackTimeout != 4*time.Second {
		t.Fatalf("unexpected BetterStackTimeout: %s", cfg.BetterStackTimeout)
	}
	if cfg.BetterStackMinLevel.String() != "warn" {
		t.Fatalf("unexpected BetterStackMinLevel: %s", cfg.BetterStackMinLevel.String())
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_SERVICE_NAME", "paintball-league-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "paintball-league-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:3000 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://localhost:3000" {
		t.Fatalf("unexpected CORS origins: %+v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_DurationAndCircuitValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("invalid cache ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})

	t.Run("non positive profile timeout", func(t *testing.T) {
		t.Setenv("PROFILE_READ_TIMEOUT", "0s")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for PROFILE_READ_TIMEOUT=0s")
		}
	})

	t.Run("circuit failure count", func(t *testing.T) {
		t.Setenv("GOOGLE_CIRCUIT_FAILURE_COUNT", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for GOOGLE_CIRCUIT_FAILURE_COUNT=0")
		}
	})
}

func TestLoad_QStashRequiresTokens(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("QSTASH_ENABLED", "true")
	t.Setenv("QSTASH_TOKEN", "qstash-token")
	t.Setenv("QSTASH_TARGET_BASE_URL", "https://paintball.example.com")
	t.Setenv("INTERNAL_JOB_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when QSTASH_ENABLED=true without INTERNAL_JOB_TOKEN")
	}

	t.Setenv("INTERNAL_JOB_TOKEN", "job-token")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.QStashEnabled || cfg.QStashRetries != 3 {
		t.Fatalf("unexpected qstash config: enabled=%v retries=%d", cfg.QStashEnabled, cfg.QStashRetries)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	if err := os.WriteFile(file, []byte("PAINTBALL_DOTENV_CHECK=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("PAINTBALL_DOTENV_CHECK", "")
	os.Unsetenv("PAINTBALL_DOTENV_CHECK")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), file); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("PAINTBALL_DOTENV_CHECK"); got != "from-file" {
		t.Fatalf("unexpected env value: %q", got)
	}
}

func TestLoad_SwaggerDefaultsByEnv(t *testing.T) {
	t.Setenv("SWAGGER_ENABLED", "")

	t.Setenv("APP_ENV", EnvDev)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.SwaggerEnabled {
		t.Fatalf("expected swagger enabled in dev")
	}

	setProdEnv(t)
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SwaggerEnabled {
		t.Fatalf("expected swagger disabled in prod")
	}
}

func setProdEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("GOOGLE_CLIENT_ID", "1234.apps.googleusercontent.com")
	t.Setenv("MAIL_API_KEY", "mail-key")
	t.Setenv("MAIL_FROM", "no-reply@paintball.example.com")
}

func TestLoad_ProdRequiresGoogleClientID(t *testing.T) {
	setProdEnv(t)
	t.Setenv("GOOGLE_CLIENT_ID", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when GOOGLE_CLIENT_ID is missing in prod")
	}

	t.Setenv("GOOGLE_CLIENT_ID", " 1234.apps.googleusercontent.com ")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.GoogleClientID != "1234.apps.googleusercontent.com" {
		t.Fatalf("unexpected google client id: %q", cfg.GoogleClientID)
	}
}

func TestLoad_MailDriver(t *testing.T) {
	t.Run("dev defaults to log", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.MailDriver != DriverLog {
			t.Fatalf("unexpected mail driver: %q", cfg.MailDriver)
		}
	})

	t.Run("prod defaults to http", func(t *testing.T) {
		setProdEnv(t)
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.MailDriver != DriverHTTP || cfg.MailAPIURL != "https://api.resend.com/emails" {
			t.Fatalf("unexpected mail config: driver=%q url=%q", cfg.MailDriver, cfg.MailAPIURL)
		}
	})

	t.Run("prod rejects log driver", func(t *testing.T) {
		setProdEnv(t)
		t.Setenv("MAIL_DRIVER", DriverLog)
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for MAIL_DRIVER=log in prod")
		}
	})

	t.Run("http driver needs credentials", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("MAIL_DRIVER", DriverHTTP)
		t.Setenv("MAIL_API_KEY", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for MAIL_DRIVER=http without MAIL_API_KEY")
		}
	})
}
