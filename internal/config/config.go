package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "BOOKCOMMENTS"

const (
	SnapshotNone     = "none"
	SnapshotMemory   = "memory"
	SnapshotRedis    = "redis"
	SnapshotPostgres = "postgres"
)

type Config struct {
	HTTPAddr   string
	Remote     Remote
	TokenFile  string
	Snapshot   Snapshot
	Redis      Redis
	Postgres   Postgres
	Log        Log
	Moderation Moderation
}

type Remote struct {
	BaseURL string
	Timeout time.Duration
}

type Snapshot struct {
	Driver string
	TTL    time.Duration
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Postgres struct {
	DSN string
}

type Log struct {
	Level  string
	Pretty bool
}

type Moderation struct {
	CascadeDelete bool
}

// Load reads .env (if present), an optional config file named by
// BOOKCOMMENTS_CONFIG and BOOKCOMMENTS_* environment variables, in increasing
// priority.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("remote.base_url", "http://localhost:3001/api")
	v.SetDefault("remote.timeout", 15*time.Second)
	v.SetDefault("token.file", defaultTokenFile())
	v.SetDefault("snapshot.driver", SnapshotMemory)
	v.SetDefault("snapshot.ttl", 24*time.Hour)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("moderation.cascade_delete", false)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTPAddr: v.GetString("http.addr"),
		Remote: Remote{
			BaseURL: v.GetString("remote.base_url"),
			Timeout: v.GetDuration("remote.timeout"),
		},
		TokenFile: v.GetString("token.file"),
		Snapshot: Snapshot{
			Driver: strings.ToLower(v.GetString("snapshot.driver")),
			TTL:    v.GetDuration("snapshot.ttl"),
		},
		Redis: Redis{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Postgres: Postgres{DSN: v.GetString("postgres.dsn")},
		Log: Log{
			Level:  v.GetString("log.level"),
			Pretty: v.GetBool("log.pretty"),
		},
		Moderation: Moderation{CascadeDelete: v.GetBool("moderation.cascade_delete")},
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("remote.base_url is required")
	}
	switch c.Snapshot.Driver {
	case SnapshotNone, SnapshotMemory, SnapshotRedis:
	case SnapshotPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required for the postgres snapshot driver")
		}
	default:
		return fmt.Errorf("unknown snapshot driver %q", c.Snapshot.Driver)
	}
	return nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bookcomments-token"
	}
	return filepath.Join(home, ".bookcomments", "token")
}
