package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	UploadMaxBytes int64    `mapstructure:"upload_max_bytes"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	MigrationGoose = "goose"
	MigrationAuto  = "auto"
)

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Path            string `mapstructure:"path"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	Migration       string `mapstructure:"migration"`
}

// GetDSN returns the driver-specific data source name.
func (d *DatabaseConfig) GetDSN() string {
	if d.Driver == DriverSQLite {
		return d.Path + "?_foreign_keys=on&_busy_timeout=5000"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case DriverSQLite:
		if strings.TrimSpace(d.Path) == "" {
			return errors.New("database.path is required for sqlite")
		}
	case DriverMySQL:
		if d.Host == "" || d.Database == "" {
			return errors.New("database.host and database.database are required for mysql")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", d.Driver)
	}
	switch d.Migration {
	case MigrationGoose, MigrationAuto:
	default:
		return fmt.Errorf("unsupported migration strategy %q", d.Migration)
	}
	return nil
}

type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	OutputPath  string `mapstructure:"output_path"`
	SourceLevel string `mapstructure:"source_level"`
}

const (
	StorageLocal = "local"
	StorageMinIO = "minio"
)

type LocalStorageConfig struct {
	Dir string `mapstructure:"dir"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
}

func (m *MinIOConfig) Validate() error {
	if strings.TrimSpace(m.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if strings.Contains(m.Endpoint, "://") {
		return fmt.Errorf("endpoint must not include scheme: %q", m.Endpoint)
	}
	if strings.TrimSpace(m.AccessKey) == "" || strings.TrimSpace(m.SecretKey) == "" {
		return errors.New("access key and secret key are required")
	}
	if strings.TrimSpace(m.Bucket) == "" {
		return errors.New("bucket is required")
	}
	return nil
}

type StorageConfig struct {
	Backend string             `mapstructure:"backend"`
	Local   LocalStorageConfig `mapstructure:"local"`
	MinIO   MinIOConfig        `mapstructure:"minio"`
}

func (s *StorageConfig) Validate() error {
	switch s.Backend {
	case StorageLocal:
		if strings.TrimSpace(s.Local.Dir) == "" {
			return errors.New("storage.local.dir is required")
		}
		return nil
	case StorageMinIO:
		if err := s.MinIO.Validate(); err != nil {
			return fmt.Errorf("storage.minio: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported storage backend %q", s.Backend)
	}
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// OrphanSweepConfig schedules the orphan attachment scan inside the server.
type OrphanSweepConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	MinAge   time.Duration `mapstructure:"min_age"`
	Prune    bool          `mapstructure:"prune"`
}

func (o *OrphanSweepConfig) Validate() error {
	if !o.Enabled {
		return nil
	}
	if o.Interval < time.Minute {
		return fmt.Errorf("orphan_sweep.interval must be at least 1m, got %s", o.Interval)
	}
	if o.MinAge < 0 {
		return errors.New("orphan_sweep.min_age must not be negative")
	}
	return nil
}
