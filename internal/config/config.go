package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

type AppCfg struct {
	Name string
	Env  string
	Host string
	Port int
}

type LogCfg struct {
	Level string
}

type DBCfg struct {
	DSN         string
	MaxOpen     int
	MaxIdle     int
	AutoMigrate bool
}

type RedisCfg struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type MQExchangeName struct {
	Jobs string
}

type MQRoutingKey struct {
	AssetDelete string
	FileDelete  string
}

type MQCfg struct {
	URL          string
	Queue        string
	Prefetch     int
	ExchangeName MQExchangeName
	RoutingKey   MQRoutingKey
}

type S3Cfg struct {
	Endpoint         string
	Region           string
	AccessKey        string
	SecretKey        string
	Bucket           string
	UsePathStyle     bool
	PresignExpireSec int
	SSE              string
}

type TrashCfg struct {
	Enabled       bool
	RetentionDays int
}

type DownloadCfg struct {
	// TargetSize is a humanized byte count, e.g. "4GiB".
	TargetSize string
	PageSize   int
}

type TelemetryCfg struct {
	Enabled      bool
	OtlpEndpoint string
	SampleRatio  float64
}

type Config struct {
	App       AppCfg
	Log       LogCfg
	Database  DBCfg
	Redis     RedisCfg
	RabbitMQ  MQCfg
	S3        S3Cfg
	Trash     TrashCfg
	Download  DownloadCfg
	Telemetry TelemetryCfg
}

// ArchiveTargetBytes resolves the configured download archive size.
func (c *Config) ArchiveTargetBytes() (int64, error) {
	n, err := humanize.ParseBytes(c.Download.TargetSize)
	if err != nil {
		return 0, fmt.Errorf("parse download.targetSize %q: %w", c.Download.TargetSize, err)
	}
	return int64(n), nil
}

func Load() (*Config, error) {
	base := viper.New()
	base.SetConfigName("config")
	base.SetConfigType("yaml")
	base.AddConfigPath("./configs")
	base.AddConfigPath(".")
	base.AutomaticEnv()
	base.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	base.SetEnvPrefix("APP")

	setDefaults(base)

	// Read the file (if any); ${ENV} placeholders in the file are expanded
	// once before parsing.
	if err := base.ReadInConfig(); err == nil {
		path := base.ConfigFileUsed()
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		expanded := os.ExpandEnv(string(raw))

		v := viper.New()
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, err
		}
		v.AutomaticEnv()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.SetEnvPrefix("APP")
		setDefaults(v)

		cfg := new(Config)
		if err := v.Unmarshal(&cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// No file is also fine, env + defaults only.
	cfg := new(Config)
	if err := base.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "framekeep")
	v.SetDefault("app.env", "debug")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("rabbitmq.queue", "framekeep.jobs")
	v.SetDefault("rabbitmq.prefetch", 10)
	v.SetDefault("rabbitmq.exchangeName.jobs", "framekeep.jobs")
	v.SetDefault("rabbitmq.routingKey.assetDelete", "asset.delete")
	v.SetDefault("rabbitmq.routingKey.fileDelete", "file.delete")
	v.SetDefault("s3.region", "auto")
	v.SetDefault("s3.usePathStyle", true)
	v.SetDefault("s3.presignExpireSec", 900)
	v.SetDefault("trash.enabled", true)
	v.SetDefault("trash.retentionDays", 30)
	v.SetDefault("download.targetSize", "4GiB")
	v.SetDefault("download.pageSize", 2500)
	v.SetDefault("telemetry.sampleRatio", 1.0)
}
