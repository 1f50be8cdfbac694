package config

import (
	"time"

	"github.com/rent-home/service-matching/internal/platform/config"
)

// MapConfig holds map provider settings.
type MapConfig struct {
	Key             string
	BaseURL         string
	RequestInterval time.Duration
	Timeout         time.Duration
	DefaultRegion   string
}

// StorageConfig holds the S3-compatible media bucket settings.
type StorageConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicDomain    string
}

// Enabled reports whether uploads can be served.
func (s StorageConfig) Enabled() bool {
	return s.Bucket != "" && s.Region != "" && s.AccessKeyID != "" && s.SecretAccessKey != ""
}

// AuthConfig holds login settings.
type AuthConfig struct {
	AdminUsername  string
	AdminPassword  string
	SMSMasterCode  string
	CodeTTL        time.Duration
	ResendCooldown time.Duration
}

// ServiceConfig holds all configuration for the matching service.
type ServiceConfig struct {
	Port                     string
	AppEnv                   string
	DBConfig                 config.DatabaseConfig
	JWTConfig                config.JWTConfig
	KafkaConfig              config.KafkaConfig
	RedisConfig              config.RedisConfig
	Map                      MapConfig
	Storage                  StorageConfig
	Auth                     AuthConfig
	CatalogSeedFile          string
	MatchRequireSubscription bool
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("RENTHOME")
	if err != nil {
		return nil, err
	}

	v.SetDefault("TENCENT_MAP_BASE_URL", "https://apis.map.qq.com/ws")
	v.SetDefault("MAP_REQUEST_INTERVAL", "400ms")
	v.SetDefault("MAP_TIMEOUT", "10s")
	v.SetDefault("MAP_DEFAULT_REGION", "北京市")
	v.SetDefault("COS_REGION", "ap-beijing")
	v.SetDefault("SMS_CODE_TTL", "5m")
	v.SetDefault("SMS_RESEND_COOLDOWN", "60s")
	v.SetDefault("MATCH_REQUIRE_SUBSCRIPTION", false)

	return &ServiceConfig{
		Port:        config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:      config.GetAppEnv(v),
		DBConfig:    config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:   config.LoadJWTConfig(v),
		KafkaConfig: config.LoadKafkaConfig(v),
		RedisConfig: config.LoadRedisConfig(v),
		Map: MapConfig{
			Key:             config.GetString(v, "TENCENT_MAP_KEY"),
			BaseURL:         v.GetString("TENCENT_MAP_BASE_URL"),
			RequestInterval: v.GetDuration("MAP_REQUEST_INTERVAL"),
			Timeout:         v.GetDuration("MAP_TIMEOUT"),
			DefaultRegion:   v.GetString("MAP_DEFAULT_REGION"),
		},
		Storage: StorageConfig{
			Bucket:          config.GetString(v, "COS_BUCKET"),
			Region:          config.GetString(v, "COS_REGION"),
			Endpoint:        config.GetString(v, "COS_ENDPOINT"),
			AccessKeyID:     config.GetString(v, "COS_SECRET_ID"),
			SecretAccessKey: config.GetString(v, "COS_SECRET_KEY"),
			PublicDomain:    config.GetString(v, "COS_DOMAIN"),
		},
		Auth: AuthConfig{
			AdminUsername:  config.GetString(v, "ADMIN_USERNAME"),
			AdminPassword:  config.GetString(v, "ADMIN_PASSWORD"),
			SMSMasterCode:  config.GetString(v, "SMS_MASTER_CODE"),
			CodeTTL:        v.GetDuration("SMS_CODE_TTL"),
			ResendCooldown: v.GetDuration("SMS_RESEND_COOLDOWN"),
		},
		CatalogSeedFile:          config.GetString(v, "CATALOG_SEED_FILE"),
		MatchRequireSubscription: v.GetBool("MATCH_REQUIRE_SUBSCRIPTION"),
	}, nil
}
