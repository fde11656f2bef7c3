package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MigrationsDir          string `yaml:"migrationsDir"`
	MaxOpenConns           int    `yaml:"maxOpenConns"`
	MaxIdleConns           int    `yaml:"maxIdleConns"`
	ConnMaxLifetimeMinutes int    `yaml:"connMaxLifetimeMinutes"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type RateLimitConfig struct {
	DefaultPerMinute int `yaml:"defaultPerMinute"`
}

// ActorsConfig maps each supported platform to the upstream actor id
// that scrapes it.
type ActorsConfig struct {
	Instagram string `yaml:"instagram"`
	Threads   string `yaml:"threads"`
	TikTok    string `yaml:"tiktok"`
	X         string `yaml:"x"`
}

type UpstreamConfig struct {
	BaseURL   string       `yaml:"baseURL"`
	APIToken  string       `yaml:"apiToken"`
	TimeoutMs int          `yaml:"timeoutMs"`
	Actors    ActorsConfig `yaml:"actors"`
}

type RecordStoreConfig struct {
	BaseURL     string `yaml:"baseURL"`
	AccessToken string `yaml:"accessToken"`
	TimeoutMs   int    `yaml:"timeoutMs"`
}

// PipelineConfig holds the campaign pipeline defaults. QueueCountDefault
// is the last-resort queue count when neither the tenant settings row nor
// the record-store schema can answer.
type PipelineConfig struct {
	QueueCountDefault       int `yaml:"queueCountDefault"`
	ProfilesPerQueueDefault int `yaml:"profilesPerQueueDefault"`
	IngestDelayMs           int `yaml:"ingestDelayMs"`
}

type WorkerConfig struct {
	MaxConcurrentJobs    int `yaml:"maxConcurrentJobs"`
	PollIntervalMs       int `yaml:"pollIntervalMs"`
	MaxTasksPerWorker    int `yaml:"maxTasksPerWorker"`
	SoftTimeLimitMinutes int `yaml:"softTimeLimitMinutes"`
	HardTimeLimitMinutes int `yaml:"hardTimeLimitMinutes"`
}

// LifecycleConfig controls the assignment aging sweeps. Schedule is a
// cron expression evaluated in the worker role.
type LifecycleConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Schedule          string `yaml:"schedule"`
	UnfollowAfterDays int    `yaml:"unfollowAfterDays"`
	DeleteAfterHours  int    `yaml:"deleteAfterHours"`
	PurgeAfterDays    int    `yaml:"purgeAfterDays"`
}

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	CORS        CORSConfig        `yaml:"cors"`
	RateLimit   RateLimitConfig   `yaml:"ratelimit"`
	Upstream    UpstreamConfig    `yaml:"upstream"`
	RecordStore RecordStoreConfig `yaml:"recordstore"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Worker      WorkerConfig      `yaml:"worker"`
	Lifecycle   LifecycleConfig   `yaml:"lifecycle"`
}

func Load(path string) *Config {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config: %v", err)
	}

	return &cfg
}
