package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Minio    MinioConfig    `yaml:"minio"`
	FormFill FormFillConfig `yaml:"form_fill"`
	Worker   WorkerConfig   `yaml:"worker"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type FormFillConfig struct {
	PdftkPath string `yaml:"pdftk_path"`
}

type WorkerConfig struct {
	Workers           int `yaml:"workers"`
	QueueSize         int `yaml:"queue_size"`
	DispatchTimeoutMS int `yaml:"dispatch_timeout_ms"`
	JobTimeoutSec     int `yaml:"job_timeout_sec"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.FormFill.PdftkPath == "" {
		cfg.FormFill.PdftkPath = "pdftk"
	}
	if cfg.Worker.Workers == 0 {
		cfg.Worker.Workers = 2
	}
	if cfg.Worker.QueueSize == 0 {
		cfg.Worker.QueueSize = 16
	}
	if cfg.Worker.DispatchTimeoutMS == 0 {
		cfg.Worker.DispatchTimeoutMS = 500
	}
	if cfg.Worker.JobTimeoutSec == 0 {
		cfg.Worker.JobTimeoutSec = 120
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}

	return &cfg, nil
}
