package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/minis3"
	"github.com/dmitrymomot/minis3/pkg/logger"
	"github.com/dmitrymomot/minis3/pkg/s3err"
)

// fileConfig is the layout of the --config file.
//
//	s3:
//	  endpoint: localhost:9000
//	  access_key: minio
//	  secret_key: minio123
//	  bucket: media
//	  path_style: true
//	  disable_tls: true
//	sentry:
//	  dsn: https://key@sentry.example.com/1
type fileConfig struct {
	Sentry logger.SentryConfig `yaml:"sentry"`
	S3     minis3.Config       `yaml:"s3"`
}

// loadConfig reads the YAML file at path, if any, then applies environment
// overrides. Variables that are unset leave the file values alone.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, s3err.Configuration("parse %s: %v", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, s3err.Configuration("environment: %v", err)
	}
	return cfg, nil
}
