package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type Config struct {
	// ListenAddress is where the HTTP API binds.
	ListenAddress string

	// DatabasePath is the sqlite3 database file.
	DatabasePath string

	// S3 bucket settings for database backups, backups are disabled when
	// the bucket is empty. Endpoint is optional and meant for S3-compatible
	// object stores.
	S3Bucket   string
	S3Region   string
	S3Endpoint string

	BackupIntervalHours int
	BackupRetentionDays int
}

func NewFromUserConfigDir() (*Config, error) {
	c := &Config{}
	if err := c.ReloadFromUserConfigDir(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) expandFromEnv() {
	vars := []struct {
		src string
		dst *string
	}{
		{"TOPSPIN_LISTEN_ADDRESS", &c.ListenAddress},
		{"TOPSPIN_DATABASE_PATH", &c.DatabasePath},
		{"TOPSPIN_S3_BUCKET", &c.S3Bucket},
		{"TOPSPIN_S3_REGION", &c.S3Region},
		{"TOPSPIN_S3_ENDPOINT", &c.S3Endpoint},
	}

	for _, v := range vars {
		if str := os.Getenv(v.src); str != "" {
			*v.dst = str
		}
	}
}

func (c *Config) applyDefaults() {
	if c.ListenAddress == "" {
		c.ListenAddress = "127.0.0.1:3001"
	}

	if c.DatabasePath == "" {
		c.DatabasePath = "./topspin.db"
	}

	if c.BackupIntervalHours <= 0 {
		c.BackupIntervalHours = 24
	}

	if c.BackupRetentionDays <= 0 {
		c.BackupRetentionDays = 30
	}
}

func (c *Config) ReloadFromUserConfigDir() error {
	defer c.applyDefaults()
	defer c.expandFromEnv()

	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}
	log.Printf("debug: reading conf from %s", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		*c = Config{}
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(c)
}

func getOrCreateUserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(configDir, "topspin")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.json"), nil
}

func (c *Config) Write() error {
	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}
	log.Printf("debug: writing conf to %s", path)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o700)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(f).Encode(c); err != nil {
		if err2 := f.Close(); err2 != nil {
			return fmt.Errorf("unable to close file (%s) after error: %w", err2, err)
		}

		return err
	}

	return f.Close()
}
