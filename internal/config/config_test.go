package config

import (
	"os"
	"testing"
)

func TestExpandFromEnv(t *testing.T) {
	os.Setenv("TOPSPIN_DATABASE_PATH", "/tmp/test-topspin.db")
	os.Setenv("TOPSPIN_S3_BUCKET", "test-bucket")
	defer os.Unsetenv("TOPSPIN_DATABASE_PATH")
	defer os.Unsetenv("TOPSPIN_S3_BUCKET")

	c := Config{DatabasePath: "./from-file.db"}
	c.expandFromEnv()

	if c.DatabasePath != "/tmp/test-topspin.db" {
		t.Errorf("expected env to override file value, got %s", c.DatabasePath)
	}
	if c.S3Bucket != "test-bucket" {
		t.Errorf("expected env to fill empty value, got %s", c.S3Bucket)
	}
	if c.ListenAddress != "" {
		t.Errorf("expected untouched field to stay empty, got %s", c.ListenAddress)
	}
}

func TestApplyDefaults(t *testing.T) {
	var c Config
	c.applyDefaults()

	cases := []struct {
		name, actual, expected string
	}{
		{"ListenAddress", c.ListenAddress, "127.0.0.1:3001"},
		{"DatabasePath", c.DatabasePath, "./topspin.db"},
	}

	for _, v := range cases {
		if v.actual != v.expected {
			t.Errorf("%s: expected %s got %s", v.name, v.expected, v.actual)
		}
	}

	if c.BackupIntervalHours != 24 {
		t.Errorf("expected default backup interval, got %d", c.BackupIntervalHours)
	}
	if c.BackupRetentionDays != 30 {
		t.Errorf("expected default retention, got %d", c.BackupRetentionDays)
	}

	c = Config{ListenAddress: "0.0.0.0:8080", BackupIntervalHours: 6}
	c.applyDefaults()
	if c.ListenAddress != "0.0.0.0:8080" || c.BackupIntervalHours != 6 {
		t.Error("defaults must not override explicit values")
	}
}

func TestS3BucketDisablesBackups(t *testing.T) {
	var c Config
	c.applyDefaults()

	if c.S3Bucket != "" {
		t.Errorf("expected backups to be disabled by default, got bucket %q", c.S3Bucket)
	}
}
