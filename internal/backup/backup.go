// Package backup ships snapshots of the sqlite database to an S3 bucket and
// restores them, so a redeployed instance can pick the ladder back up.
package backup

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"topspin/internal/config"
	"topspin/internal/util"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

const (
	keyPrefix  = "backups/"
	timeLayout = "20060102-150405"
)

// Client is a configured access point to the backup bucket.
type Client struct {
	bucket     string
	dbPath     string
	interval   time.Duration
	retention  time.Duration
	s3         *s3.S3
	uploader   *s3manager.Uploader
	downloader *s3manager.Downloader
}

// NewClient errors out when no bucket is configured, backups are an opt-in
// feature.
func NewClient(c *config.Config) (*Client, error) {
	if c.S3Bucket == "" {
		return nil, errors.New("no S3 bucket configured, backups are disabled")
	}

	awsConf := aws.Config{
		Region: aws.String(c.S3Region),
	}
	if c.S3Endpoint != "" {
		// S3-compatible stores want path-style addressing.
		awsConf.Endpoint = aws.String(c.S3Endpoint)
		awsConf.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(&awsConf)
	if err != nil {
		return nil, fmt.Errorf("unable to create AWS session: %w", err)
	}

	return &Client{
		bucket:     c.S3Bucket,
		dbPath:     c.DatabasePath,
		interval:   time.Duration(c.BackupIntervalHours) * time.Hour,
		retention:  time.Duration(c.BackupRetentionDays) * 24 * time.Hour,
		s3:         s3.New(sess),
		uploader:   s3manager.NewUploader(sess),
		downloader: s3manager.NewDownloader(sess),
	}, nil
}

// Run periodically backs up the database until the done channel closes. The
// first backup happens right away so a fresh deployment is covered. Failures
// are logged and retried at the next tick, never fatal.
func (c *Client) Run(wg *sync.WaitGroup, done <-chan struct{}) {
	wg.Add(1)
	defer wg.Done()
	log.Print("info: starting backup dæmon")

	for {
		if err := c.Backup(); err != nil {
			log.Printf("error: backup failed: %s", err)
		}

		select {
		case <-time.After(c.interval):
		case <-done:
			return
		}
	}
}

// Backup uploads a snapshot of the database file and prunes snapshots older
// than the configured retention.
func (c *Client) Backup() error {
	f, err := os.Open(c.dbPath)
	if err != nil {
		return err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return err
	}

	key := backupKey(time.Now())
	if _, err := c.uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   f,
	}); err != nil {
		return fmt.Errorf("unable to upload backup: %w", err)
	}

	log.Printf("info: uploaded backup %s (%.2f KiB)", key, float64(stat.Size())/1024.0)

	if err := c.pruneOldBackups(); err != nil {
		// A failed cleanup should not fail the backup itself.
		log.Printf("warning: unable to prune old backups: %s", err)
	}

	return nil
}

// Entry describes one stored backup.
type Entry struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// List returns every stored backup, newest first.
func (c *Client) List() ([]Entry, error) {
	var entries []Entry

	err := c.s3.ListObjectsV2Pages(
		&s3.ListObjectsV2Input{
			Bucket: aws.String(c.bucket),
			Prefix: aws.String(keyPrefix),
		},
		func(page *s3.ListObjectsV2Output, _ bool) bool {
			for _, obj := range page.Contents {
				if !strings.HasSuffix(aws.StringValue(obj.Key), ".db") {
					continue
				}

				entries = append(entries, Entry{
					Key:          aws.StringValue(obj.Key),
					Size:         aws.Int64Value(obj.Size),
					LastModified: aws.TimeValue(obj.LastModified),
				})
			}

			return true
		},
	)
	if err != nil {
		return nil, fmt.Errorf("unable to list backups: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastModified.After(entries[j].LastModified)
	})

	return entries, nil
}

// RestoreLatest downloads the most recent backup over the database file. The
// download lands in a temporary file first so a failed transfer cannot
// truncate a working database.
func (c *Client) RestoreLatest() error {
	entries, err := c.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return errors.New("no backup to restore from")
	}

	latest := entries[0]
	log.Printf("info: restoring %s from %s", latest.Key, latest.LastModified)

	tmp, err := os.CreateTemp(filepath.Dir(c.dbPath), "topspin-restore-*.db")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := c.downloader.Download(tmp, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(latest.Key),
	}); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("unable to download backup: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, c.dbPath)
}

func (c *Client) pruneOldBackups() error {
	entries, err := c.List()
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-c.retention)
	errs := make([]error, 0, len(entries))

	for _, entry := range entries {
		if !entry.LastModified.Before(cutoff) {
			continue
		}

		if _, err := c.s3.DeleteObject(&s3.DeleteObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(entry.Key),
		}); err != nil {
			errs = append(errs, err)
			continue
		}

		log.Printf("info: deleted old backup %s", entry.Key)
	}

	return util.ConcatErrors(errs)
}

func backupKey(t time.Time) string {
	return keyPrefix + "topspin-" + t.UTC().Format(timeLayout) + ".db"
}
