// Package reliability holds operational safety nets, currently the off-site
// backup of the run-history database.
package reliability

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/mahbubchula/policysim/internal/events"
)

// ObjectUploader is the subset of the S3 API the backup needs
type ObjectUploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// BackupService uploads a gzipped copy of the history database to object
// storage. Uploads are whole-file; the database stays small enough that
// incremental backups are not worth the bookkeeping.
type BackupService struct {
	uploader ObjectUploader
	bucket   string
	dbPath   string
	events   *events.Manager
	log      zerolog.Logger
}

// NewBackupService builds the service with a real S3 client for the region
func NewBackupService(ctx context.Context, region, bucket, dbPath string, ev *events.Manager, log zerolog.Logger) (*BackupService, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewBackupServiceWithUploader(s3.NewFromConfig(awsCfg), bucket, dbPath, ev, log), nil
}

// NewBackupServiceWithUploader injects the uploader, used by tests
func NewBackupServiceWithUploader(uploader ObjectUploader, bucket, dbPath string, ev *events.Manager, log zerolog.Logger) *BackupService {
	return &BackupService{
		uploader: uploader,
		bucket:   bucket,
		dbPath:   dbPath,
		events:   ev,
		log:      log.With().Str("service", "backup").Logger(),
	}
}

// Backup compresses the database file and uploads it under a timestamped key
func (s *BackupService) Backup(ctx context.Context) error {
	started := time.Now()

	raw, err := os.ReadFile(s.dbPath)
	if err != nil {
		return fmt.Errorf("read database %s: %w", s.dbPath, err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(raw); err != nil {
		return fmt.Errorf("compress backup: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("finalize backup archive: %w", err)
	}

	key := fmt.Sprintf("backups/%s-%s.db.gz",
		filepath.Base(s.dbPath), time.Now().UTC().Format("2006-01-02-150405"))

	_, err = s.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/gzip"),
	})
	if err != nil {
		return fmt.Errorf("upload backup to s3://%s/%s: %w", s.bucket, key, err)
	}

	s.log.Info().
		Str("key", key).
		Int("bytes", buf.Len()).
		Dur("duration", time.Since(started)).
		Msg("Backup uploaded")

	if s.events != nil {
		s.events.Emit(events.BackupComplete, "reliability", map[string]interface{}{
			"key":   key,
			"bytes": buf.Len(),
		})
	}
	return nil
}

// BackupJob adapts BackupService to the scheduler's Job interface
type BackupJob struct {
	service *BackupService
	timeout time.Duration
}

// NewBackupJob creates the scheduled wrapper
func NewBackupJob(service *BackupService) *BackupJob {
	return &BackupJob{service: service, timeout: 2 * time.Minute}
}

// Name implements scheduler.Job
func (j *BackupJob) Name() string { return "history_backup" }

// Run implements scheduler.Job
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	return j.service.Backup(ctx)
}
