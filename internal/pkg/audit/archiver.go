package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/quitanza/paycore/app/models"
)

// Archiver exports transaction log batches to S3 for long-term
// retention. The database rows stay untouched; the archive is a copy.
type Archiver struct {
	s3Client *s3.Client
	config   *Config
}

// NewArchiver creates an S3-backed archiver. It fails when archiving is
// disabled; callers check Config.IsEnabled first.
func NewArchiver(cfg *Config) (*Archiver, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("audit archive is disabled")
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})

	log.Infof("[Audit] Initialized S3 archiver for bucket: %s", cfg.BucketName)
	return &Archiver{s3Client: s3Client, config: cfg}, nil
}

// ArchiveBatch uploads one batch of transaction log rows as a JSON
// object under audit/txlog/<date>/. Returns the object key.
func (a *Archiver) ArchiveBatch(ctx context.Context, logs []models.TransactionLog) (string, error) {
	if len(logs) == 0 {
		return "", nil
	}

	body, err := json.Marshal(logs)
	if err != nil {
		return "", fmt.Errorf("failed to marshal transaction logs: %w", err)
	}

	key := fmt.Sprintf("audit/txlog/%s/%s.json", time.Now().UTC().Format("2006-01-02"), uuid.New().String())
	_, err = a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload audit batch: %w", err)
	}

	log.Infof("[Audit] Archived %d transaction logs to %s", len(logs), key)
	return key, nil
}
