package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/applylog/internal/common"
	"github.com/dmitrijs2005/applylog/internal/logging"
	sc "github.com/dmitrijs2005/applylog/internal/server/config"
	"github.com/dmitrijs2005/applylog/internal/server/export"
	"github.com/dmitrijs2005/applylog/internal/server/models"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// jobLister is the part of JobService exports need.
type jobLister interface {
	ListAll(ctx context.Context, userID string) ([]models.Job, error)
}

// ExportService renders a user's jobs and either streams the file or
// parks it in object storage behind a presigned link.
type ExportService struct {
	jobs   jobLister
	config *sc.Config
	log    logging.Logger
}

func NewExportService(jobs jobLister, cfg *sc.Config, log logging.Logger) *ExportService {
	return &ExportService{jobs: jobs, config: cfg, log: log.With("module", "exports")}
}

// File is a rendered export held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Render builds the export file. A user without jobs gets
// common.ErrorNotFound.
func (s *ExportService) Render(ctx context.Context, userID, format string) (*File, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	list, err := s.jobs.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no jobs to export: %w", common.ErrorNotFound)
	}

	var buf bytes.Buffer
	if err := export.Render(&buf, f, list); err != nil {
		return nil, fmt.Errorf("error rendering %s export: %w", f, err)
	}

	return &File{Name: export.FileName(f, today()), ContentType: f.ContentType(), Data: buf.Bytes()}, nil
}

// WriteTo renders the export straight into w.
func (s *ExportService) WriteTo(ctx context.Context, userID, format string, w io.Writer) (*File, error) {
	file, err := s.Render(ctx, userID, format)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(file.Data); err != nil {
		return nil, err
	}
	return file, nil
}

// StorageKey places an export under the owning user's prefix.
func StorageKey(userID, fileName string) string {
	return path.Join("users", userID, "exports", uuid.NewString(), fileName)
}

func (s *ExportService) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Publish uploads the export and returns a presigned GET link valid for
// the configured export TTL.
func (s *ExportService) Publish(ctx context.Context, userID, format string) (*models.ExportLink, error) {
	file, err := s.Render(ctx, userID, format)
	if err != nil {
		return nil, err
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("error configuring object storage: %w", err)
	}

	bucket := s.config.S3Bucket
	key := StorageKey(userID, file.Name)

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:             &bucket,
		Key:                &key,
		Body:               bytes.NewReader(file.Data),
		ContentType:        aws.String(file.ContentType),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", file.Name)),
	}); err != nil {
		return nil, fmt.Errorf("error uploading export: %w", err)
	}

	ttl := s.config.ExportLinkTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("error presigning export: %w", err)
	}

	s.log.Info(ctx, "export published", "user_id", userID, "key", key, "bytes", len(file.Data))
	return &models.ExportLink{
		FileName:    file.Name,
		ContentType: file.ContentType,
		URL:         req.URL,
		ExpiresAt:   time.Now().Add(ttl).UTC(),
	}, nil
}
