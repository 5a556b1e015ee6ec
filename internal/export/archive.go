package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ArchiveConfig configures the S3-compatible archive bucket.
// Endpoint is set for R2, MinIO and other non-AWS providers.
type ArchiveConfig struct {
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint,omitempty"`
	AccessKey string `json:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
}

// Enabled reports whether archiving is configured.
func (c ArchiveConfig) Enabled() bool {
	return c.Bucket != ""
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver uploads exported documents.
type Archiver struct {
	client objectPutter
	bucket string
	prefix string
	now    func() time.Time
}

// Archived lists the object keys written for one export.
type Archived struct {
	TexKey string `json:"texKey"`
	PDFKey string `json:"pdfKey,omitempty"`
}

// NewArchiver builds an S3 client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewArchiver(ctx context.Context, cfg ArchiveConfig) (*Archiver, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("archive bucket is not configured")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newArchiver(client, cfg.Bucket, cfg.Prefix), nil
}

func newArchiver(client objectPutter, bucket, prefix string) *Archiver {
	if prefix == "" {
		prefix = "resumes"
	}
	return &Archiver{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// Archive uploads the LaTeX source and, when present, the PDF under
// <prefix>/<userID>/<date>/<id>.{tex,pdf}.
func (a *Archiver) Archive(ctx context.Context, userID, latex string, pdf []byte) (*Archived, error) {
	if userID == "" {
		userID = "anonymous"
	}
	base := path.Join(a.prefix, userID, a.now().UTC().Format("2006-01-02"), uuid.NewString())

	out := &Archived{TexKey: base + ".tex"}
	if err := a.put(ctx, out.TexKey, []byte(latex), "application/x-tex"); err != nil {
		return nil, err
	}
	if len(pdf) > 0 {
		out.PDFKey = base + ".pdf"
		if err := a.put(ctx, out.PDFKey, pdf, "application/pdf"); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (a *Archiver) put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return &ArchiveError{Key: key, Cause: err}
	}
	return nil
}
