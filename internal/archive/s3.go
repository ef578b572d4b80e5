// Package archive keeps a JSON copy of every persisted article in an S3 bucket.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"codeberg.org/marketwire/server/internal/articles"
)

const contentType = "application/json"

type S3Archive struct {
	client objectStore
	bucket string
	prefix string
}

func NewS3Archive(ctx context.Context, cfg Config) (*S3Archive, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return newS3Archive(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Archive(client objectStore, bucket, prefix string) *S3Archive {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &S3Archive{client: client, bucket: bucket, prefix: prefix}
}

// object key for an article id
func (a *S3Archive) Key(id string) string {
	return a.prefix + id + ".json"
}

// writes the article under its id, replacing any earlier copy
func (a *S3Archive) Publish(ctx context.Context, article *articles.Article) error {
	data, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("failed to encode article: %w", err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.Key(article.ID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload article %s to S3: %w", article.ID, err)
	}

	return nil
}

// reads an archived article back
func (a *S3Archive) Get(ctx context.Context, id string) (*articles.Article, error) {
	resp, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.Key(id)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get article %s from S3: %w", id, err)
	}
	defer resp.Body.Close()

	var article articles.Article
	if err := json.NewDecoder(resp.Body).Decode(&article); err != nil {
		return nil, fmt.Errorf("failed to decode archived article %s: %w", id, err)
	}

	return &article, nil
}
