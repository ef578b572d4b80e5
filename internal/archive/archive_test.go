package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/marketwire/server/internal/articles"
)

type memoryBucket struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemoryBucket() *memoryBucket {
	return &memoryBucket{objects: map[string][]byte{}, types: map[string]string{}}
}

func (b *memoryBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if b.err != nil {
		return nil, b.err
	}

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	b.objects[key] = data
	b.types[key] = aws.ToString(in.ContentType)

	return &s3.PutObjectOutput{}, nil
}

func (b *memoryBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := b.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}

	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Archive_RoundTrip(t *testing.T) {
	bucket := newMemoryBucket()
	archive := newS3Archive(bucket, "news", "raw")

	article := &articles.Article{
		ID:          "f00d",
		Title:       "Tata Motors EV sales jump",
		Content:     "...",
		Source:      "ET",
		PublishedAt: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		Sector:      "Auto",
		Entities:    []articles.Entity{{Name: "Tata Motors", Type: articles.EntityCompany}},
	}

	require.NoError(t, archive.Publish(context.Background(), article))
	assert.Equal(t, "raw/f00d.json", archive.Key("f00d"))
	assert.Equal(t, "application/json", bucket.types["news/raw/f00d.json"])

	got, err := archive.Get(context.Background(), "f00d")
	require.NoError(t, err)
	assert.Equal(t, article.Title, got.Title)
	assert.Equal(t, article.Entities, got.Entities)
	assert.True(t, article.PublishedAt.Equal(got.PublishedAt))
}

func TestS3Archive_UploadFailure(t *testing.T) {
	bucket := newMemoryBucket()
	bucket.err = errors.New("AccessDenied")

	err := newS3Archive(bucket, "news", "").Publish(context.Background(), &articles.Article{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestS3Archive_MissingObject(t *testing.T) {
	_, err := newS3Archive(newMemoryBucket(), "news", "").Get(context.Background(), "missing")
	assert.Error(t, err)
}

func TestNewS3Archive_RequiresBucket(t *testing.T) {
	_, err := NewS3Archive(context.Background(), Config{})
	assert.Error(t, err)
}
