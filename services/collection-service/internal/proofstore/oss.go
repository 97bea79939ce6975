// services/collection-service/internal/proofstore/oss.go
package proofstore

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/deposit"
	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

type OSSConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	SecurityToken string
	Bucket        string
	Prefix        string // optional: "proofs/"
	PublicBase    string // optional CDN base, overrides the bucket URL
	MaxBytes      int64
}

// objectPutter is the part of *oss.Bucket used here.
type objectPutter interface {
	PutObject(objectKey string, reader io.Reader, options ...oss.Option) error
}

// OSSStore uploads proofs to an Alibaba Cloud OSS bucket.
type OSSStore struct {
	bucket objectPutter
	cfg    OSSConfig
}

func NewOSSStore(cfg OSSConfig) (*OSSStore, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("missing ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	var (
		client *oss.Client
		err    error
	)
	if cfg.SecurityToken != "" {
		client, err = oss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, oss.SecurityToken(cfg.SecurityToken))
	} else {
		client, err = oss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey)
	}
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}

	bkt, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	// light check that the bucket is reachable
	if loc, err := client.GetBucketLocation(cfg.Bucket); err != nil {
		if se, ok := err.(oss.ServiceError); ok && se.StatusCode == 403 && se.Code == "AccessDenied" {
			log.Printf("[OSS] [WARN] skip location check due to AccessDenied (bucket=%s)", cfg.Bucket)
		} else {
			return nil, fmt.Errorf("verify bucket: %w", err)
		}
	} else {
		log.Printf("[OSS] bucket %s location: %s", cfg.Bucket, loc)
	}
	return newOSSStore(bkt, cfg), nil
}

func newOSSStore(bucket objectPutter, cfg OSSConfig) *OSSStore {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = deposit.DefaultMaxProofBytes
	}
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
	return &OSSStore{bucket: bucket, cfg: cfg}
}

// Put uploads the attachment under the store prefix and returns its public URL.
func (s *OSSStore) Put(ctx context.Context, key string, a deposit.Attachment) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if s.cfg.Prefix != "" {
		clean = s.cfg.Prefix + "/" + clean
	}

	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(a.ContentType),
		oss.ContentDisposition("inline"),
	}
	if a.Size > 0 {
		opts = append(opts, oss.ContentLength(a.Size))
	}
	body := io.LimitReader(a.Body, s.cfg.MaxBytes)
	if err := s.bucket.PutObject(clean, body, opts...); err != nil {
		return "", fmt.Errorf("failed to upload proof %s: %w", clean, err)
	}
	return s.PublicURL(clean), nil
}

func (s *OSSStore) PublicURL(key string) string {
	if base := strings.TrimRight(s.cfg.PublicBase, "/"); base != "" {
		return base + "/" + key
	}
	end := strings.TrimPrefix(s.cfg.Endpoint, "https://")
	end = strings.TrimPrefix(end, "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.cfg.Bucket, end, key)
}
