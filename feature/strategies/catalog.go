package strategies

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/AgbodesiImoagene/coingro-controller/core/storage"
)

// Manifest describes one strategy as published in the catalog bucket. Each
// strategy is a JSON object under the configured prefix.
type Manifest struct {
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	Exchange         string   `json:"exchange"`
	Tags             []string `json:"tags"`
	ShortDescription string   `json:"short_description"`
	LongDescription  string   `json:"long_description"`
}

// Catalog reads strategy manifests from object storage.
type Catalog struct {
	client storage.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewCatalog creates a catalog reader for the given bucket and prefix.
func NewCatalog(client storage.Client, bucket, prefix string, logger *zap.Logger) *Catalog {
	return &Catalog{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

// List downloads and decodes all strategy manifests. Malformed manifests are
// logged and skipped so one bad object cannot block the catalog.
func (c *Catalog) List(ctx context.Context) ([]Manifest, error) {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", c.bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("catalog bucket %q does not exist", c.bucket)
	}

	var manifests []Manifest
	objects := c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    c.prefix,
		Recursive: true,
	})
	for object := range objects {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list catalog objects: %w", object.Err)
		}
		if !strings.HasSuffix(object.Key, ".json") {
			continue
		}

		manifest, err := c.fetch(ctx, object.Key)
		if err != nil {
			c.logger.Warn("Skipping malformed strategy manifest",
				zap.String("key", object.Key),
				zap.Error(err))
			continue
		}
		manifests = append(manifests, *manifest)
	}

	return manifests, nil
}

func (c *Catalog) fetch(ctx context.Context, key string) (*Manifest, error) {
	object, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer object.Close()

	var manifest Manifest
	if err := json.NewDecoder(object).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if manifest.Name == "" {
		return nil, fmt.Errorf("manifest %q has no name", key)
	}
	return &manifest, nil
}
