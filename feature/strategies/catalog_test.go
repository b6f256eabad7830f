package strategies

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AgbodesiImoagene/coingro-controller/core/storage/mocks"
)

func objectChan(objects ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(objects))
	for _, object := range objects {
		ch <- object
	}
	close(ch)
	return ch
}

func manifestBody(body string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(body))
}

func TestCatalogList(t *testing.T) {
	client := &mocks.Client{}
	catalog := NewCatalog(client, "coingro-strategies", "strategies/", zap.NewNop())

	client.On("BucketExists", mock.Anything, "coingro-strategies").Return(true, nil)
	client.On("ListObjects", mock.Anything, "coingro-strategies", mock.Anything).
		Return(objectChan(
			minio.ObjectInfo{Key: "strategies/sample.json"},
			minio.ObjectInfo{Key: "strategies/readme.txt"},
		))
	client.On("GetObject", mock.Anything, "coingro-strategies", "strategies/sample.json", mock.Anything).
		Return(manifestBody(`{
			"name": "SampleStrategy",
			"category": "trend",
			"exchange": "binance",
			"tags": ["momentum", "spot"],
			"short_description": "Follows the trend."
		}`), nil)

	manifests, err := catalog.List(context.Background())
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	assert.Equal(t, "SampleStrategy", manifests[0].Name)
	assert.Equal(t, []string{"momentum", "spot"}, manifests[0].Tags)
	client.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, "strategies/readme.txt", mock.Anything)
}

func TestCatalogSkipsMalformedManifest(t *testing.T) {
	client := &mocks.Client{}
	catalog := NewCatalog(client, "coingro-strategies", "strategies/", zap.NewNop())

	client.On("BucketExists", mock.Anything, "coingro-strategies").Return(true, nil)
	client.On("ListObjects", mock.Anything, "coingro-strategies", mock.Anything).
		Return(objectChan(
			minio.ObjectInfo{Key: "strategies/broken.json"},
			minio.ObjectInfo{Key: "strategies/good.json"},
		))
	client.On("GetObject", mock.Anything, "coingro-strategies", "strategies/broken.json", mock.Anything).
		Return(manifestBody(`{not json`), nil)
	client.On("GetObject", mock.Anything, "coingro-strategies", "strategies/good.json", mock.Anything).
		Return(manifestBody(`{"name": "GoodStrategy"}`), nil)

	manifests, err := catalog.List(context.Background())
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	assert.Equal(t, "GoodStrategy", manifests[0].Name)
}

func TestCatalogRejectsUnnamedManifest(t *testing.T) {
	client := &mocks.Client{}
	catalog := NewCatalog(client, "coingro-strategies", "strategies/", zap.NewNop())

	client.On("BucketExists", mock.Anything, "coingro-strategies").Return(true, nil)
	client.On("ListObjects", mock.Anything, "coingro-strategies", mock.Anything).
		Return(objectChan(minio.ObjectInfo{Key: "strategies/anon.json"}))
	client.On("GetObject", mock.Anything, "coingro-strategies", "strategies/anon.json", mock.Anything).
		Return(manifestBody(`{"category": "trend"}`), nil)

	manifests, err := catalog.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, manifests)
}

func TestCatalogMissingBucket(t *testing.T) {
	client := &mocks.Client{}
	catalog := NewCatalog(client, "missing", "strategies/", zap.NewNop())

	client.On("BucketExists", mock.Anything, "missing").Return(false, nil)

	_, err := catalog.List(context.Background())
	assert.Error(t, err)
}
