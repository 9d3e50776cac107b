package archive

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"inventory-server/core/storage/mocks"
	"inventory-server/feature/inventory/protocol"
)

func TestStoreUploadsPayload(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "inventory").Return(true, nil)
	client.On("PutObject", mock.Anything, "inventory", "inventory/pc-1.json",
		mock.Anything, int64(2), mock.Anything).
		Return(minio.UploadInfo{}, nil)

	a := New(client, "inventory", zap.NewNop())
	a.Store(context.Background(), "pc-1", protocol.ModeJSON, []byte("{}"))

	client.AssertExpectations(t)
}

func TestStoreCreatesMissingBucket(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "inventory").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "inventory", mock.Anything).Return(nil)
	client.On("PutObject", mock.Anything, "inventory", "inventory/pc-1.xml",
		mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	a := New(client, "inventory", zap.NewNop())
	a.Store(context.Background(), "pc-1", protocol.ModeXML, []byte("<REQUEST/>"))

	client.AssertExpectations(t)
}

func TestStoreFailureIsNonFatal(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "inventory").
		Return(false, errors.New("connection refused"))

	a := New(client, "inventory", zap.NewNop())
	a.Store(context.Background(), "pc-1", protocol.ModeJSON, []byte("{}"))

	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDisabledArchiver(t *testing.T) {
	a := New(nil, "inventory", zap.NewNop())
	assert.False(t, a.Enabled())

	// No client wired in: Store is a no-op.
	a.Store(context.Background(), "pc-1", protocol.ModeJSON, []byte("{}"))
}
