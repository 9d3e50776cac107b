package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"inventory-server/core/storage"
	"inventory-server/feature/inventory/protocol"
)

// Archiver stores the last raw submission of every device in object
// storage. Failures are logged and never fail the request.
type Archiver struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// New creates an archiver over the given storage client. A nil client
// disables archiving entirely.
func New(client storage.Client, bucket string, logger *zap.Logger) *Archiver {
	return &Archiver{client: client, bucket: bucket, logger: logger}
}

// Enabled reports whether a storage client is wired in.
func (a *Archiver) Enabled() bool {
	return a != nil && a.client != nil
}

// Store writes the decompressed payload under inventory/<deviceid> with
// an extension matching the wire mode, replacing the previous one.
func (a *Archiver) Store(ctx context.Context, deviceID string, mode protocol.Mode, payload []byte) {
	if !a.Enabled() {
		return
	}

	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err == nil && !exists {
		err = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
	}
	if err != nil {
		a.logger.Warn("submission archive unavailable",
			zap.String("bucket", a.bucket), zap.Error(err))
		return
	}

	ext := "json"
	if mode == protocol.ModeXML {
		ext = "xml"
	}
	object := fmt.Sprintf("inventory/%s.%s", deviceID, ext)

	_, err = a.client.PutObject(ctx, a.bucket, object,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: mode.ContentType()})
	if err != nil {
		a.logger.Warn("failed to archive submission",
			zap.String("object", object), zap.Error(err))
		return
	}

	a.logger.Debug("submission archived", zap.String("object", object))
}
