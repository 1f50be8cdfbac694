package application

import (
	"context"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rent-home/service-matching/internal/platform/domain"
)

// Media kinds accepted by the upload endpoint.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

const (
	maxImageBytes = 10 << 20
	maxVideoBytes = 100 << 20

	storageNotConfiguredMessage = "腾讯云 COS 未配置，请在 .env 中设置 COS_SECRET_ID、COS_SECRET_KEY、COS_BUCKET、COS_REGION"
	invalidMediaTypeMessage     = "type 只能是 image 或 video"
	missingFileMessage          = "请选择要上传的文件"
)

// MediaStore persists uploaded objects and returns their public URL.
type MediaStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// UploadRequest describes one uploaded file.
type UploadRequest struct {
	Kind        string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult is returned to the admin client.
type UploadResult struct {
	URL string `json:"url"`
}

// MediaService uploads apartment images and videos.
type MediaService struct {
	store  MediaStore
	now    func() time.Time
	logger *zap.Logger
}

// NewMediaService creates a new MediaService. A nil store makes every upload fail as unconfigured.
func NewMediaService(store MediaStore, logger *zap.Logger) *MediaService {
	return &MediaService{store: store, now: time.Now, logger: logger}
}

// Upload validates the file and stores it under the prefix for its kind.
func (s *MediaService) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if s.store == nil {
		return nil, domain.NewUnavailableError(storageNotConfiguredMessage)
	}

	var prefix string
	var limit int64
	switch req.Kind {
	case MediaImage:
		prefix, limit = "apartments/images/", maxImageBytes
	case MediaVideo:
		prefix, limit = "apartments/videos/", maxVideoBytes
	default:
		return nil, domain.NewValidationError(invalidMediaTypeMessage)
	}
	if req.Body == nil || req.Size <= 0 {
		return nil, domain.NewValidationError(missingFileMessage)
	}
	if req.Size > limit {
		return nil, domain.NewValidationError("文件过大，最大 " + strconv.FormatInt(limit>>20, 10) + "MB")
	}

	key := ObjectKey(prefix, req.Filename, s.now())
	url, err := s.store.Put(ctx, key, req.ContentType, req.Body, req.Size)
	if err != nil {
		s.logger.Error("media upload failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	s.logger.Info("media uploaded",
		zap.String("kind", req.Kind),
		zap.String("key", key),
		zap.Int64("size", req.Size),
	)
	return &UploadResult{URL: url}, nil
}

// ObjectKey builds prefix + unix millis + "-" + random suffix + the file's extension (".bin" when absent).
func ObjectKey(prefix, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return prefix + strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix + ext
}
