package s3

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const coverPrefix = "covers/"

var coverExt = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// NewCoverKey returns covers/<bookID>/<uuid>.<ext> for an allowed image type.
func NewCoverKey(bookID, contentType string) (string, error) {
	ext, ok := coverExt[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", fmt.Errorf("s3: unsupported cover type %q", contentType)
	}
	if bookID == "" || strings.ContainsAny(bookID, "/\\") {
		return "", fmt.Errorf("s3: invalid book id %q", bookID)
	}
	return coverPrefix + bookID + "/" + uuid.NewString() + "." + ext, nil
}

// IsCoverKey reports whether a book's coverUrl points into the bucket rather
// than at an external image.
func IsCoverKey(s string) bool {
	return strings.HasPrefix(s, coverPrefix)
}

// DeleteObject removes key. Used when a book is deleted or its cover replaced.
func (s *CoverStore) DeleteObject(ctx context.Context, key string) error {
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3: delete object %s: %w", key, err)
	}
	return nil
}
