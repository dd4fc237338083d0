package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxInvitationImageSize bounds invitation image uploads.
const MaxInvitationImageSize = 5 << 20

var ErrUnsupportedImage = errors.New("invitation image must be a JPEG, PNG, GIF or WebP file")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageStore uploads invitation images to Supabase Storage and returns
// their public URLs.
type ImageStore struct {
	baseURL    string
	serviceKey string
	bucket     string
	client     *http.Client
}

func NewImageStore(supabaseURL, serviceKey, bucket string, timeout time.Duration) *ImageStore {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ImageStore{
		baseURL:    strings.TrimRight(supabaseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		client:     &http.Client{Timeout: timeout},
	}
}

// Upload stores the image under owner/session and returns its public URL.
func (s *ImageStore) Upload(ctx context.Context, ownerID, sessionID uuid.UUID, contentType string, r io.Reader) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", ErrUnsupportedImage
	}
	object := path.Join(ownerID.String(), sessionID.String(), uuid.NewString()+ext)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(object), io.LimitReader(r, MaxInvitationImageSize))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")
	if err := s.do(req, "upload"); err != nil {
		return "", err
	}
	return s.PublicURL(object), nil
}

// Delete removes an object stored by Upload, given its public URL.
func (s *ImageStore) Delete(ctx context.Context, publicURL string) error {
	object, ok := strings.CutPrefix(publicURL, s.PublicURL(""))
	if !ok || object == "" {
		return fmt.Errorf("%s is not an object of bucket %s", publicURL, s.bucket)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(object), nil)
	if err != nil {
		return err
	}
	return s.do(req, "delete")
}

func (s *ImageStore) objectURL(object string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, url.PathEscape(s.bucket), object)
}

func (s *ImageStore) do(req *http.Request, op string) error {
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("storage %s returned %d: %s", op, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// PublicURL is the address of an object in a public bucket.
func (s *ImageStore) PublicURL(object string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, url.PathEscape(s.bucket), object)
}
