package backend

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"

	"github.com/pavitra93/menulink/shared/storage"
)

// UploadStore sends PDFs to the backend's own file endpoint on behalf of
// the signed-in owner
type UploadStore struct {
	client *Client
	token  string
}

// FileStore binds the upload endpoint to an owner token
func (c *Client) FileStore(token string) *UploadStore {
	return &UploadStore{client: c, token: token}
}

// Upload streams the file as multipart/form-data and returns its file_path
func (u *UploadStore) Upload(ctx context.Context, filename string, r io.Reader, size int64, progress storage.ProgressFunc) (string, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
		header.Set("Content-Type", storage.PDFContentType)

		part, err := form.CreatePart(header)
		if err == nil {
			_, err = io.Copy(part, storage.NewProgressReader(r, size, progress))
		}
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
	}()

	resp, err := u.client.Do(ctx, http.MethodPost, "/api/upload", u.token, pr, form.FormDataContentType())
	// unblock the writer if the request ended early
	_ = pr.CloseWithError(io.ErrClosedPipe)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	var out struct {
		FilePath string `json:"file_path"`
	}
	if err := decodeResponse(resp, &out); err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	if out.FilePath == "" {
		return "", fmt.Errorf("upload failed: backend returned no file_path")
	}
	return out.FilePath, nil
}
