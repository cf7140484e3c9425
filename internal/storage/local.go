// Package storage keeps job file objects on the local filesystem behind
// signed transfer URLs.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
)

// SignedURL is a pre-authorised transfer request.
type SignedURL struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
}

// Transfer routes served by the API.
const (
	UploadPath   = "/api/v1/files/upload"
	DownloadPath = "/api/v1/files/download"
)

// ErrNotFound reports a missing object.
var ErrNotFound = errors.New("storage: object not found")

// Local stores objects under a root directory. Object keys are slash
// separated and may not escape the root.
type Local struct {
	root    *os.Root
	signer  *Signer
	baseURL string
}

// NewLocal opens (creating if needed) dir as the object root. baseURL
// prefixes signed URLs and may be empty for relative URLs.
func NewLocal(dir string, signer *Signer, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open storage dir: %w", err)
	}
	return &Local{root: root, signer: signer, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Close releases the root directory handle.
func (l *Local) Close() error {
	return l.root.Close()
}

// Check reports whether the root directory is still accessible.
func (l *Local) Check() error {
	info, err := l.root.Stat(".")
	if err != nil {
		return fmt.Errorf("stat storage dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage root is not a directory")
	}
	return nil
}

// Signer returns the signer used for transfer URLs.
func (l *Local) Signer() *Signer {
	return l.signer
}

// SignedUploadURL authorises a PUT of objectKey.
func (l *Local) SignedUploadURL(objectKey, contentType string) SignedURL {
	payload, sig := l.signer.Sign(ActionUpload, objectKey)
	q := url.Values{"payload": {payload}, "sig": {sig}}
	return SignedURL{
		URL:     l.baseURL + UploadPath + "?" + q.Encode(),
		Method:  http.MethodPut,
		Headers: map[string]string{"content-type": contentType},
	}
}

// SignedDownloadURL authorises a GET of objectKey saved as fileName.
func (l *Local) SignedDownloadURL(objectKey, fileName string) SignedURL {
	payload, sig := l.signer.Sign(ActionDownload, objectKey)
	q := url.Values{"payload": {payload}, "sig": {sig}, "name": {fileName}}
	return SignedURL{
		URL:     l.baseURL + DownloadPath + "?" + q.Encode(),
		Method:  http.MethodGet,
		Headers: map[string]string{},
	}
}

// Write stores the object, replacing any previous content.
func (l *Local) Write(objectKey string, r io.Reader) error {
	name, err := cleanKey(objectKey)
	if err != nil {
		return err
	}
	if dir := path.Dir(name); dir != "." {
		if err := l.root.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create object dir: %w", err)
		}
	}

	f, err := l.root.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("write object: %w", err)
	}
	return f.Close()
}

// Read returns the object's content.
func (l *Local) Read(objectKey string) ([]byte, error) {
	name, err := cleanKey(objectKey)
	if err != nil {
		return nil, err
	}
	data, err := l.root.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Delete removes the object. A missing object is not an error.
func (l *Local) Delete(objectKey string) error {
	name, err := cleanKey(objectKey)
	if err != nil {
		return err
	}
	if err := l.root.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func cleanKey(objectKey string) (string, error) {
	name := path.Clean(objectKey)
	if name == "." || path.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
		return "", fmt.Errorf("storage: invalid object key %q", objectKey)
	}
	return name, nil
}
