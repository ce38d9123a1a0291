// Package uploads stores user-submitted files on the local filesystem and
// hands back the public URL they are served under. Files are written with a
// random prefix so two uploads with the same name never collide and stored
// names are never attacker-chosen.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes files under a base directory and maps them to URLs under a
// fixed prefix. The directory is expected to be mounted on the router as a
// static file route with the same prefix.
type Store struct {
	dir       string
	urlPrefix string
}

// New creates the base directory if needed and returns a Store.
func New(dir, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Save writes the reader's contents to disk and returns the public URL.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	stored := fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitizeName(name))

	f, err := os.Create(filepath.Join(s.dir, stored))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}

	return s.urlPrefix + "/" + stored, nil
}

// Remove deletes the file behind a URL previously returned by Save. URLs
// outside this store's prefix are ignored, so callers can pass whatever is
// on the user record without checking where it came from. A missing file is
// not an error.
func (s *Store) Remove(publicURL string) error {
	rest, ok := strings.CutPrefix(publicURL, s.urlPrefix+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") || strings.Contains(rest, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, rest))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// URLPrefix returns the public prefix files are served under.
func (s *Store) URLPrefix() string { return s.urlPrefix }

// Dir returns the base directory files are written to.
func (s *Store) Dir() string { return s.dir }

func sanitizeName(name string) string {
	name = filepath.Base(name)

	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if allowedNameChar(c) {
			out = append(out, c)
		} else {
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "file"
	}
	if len(out) > 100 {
		ext := filepath.Ext(string(out))
		if len(ext) > 0 && len(ext) < 10 {
			out = append(out[:100-len(ext)], ext...)
		} else {
			out = out[:100]
		}
	}
	return string(out)
}

func allowedNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
