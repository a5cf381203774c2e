package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage persists uploaded files on disk and returns URLs under a
// configured public base. It is the default file-storage capability; a CDN
// or object-store implementation can replace it behind the same method.
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStorage{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload writes data under a unique name derived from filename and returns
// the hosted URL. Names are prefixed so repeated uploads of the same
// product image never overwrite each other.
func (s *LocalStorage) Upload(filename string, data []byte) (string, error) {
	name := fmt.Sprintf("%s-%s", uuid.New().String()[:8], filepath.Base(filename))
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return s.baseURL + "/" + name, nil
}
