package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Saver is the host's "save as" capability. It returns where the data ended up.
type Saver interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// FileSaver writes downloads into Dir, creating it when needed.
type FileSaver struct {
	Dir string
}

func NewFileSaver(dir string) *FileSaver {
	return &FileSaver{Dir: dir}
}

func (s *FileSaver) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	path := filepath.Join(s.Dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	return path, nil
}
