package archive

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// GzipFile compresses path to path.gz at best compression and removes the
// original, mirroring `gzip --best`.
func GzipFile(path string) (err error) {
	src, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	defer func() {
		_ = src.Close()
	}()

	out, err := os.Create(path + ".gz")
	if err != nil {
		return fmt.Errorf("create %s.gz: %w", path, err)
	}

	gz, err := gzip.NewWriterLevel(out, gzip.BestCompression)
	if err != nil {
		_ = out.Close()
		return err
	}

	if _, err = io.Copy(gz, src); err == nil {
		err = gz.Close()
	} else {
		_ = gz.Close()
	}

	if closeErr := out.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("compress %s: %w", path, err)
	}

	return os.Remove(path)
}
