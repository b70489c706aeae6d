package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Zip creates dest as a zip archive of everything under baseDir, with
// member paths relative to baseDir. No working-directory change is
// involved; relative paths come from the walk itself.
func Zip(dest, baseDir string) (err error) {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	zw := zip.NewWriter(out)

	defer func() {
		if closeErr := zw.Close(); closeErr != nil && err == nil {
			err = closeErr
		}

		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	err = filepath.WalkDir(baseDir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if path == baseDir {
			return nil
		}

		rel, relErr := filepath.Rel(baseDir, path)
		if relErr != nil {
			return relErr
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			return infoErr
		}

		header, headerErr := zip.FileInfoHeader(info)
		if headerErr != nil {
			return headerErr
		}

		header.Name = filepath.ToSlash(rel)

		if entry.IsDir() {
			header.Name += "/"

			_, dirErr := zw.CreateHeader(header)

			return dirErr
		}

		// Symlinks are stored as links, with the target as the body.
		if entry.Type()&fs.ModeSymlink != 0 {
			target, linkErr := os.Readlink(path)
			if linkErr != nil {
				return linkErr
			}

			w, createErr := zw.CreateHeader(header)
			if createErr != nil {
				return createErr
			}

			_, writeErr := io.WriteString(w, target)

			return writeErr
		}

		header.Method = zip.Deflate

		w, createErr := zw.CreateHeader(header)
		if createErr != nil {
			return createErr
		}

		src, openErr := os.Open(path)
		if openErr != nil {
			return openErr
		}

		defer func() {
			_ = src.Close()
		}()

		_, copyErr := io.Copy(w, src)

		return copyErr
	})
	if err != nil {
		return fmt.Errorf("archive %s: %w", baseDir, err)
	}

	return nil
}
