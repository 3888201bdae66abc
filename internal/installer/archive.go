package installer

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// extractedFileMode is applied to tar entries that carry no useful mode and
// to the SteamCMD entry point after extraction.
const extractedFileMode = 0o755

// extractArchive decompresses archivePath into destDir, dispatching on the
// archive suffix. Only the two formats Valve ships are supported.
func extractArchive(archivePath, destDir string) error {
	switch {
	case strings.HasSuffix(archivePath, ".zip"):
		return extractZip(archivePath, destDir)
	case strings.HasSuffix(archivePath, ".tar.gz"), strings.HasSuffix(archivePath, ".tgz"):
		return extractTarGz(archivePath, destDir)
	default:
		return fmt.Errorf("unsupported archive format: %s", filepath.Base(archivePath))
	}
}

// sanitizePath joins name under destDir and rejects entries that would
// escape it (zip-slip).
func sanitizePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry escapes destination: %s", name)
	}
	return target, nil
}

func extractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		target, pathErr := sanitizePath(destDir, file.Name)
		if pathErr != nil {
			return pathErr
		}

		if file.FileInfo().IsDir() {
			if mkErr := os.MkdirAll(target, extractedFileMode); mkErr != nil {
				return fmt.Errorf("creating directory %s: %w", target, mkErr)
			}
			continue
		}

		if writeErr := writeZipEntry(file, target); writeErr != nil {
			return writeErr
		}
	}
	return nil
}

func writeZipEntry(file *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), extractedFileMode); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("opening zip entry %s: %w", file.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, file.Mode())
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}

	if _, copyErr := io.Copy(dst, src); copyErr != nil {
		_ = dst.Close()
		return fmt.Errorf("extracting %s: %w", file.Name, copyErr)
	}
	return dst.Close()
}

func extractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("opening gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, readErr := tr.Next()
		if errors.Is(readErr, io.EOF) {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("reading tar: %w", readErr)
		}

		target, pathErr := sanitizePath(destDir, header.Name)
		if pathErr != nil {
			return pathErr
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if mkErr := os.MkdirAll(target, extractedFileMode); mkErr != nil {
				return fmt.Errorf("creating directory %s: %w", target, mkErr)
			}
		case tar.TypeReg:
			if writeErr := writeTarEntry(tr, header, target); writeErr != nil {
				return writeErr
			}
		default:
			// Symlinks and special files never appear in Valve's archives;
			// skip rather than fail on exotic entries.
		}
	}
}

func writeTarEntry(tr *tar.Reader, header *tar.Header, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), extractedFileMode); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}

	mode := os.FileMode(header.Mode) //nolint:gosec // Tar header mode fits in FileMode.
	if mode == 0 {
		mode = extractedFileMode
	}

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}

	if _, copyErr := io.Copy(dst, tr); copyErr != nil { //nolint:gosec // Valve archives are size-bounded.
		_ = dst.Close()
		return fmt.Errorf("extracting %s: %w", header.Name, copyErr)
	}
	return dst.Close()
}
