package imessage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// ErrArchiveMissing indicates the source chat.db does not exist.
// This is a fatal precondition: it is reported before any copy or write.
var ErrArchiveMissing = eris.New("source archive not found")

// walSuffixes are the SQLite side files that must travel with the main
// database for a consistent read of a WAL-mode archive.
var walSuffixes = []string{"-wal", "-shm"}

// Snapshot copies the archive (and its WAL side files, if present) into
// workDir and returns the path of the copy. Reading the copy instead of
// the live file means a concurrently-syncing Messages.app cannot produce
// a torn read.
func Snapshot(archivePath, workDir string) (string, error) {
	if _, err := os.Stat(archivePath); os.IsNotExist(err) {
		return "", eris.Wrapf(ErrArchiveMissing, "path %s", archivePath)
	}

	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}

	dst := filepath.Join(workDir, filepath.Base(archivePath))
	if err := copyFile(archivePath, dst); err != nil {
		return "", fmt.Errorf("copy archive: %w", err)
	}

	for _, suffix := range walSuffixes {
		src := archivePath + suffix
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := copyFile(src, dst+suffix); err != nil {
			return "", fmt.Errorf("copy %s side file: %w", suffix, err)
		}
	}

	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
