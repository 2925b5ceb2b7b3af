// Package storage owns the durable, identifier-addressed layout of completed
// downloads and answers offline-availability queries for playback.
package storage

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tapedeck/tapedeck-go/internal/catalog"
)

// Manager relocates finished transfers into durable storage and serves
// lookups over the layout: <base>/shows/<show>/<recording>/<filename>.
type Manager struct {
	baseDir string
	tempDir string
	logger  *zap.Logger
}

// NewManager creates a storage manager rooted at baseDir. tempDir holds
// in-flight partial files; it may live on the same volume so the final move
// is a rename.
func NewManager(baseDir, tempDir string, logger *zap.Logger) (*Manager, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("storage base directory cannot be empty")
	}
	if tempDir == "" {
		tempDir = filepath.Join(baseDir, "tmp")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, dir := range []string{filepath.Join(baseDir, "shows"), tempDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	return &Manager{baseDir: baseDir, tempDir: tempDir, logger: logger}, nil
}

// TrackPath returns the durable location for a track identifier.
func (m *Manager) TrackPath(showID, recordingID, filename string) string {
	return filepath.Join(m.baseDir, "shows", sanitize(showID), sanitize(recordingID), sanitize(filename))
}

// TempPath returns the partial-file location for a track identifier.
func (m *Manager) TempPath(showID, recordingID, filename string) string {
	name := sanitize(showID) + "_" + sanitize(recordingID) + "_" + sanitize(filename) + ".part"
	return filepath.Join(m.tempDir, name)
}

// MoveToStorage atomically relocates a completed transfer into its durable,
// identifier-addressed location and returns that location. Falls back to
// copy+remove when the rename crosses filesystems.
func (m *Manager) MoveToStorage(tempPath, showID, recordingID, filename string) (string, error) {
	dest := m.TrackPath(showID, recordingID, filename)

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create track directory: %w", err)
	}

	if err := os.Rename(tempPath, dest); err != nil {
		if copyErr := copyFile(tempPath, dest); copyErr != nil {
			return "", fmt.Errorf("failed to move download into storage: %w", err)
		}
		os.Remove(tempPath)
	}

	m.logger.Debug("moved download into storage",
		zap.String("show", showID),
		zap.String("path", dest))
	return dest, nil
}

// IsTrackDownloaded reports whether a track is available offline.
func (m *Manager) IsTrackDownloaded(showID, recordingID, filename string) bool {
	info, err := os.Stat(m.TrackPath(showID, recordingID, filename))
	return err == nil && info.Size() > 0
}

// LocalPath returns the on-disk location of a downloaded track, or false when
// the track is not available offline.
func (m *Manager) LocalPath(showID, recordingID, filename string) (string, bool) {
	path := m.TrackPath(showID, recordingID, filename)
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return path, true
	}
	return "", false
}

// LocalTrackURL implements the playback engine's local source seam: when a
// track exists offline, playback gets a file URL instead of streaming.
func (m *Manager) LocalTrackURL(t catalog.Track) (string, bool) {
	path, ok := m.LocalPath(t.ShowID, t.RecordingID, t.Filename)
	if !ok {
		return "", false
	}
	return "file://" + path, true
}

// DeleteShow removes every downloaded file of a show, including partials.
func (m *Manager) DeleteShow(showID string) error {
	if err := os.RemoveAll(filepath.Join(m.baseDir, "shows", sanitize(showID))); err != nil {
		return fmt.Errorf("failed to delete show storage: %w", err)
	}

	// Sweep leftover partials for the show
	entries, err := os.ReadDir(m.tempDir)
	if err != nil {
		return nil
	}
	prefix := sanitize(showID) + "_"
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) {
			os.Remove(filepath.Join(m.tempDir, e.Name()))
		}
	}
	return nil
}

// DeleteAll removes all downloaded content and partials.
func (m *Manager) DeleteAll() error {
	if err := os.RemoveAll(filepath.Join(m.baseDir, "shows")); err != nil {
		return fmt.Errorf("failed to delete storage: %w", err)
	}
	if err := os.RemoveAll(m.tempDir); err != nil {
		return fmt.Errorf("failed to delete temp storage: %w", err)
	}
	for _, dir := range []string{filepath.Join(m.baseDir, "shows"), m.tempDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to recreate storage directory: %w", err)
		}
	}
	return nil
}

// TotalStorageUsed returns the byte size of all downloaded content.
func (m *Manager) TotalStorageUsed() (int64, error) {
	return dirSize(filepath.Join(m.baseDir, "shows"))
}

// ShowStorageUsed returns the byte size of one show's downloaded content.
func (m *Manager) ShowStorageUsed(showID string) (int64, error) {
	return dirSize(filepath.Join(m.baseDir, "shows", sanitize(showID)))
}

func dirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return total, err
	}
	return total, nil
}

// sanitize keeps identifiers safe as path segments.
func sanitize(s string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", "..", "-", ":", "-")
	return replacer.Replace(s)
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
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
