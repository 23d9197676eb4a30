package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/loanapply/internal/loan/domain"
	"github.com/aussiebroadwan/loanapply/pkg/slogx"
)

// DefaultAllowedExtensions are the document types the apply form accepts.
var DefaultAllowedExtensions = []string{"pdf", "png", "jpg", "jpeg", "doc", "docx", "xls", "xlsx"}

const stagedNameLayout = "20060102150405"

var (
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	ErrInvalidFilename     = errors.New("invalid file name")
)

type extensionError struct{ Ext string }

func (e *extensionError) Error() string { return ErrExtensionNotAllowed.Error() + ": " + e.Ext }

func (e *extensionError) Is(target error) bool { return target == ErrExtensionNotAllowed }

// FileStager writes phase one uploads into the staging folder.
type FileStager struct {
	// Dir is the staging folder. A relative Dir is resolved against Root.
	Dir  string
	Root string

	// AllowedExt holds lowercase extensions without the dot. Empty allows
	// everything.
	AllowedExt []string

	Now func() time.Time
}

// Folder returns the absolute staging folder.
func (s *FileStager) Folder() (string, error) {
	if filepath.IsAbs(s.Dir) {
		return filepath.Clean(s.Dir), nil
	}
	root := s.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		root = wd
	}
	return filepath.Abs(filepath.Join(root, s.Dir))
}

// Stage writes f to the staging folder as <timestamp>_<base name>. A nil
// upload or one without a name is a no-op and returns (nil, nil).
//
// Two uploads of the same name within the same second share a target and
// the later one replaces the earlier; Overwrote reports when that happens.
func (s *FileStager) Stage(ctx context.Context, f *domain.UploadFile) (*domain.StagedUpload, error) {
	if f == nil || f.Filename == "" {
		return nil, nil
	}
	l := slogx.FromContext(ctx)

	base := baseName(f.Filename)
	if base == "" {
		return nil, ErrInvalidFilename
	}
	if !s.allowed(base) {
		return nil, &extensionError{Ext: extension(base)}
	}

	folder, err := s.Folder()
	if err != nil {
		return nil, fmt.Errorf("resolve staging folder: %w", err)
	}
	if err := os.MkdirAll(folder, 0750); err != nil {
		return nil, fmt.Errorf("create staging folder: %w", err)
	}

	name := s.now().Format(stagedNameLayout) + "_" + base
	target := filepath.Join(folder, name)

	overwrote := false
	if _, err := os.Stat(target); err == nil {
		overwrote = true
		l.Warn("staged upload replaces an existing file", slog.String("path", filepath.ToSlash(target)))
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640) // #nosec G304 - name is base-only
	if err != nil {
		return nil, fmt.Errorf("open staged file: %w", err)
	}
	if _, err := io.Copy(out, f.Content); err != nil {
		_ = out.Close()
		_ = os.Remove(target)
		return nil, fmt.Errorf("write staged file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(target)
		return nil, fmt.Errorf("close staged file: %w", err)
	}

	staged := &domain.StagedUpload{
		Path:         filepath.ToSlash(target),
		OriginalName: f.Filename,
		Overwrote:    overwrote,
	}
	l.Info("staged upload",
		slog.String("path", staged.Path),
		slog.String("original_name", staged.OriginalName),
	)
	return staged, nil
}

// ListStaged returns the regular files in the staging folder. A missing
// folder yields no files.
func (s *FileStager) ListStaged() ([]domain.StagedFile, error) {
	folder, err := s.Folder()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(folder)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	files := make([]domain.StagedFile, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, domain.StagedFile{
			Path:    filepath.ToSlash(filepath.Join(folder, e.Name())),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// Remove deletes a staged file. Paths outside the staging folder are
// refused.
func (s *FileStager) Remove(path string) error {
	folder, err := s.Folder()
	if err != nil {
		return err
	}
	p := filepath.Clean(filepath.FromSlash(path))
	if filepath.Dir(p) != folder {
		return fmt.Errorf("%s is not a staged file", path)
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *FileStager) allowed(name string) bool {
	if len(s.AllowedExt) == 0 {
		return true
	}
	return slices.Contains(s.AllowedExt, extension(name))
}

func (s *FileStager) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// baseName strips any directory part a browser may have sent, for either
// separator style.
func baseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}
