package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/google/uuid"
)

// StoredFile is what callers persist about a saved upload.
type StoredFile struct {
	Path         string
	OriginalName string
	Size         int64
	MimeType     string
}

// Store writes uploads to local disk under a base directory, one subdirectory
// per category. Stored names are random; the original name is only metadata.
type Store struct {
	baseDir          string
	policyMaxBytes   int64
	trainingMaxBytes int64
}

func NewStore(baseDir string, policyMaxBytes, trainingMaxBytes int64) *Store {
	return &Store{
		baseDir:          baseDir,
		policyMaxBytes:   policyMaxBytes,
		trainingMaxBytes: trainingMaxBytes,
	}
}

// Policy documents are text only.
var policyExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

// Training material also covers slideshows recorded as images and video.
var trainingExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
}

func (s *Store) SavePolicyDocument(file multipart.File, header *multipart.FileHeader) (*StoredFile, error) {
	return s.save(file, header, "policies", s.policyMaxBytes, policyExtensions)
}

func (s *Store) SaveTrainingMaterial(file multipart.File, header *multipart.FileHeader) (*StoredFile, error) {
	return s.save(file, header, "training", s.trainingMaxBytes, trainingExtensions)
}

func (s *Store) save(file multipart.File, header *multipart.FileHeader, category string, maxBytes int64, allowed map[string]string) (*StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	mimeType, ok := allowed[ext]
	if !ok {
		return nil, internal.NewValidationError(
			"File type not allowed. Accepted types: "+acceptedList(allowed),
			internal.ErrCodeFileTypeBlocked)
	}
	if header.Size > maxBytes {
		return nil, internal.NewValidationError(
			fmt.Sprintf("File too large. Maximum size is %d bytes", maxBytes),
			internal.ErrCodeFileTooLarge)
	}

	dir := filepath.Join(s.baseDir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	path := filepath.Join(dir, uuid.New().String()+ext)
	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	// LimitReader backstops clients that lie about header.Size.
	written, err := io.Copy(dst, io.LimitReader(file, maxBytes+1))
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if written > maxBytes {
		os.Remove(path)
		return nil, internal.NewValidationError(
			fmt.Sprintf("File too large. Maximum size is %d bytes", maxBytes),
			internal.ErrCodeFileTooLarge)
	}

	return &StoredFile{
		Path:         path,
		OriginalName: header.Filename,
		Size:         written,
		MimeType:     mimeType,
	}, nil
}

func acceptedList(allowed map[string]string) string {
	exts := make([]string, 0, len(allowed))
	for ext := range allowed {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

// Remove deletes a stored file; missing files are not an error.
func (s *Store) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
