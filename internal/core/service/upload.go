package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
)

// MaxUploadBytes bounds files accepted for upload.
const MaxUploadBytes = 20 << 20

// Upload is a file picked by the operator.
type Upload struct {
	Filename string
	Content  io.Reader
}

type uploadKind int

const (
	imageUpload uploadKind = iota
	pdfUpload
)

// sniff reads the whole upload and checks its detected type before anything
// is sent.
func sniff(field string, kind uploadKind, up Upload) ([]byte, error) {
	if up.Content == nil {
		return nil, domain.NewValidationError(field, "select a file first")
	}
	data, err := io.ReadAll(io.LimitReader(up.Content, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, domain.NewValidationError(field, "the selected file is empty")
	}
	if len(data) > MaxUploadBytes {
		return nil, domain.NewValidationError(field, "the selected file is too large")
	}

	mt := mimetype.Detect(data)
	switch kind {
	case imageUpload:
		if !strings.HasPrefix(mt.String(), "image/") {
			return nil, domain.NewValidationError(field, "the selected file is not an image ("+mt.String()+")")
		}
	case pdfUpload:
		if !mt.Is("application/pdf") {
			return nil, domain.NewValidationError(field, "the selected file is not a PDF ("+mt.String()+")")
		}
	}
	return data, nil
}

// upload validates the file and posts it as multipart under field, returning
// the first non-empty member among urlKeys.
func upload(ctx context.Context, api ports.Dispatcher, path, field string, kind uploadKind, up Upload, urlKeys ...string) (string, error) {
	data, err := sniff(field, kind, up)
	if err != nil {
		return "", err
	}
	name := up.Filename
	if name == "" {
		name = field + mimetype.Detect(data).Extension()
	}

	payload, err := api.Do(ctx, domain.ScopeAdmin, ports.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   ports.Multipart(field, name, bytes.NewReader(data)),
	})
	if err != nil {
		return "", err
	}
	for _, k := range urlKeys {
		if u := payload.Text(k); u != "" {
			return u, nil
		}
	}
	return "", errors.New("upload response carried no file location")
}

// CourseImage uploads a course cover and returns its stored URL.
func CourseImage(ctx context.Context, api ports.Dispatcher, up Upload) (string, error) {
	return upload(ctx, api, CoursesResource.Path+"/upload-image", "image", imageUpload, up, "url")
}
