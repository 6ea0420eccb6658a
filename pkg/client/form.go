package client

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Messages shown when the form blocks a submission locally.
var (
	ErrMissingFile  = errors.New("请选择要上传的文件")
	ErrMissingTitle = errors.New("请输入资源标题")
	ErrBusy         = errors.New("正在上传，请稍候")
)

// File is an attached file held in memory so a failed submission can be
// retried without re-selecting it.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// OpenFile reads path and sniffs its content type.
func OpenFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &File{
		Name:        filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

func (f *File) contentType() string {
	if f.ContentType == "" {
		return "application/octet-stream"
	}
	return f.ContentType
}

func (f *File) reader() io.Reader {
	return bytes.NewReader(f.Data)
}

// UploadForm is the typed upload form.
type UploadForm struct {
	Type        string
	Title       string
	Description string
	File        *File
}

// Validate blocks submissions with no file or an empty title.
func (f *UploadForm) Validate() error {
	if f.File == nil || len(f.File.Data) == 0 {
		return ErrMissingFile
	}
	if strings.TrimSpace(f.Title) == "" {
		return ErrMissingTitle
	}
	return nil
}

// Reset clears every field except the selected type.
func (f *UploadForm) Reset() {
	*f = UploadForm{Type: f.Type}
}
