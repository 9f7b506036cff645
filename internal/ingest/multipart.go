package ingest

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// File is the single uploaded file carried by a multipart body.
type File struct {
	Name    string
	Content []byte
}

func (f *File) Text() string {
	return string(f.Content)
}

// Ext returns the lower-cased filename extension, including the dot.
func (f *File) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// ExtractFile returns the first part of a multipart/form-data body that
// carries a filename. The boundary is taken from contentType, or from the
// body's opening delimiter line when the header is missing. Part bytes are
// returned untouched so binary formats survive.
func ExtractFile(contentType string, body []byte) (*File, error) {
	boundary := boundaryFromContentType(contentType)
	if boundary == "" {
		boundary = boundaryFromBody(body)
	}
	if boundary == "" {
		return nil, ErrNoFileContent
	}

	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := reader.NextRawPart()
		if errors.Is(err, io.EOF) {
			return nil, ErrNoFileContent
		}
		if err != nil {
			return nil, errors.Join(ErrNoFileContent, err)
		}
		name := part.FileName()
		if name == "" {
			_ = part.Close()
			continue
		}
		content, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return nil, errors.Join(ErrNoFileContent, err)
		}
		if len(bytes.TrimSpace(content)) == 0 {
			return nil, ErrNoFileContent
		}
		return &File{Name: name, Content: content}, nil
	}
}

func boundaryFromContentType(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return ""
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return ""
	}
	return params["boundary"]
}

func boundaryFromBody(body []byte) string {
	trimmed := bytes.TrimLeft(body, "\r\n")
	line, _, _ := bytes.Cut(trimmed, []byte("\n"))
	line = bytes.TrimRight(line, "\r")
	if !bytes.HasPrefix(line, []byte("--")) || len(line) <= 2 {
		return ""
	}
	return string(bytes.TrimSpace(line[2:]))
}
