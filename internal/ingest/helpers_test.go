package ingest

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"toolshelf/internal/memstore"
	"toolshelf/internal/tools"
)

// multipartBody builds a form with one text field and one file part.
func multipartBody(t *testing.T, filename string, content []byte) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("note", "bulk upload"))
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return writer.FormDataContentType(), buf.Bytes()
}

func xlsxBytes(t *testing.T, grid [][]any) []byte {
	t.Helper()
	book := excelize.NewFile()
	defer func() { _ = book.Close() }()
	sheet := book.GetSheetName(0)
	for i, row := range grid {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := row
		require.NoError(t, book.SetSheetRow(sheet, cell, &values))
	}
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// countingStore records how often the pipeline reached the store.
type countingStore struct {
	*memstore.Store
	calls     int
	insertErr error
}

func newCountingStore(seed ...tools.Tool) *countingStore {
	return &countingStore{Store: memstore.New(seed...)}
}

func (s *countingStore) FindByName(ctx context.Context, name string) (*tools.Tool, error) {
	s.calls++
	return s.Store.FindByName(ctx, name)
}

func (s *countingStore) Insert(ctx context.Context, tool *tools.Tool) error {
	s.calls++
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.Store.Insert(ctx, tool)
}
