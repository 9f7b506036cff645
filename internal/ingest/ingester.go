// Package ingest turns an uploaded CSV, JSON or XLSX file into stored tools.
package ingest

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"toolshelf/internal/tools"
)

const successMessage = "Tools processed successfully"

// Upload is one ingestion request as delivered by a transport.
type Upload struct {
	Secret      string
	ContentType string
	Body        []byte
	// Base64 marks Body as base64 text, as serverless runtimes deliver it.
	Base64 bool
}

type Report struct {
	Message string `json:"message"`
	Added   int    `json:"added_count"`
	Skipped int    `json:"skipped_count"`
	Total   int    `json:"total_processed"`
}

// Observer receives the outcome of every upload.
type Observer interface {
	ObserveUpload(outcome string, duration time.Duration, report *Report)
}

type Option func(*Ingester)

func WithSecret(secret string) Option {
	return func(in *Ingester) {
		in.secret = secret
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(in *Ingester) {
		if logger != nil {
			in.logger = logger
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(in *Ingester) {
		in.observer = observer
	}
}

func WithClock(now func() time.Time) Option {
	return func(in *Ingester) {
		if now != nil {
			in.now = now
		}
	}
}

// WithFormats replaces the extension to parser table.
func WithFormats(formats map[string]Parser) Option {
	return func(in *Ingester) {
		in.formats = formats
	}
}

type Ingester struct {
	store    tools.Store
	secret   string
	formats  map[string]Parser
	logger   *zap.Logger
	observer Observer
	now      func() time.Time
}

func New(store tools.Store, opts ...Option) *Ingester {
	in := &Ingester{
		store:   store,
		formats: DefaultFormats(),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Ingest authenticates the upload, parses and validates every row, then
// inserts the rows whose name is not stored yet. Any validation failure
// rejects the batch before the store is touched. A store failure stops the
// remaining inserts; rows inserted before it are kept. Errors are *Error.
func (in *Ingester) Ingest(ctx context.Context, up Upload) (*Report, error) {
	start := in.now()
	report, err := in.ingest(ctx, up)
	return report, in.record(start, report, err)
}

// Authorize checks the admin secret ahead of reading an upload body. A
// rejection is logged and observed like any failed upload. An ingester
// without a configured secret rejects every caller.
func (in *Ingester) Authorize(provided string) error {
	start := in.now()
	if err := in.authorize(provided); err != nil {
		return in.record(start, nil, err)
	}
	return nil
}

func (in *Ingester) record(start time.Time, report *Report, err error) error {
	outcome := "success"
	if err != nil {
		ierr := AsError(err)
		outcome = ierr.Kind.String()
		fields := []zap.Field{zap.String("kind", outcome), zap.Error(ierr)}
		if ierr.Kind == KindInternal {
			in.logger.Error("upload failed", fields...)
		} else {
			in.logger.Info("upload rejected", fields...)
		}
		err = ierr
	} else {
		in.logger.Info("upload processed",
			zap.Int("added", report.Added),
			zap.Int("skipped", report.Skipped),
			zap.Int("total", report.Total),
		)
	}
	if in.observer != nil {
		in.observer.ObserveUpload(outcome, in.now().Sub(start), report)
	}
	return err
}

func (in *Ingester) ingest(ctx context.Context, up Upload) (*Report, error) {
	if err := in.authorize(up.Secret); err != nil {
		return nil, err
	}

	body, err := decodeBody(up)
	if err != nil {
		return nil, badRequest(err)
	}

	file, err := ExtractFile(up.ContentType, body)
	if err != nil {
		return nil, &Error{Kind: KindBadRequest, Detail: ErrNoFileContent.Error(), Err: err}
	}

	parse, err := ParserFor(in.formats, file.Name)
	if err != nil {
		return nil, badRequest(err)
	}
	rows, err := parse(file.Content)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			return nil, badRequest(perr)
		}
		return nil, internal(err)
	}
	if len(rows) == 0 {
		return nil, badRequest(ErrNoTools)
	}
	in.logger.Debug("upload parsed", zap.String("file", file.Name), zap.Int("rows", len(rows)))

	batch, err := in.validateAll(rows)
	if err != nil {
		return nil, err
	}

	report := &Report{Message: successMessage, Total: len(batch)}
	for i := range batch {
		added, err := in.insertIfNew(ctx, &batch[i])
		if err != nil {
			return nil, internal(fmt.Errorf("insert %q: %w", batch[i].Name, err))
		}
		if added {
			report.Added++
		} else {
			report.Skipped++
		}
	}
	return report, nil
}

func (in *Ingester) authorize(provided string) error {
	if in.secret != "" && provided != "" &&
		subtle.ConstantTimeCompare([]byte(provided), []byte(in.secret)) == 1 {
		return nil
	}
	return &Error{Kind: KindUnauthorized, Detail: ErrUnauthorized.Error(), Err: ErrUnauthorized}
}

func decodeBody(up Upload) ([]byte, error) {
	if len(up.Body) == 0 {
		return nil, ErrNoBody
	}
	if !up.Base64 {
		return up.Body, nil
	}
	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(up.Body)))
	n, err := base64.StdEncoding.Decode(decoded, up.Body)
	if err != nil {
		return nil, ErrInvalidBody
	}
	if n == 0 {
		return nil, ErrNoBody
	}
	return decoded[:n], nil
}

func (in *Ingester) validateAll(rows []Row) ([]tools.Tool, error) {
	createdAt := in.now()
	batch := make([]tools.Tool, 0, len(rows))
	var failures []string
	for i, row := range rows {
		candidate := NewCandidate(row)
		if problems := Validate(candidate); len(problems) > 0 {
			failures = append(failures, fmt.Sprintf("Row %d: %s", i+1, strings.Join(problems, ", ")))
			continue
		}
		batch = append(batch, candidate.Tool(createdAt))
	}
	if len(failures) > 0 {
		return nil, &Error{Kind: KindValidation, Detail: "Validation errors found", Rows: failures}
	}
	return batch, nil
}

func (in *Ingester) insertIfNew(ctx context.Context, tool *tools.Tool) (bool, error) {
	_, err := in.store.FindByName(ctx, tool.Name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, tools.ErrNotFound) {
		return false, err
	}
	if err := in.store.Insert(ctx, tool); err != nil {
		if errors.Is(err, tools.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
