package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/google/uuid"
	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

// Multipart field names understood by the upload endpoint
const (
	fieldFile         = "file"
	fieldLanguage     = "language"
	fieldAnalysisMode = "analysis_mode"
)

// Uploader submits documents to the analysis service
type Uploader struct {
	http       *HTTPClient
	uploadPath string
	limits     models.UploadLimits
	logger     *lib.Logger
}

// NewUploader creates an Uploader posting to uploadPath under the client's base URL
func NewUploader(httpClient *HTTPClient, uploadPath string, limits models.UploadLimits, logger *lib.Logger) *Uploader {
	if logger == nil {
		logger = lib.DefaultLogger
	}
	if uploadPath == "" {
		uploadPath = models.DefaultConfig().API.UploadPath
	}
	return &Uploader{
		http:       httpClient,
		uploadPath: uploadPath,
		limits:     limits,
		logger:     logger,
	}
}

// Submit validates req and uploads it as one multipart request.
// onProgress receives non-decreasing percentages in [0,100], each value at most once;
// 100 is reported after the whole body has been written.
// Submit returns only after the body writer has stopped, so onProgress is never
// called after it returns.
func (u *Uploader) Submit(ctx context.Context, req models.SubmissionRequest, onProgress func(int)) (*models.TaskReference, error) {
	if err := u.limits.Validate(req); err != nil {
		return nil, err
	}

	content, err := req.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}

	u.logger.Info("Uploading document",
		"file", req.FileName,
		"size", req.Size,
		"content_type", req.ContentType,
		"language", req.Language,
		"mode", req.Mode)

	progress := newProgressTracker(req.Size, onProgress)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		defer func() { _ = content.Close() }()

		err := writeMultipartBody(mw, req, &ProgressReader{Reader: content, Callback: progress.update})
		if err == nil {
			progress.finish()
		}
		_ = pw.CloseWithError(err)
	}()

	httpReq, err := u.http.NewRequest(ctx, http.MethodPost, u.uploadPath, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		<-writeDone
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := u.http.Do("upload", httpReq)

	// Unblock the writer if the server answered before reading the whole body
	_ = pr.CloseWithError(io.ErrClosedPipe)
	<-writeDone

	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var ref models.TaskReference
	if err := json.NewDecoder(resp.Body).Decode(&ref); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, lib.ErrCancelled("upload", ctxErr)
		}
		return nil, lib.ErrInvalidResponse("upload", resp.StatusCode, err)
	}

	if strings.TrimSpace(ref.DocumentID) == "" {
		return nil, lib.ErrMissingReference("upload", "upload response missing document_id")
	}

	u.logger.Info("Document uploaded", "document_id", ref.DocumentID, "file", req.FileName)

	return &ref, nil
}

func writeMultipartBody(mw *multipart.Writer, req models.SubmissionRequest, content io.Reader) error {
	if err := mw.WriteField(fieldLanguage, string(req.Language)); err != nil {
		return err
	}
	if err := mw.WriteField(fieldAnalysisMode, string(req.Mode)); err != nil {
		return err
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fieldFile, escapeQuotes(req.FileName)))
	header.Set("Content-Type", req.ContentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	return mw.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// progressTracker turns byte counts into percentages reported only on change.
// File bytes map to [0,99]; 100 is reserved for a fully written body.
type progressTracker struct {
	total    int64
	last     int
	callback func(int)
}

func newProgressTracker(total int64, callback func(int)) *progressTracker {
	return &progressTracker{total: total, last: -1, callback: callback}
}

func (t *progressTracker) update(sent int64) {
	if t.total <= 0 {
		return
	}
	pct := int(sent * 100 / t.total)
	if pct > 99 {
		pct = 99
	}
	t.emit(pct)
}

func (t *progressTracker) finish() {
	t.emit(100)
}

func (t *progressTracker) emit(pct int) {
	if pct <= t.last {
		return
	}
	t.last = pct
	if t.callback != nil {
		t.callback(pct)
	}
}
