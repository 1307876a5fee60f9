package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"printshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

const mb = 1 << 20

// ルートごとのボディ上限（ファイル上限の合計 + フォーム項目分）
const (
	jsonBodyLimit          = "1M"
	orderCreateBodyLimit   = "21M"
	profileImageBodyLimit  = "6M"
	storeRegisterBodyLimit = "40M"
)

// アップロードの制限
type uploadRule struct {
	maxBytes  int64
	allowPDF  bool
	allowImg  bool
	kindLabel string
}

var (
	pdfUpload   = uploadRule{maxBytes: 20 * mb, allowPDF: true, kindLabel: "a PDF"}
	kycUpload   = uploadRule{maxBytes: 10 * mb, allowPDF: true, allowImg: true, kindLabel: "an image or PDF"}
	imageUpload = uploadRule{maxBytes: 5 * mb, allowImg: true, kindLabel: "an image"}
)

type openedFile struct {
	file   *usecase.UploadedFile
	closer io.Closer
}

type uploads []openedFile

func (u uploads) Close() {
	for _, f := range u {
		_ = f.closer.Close()
	}
}

// multipartのファイルを開いて形式とサイズを確認する。無ければnil
func (u *uploads) open(c echo.Context, field string, rule uploadRule, required bool) (*usecase.UploadedFile, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			if required {
				return nil, usecase.Validation(
					"Validation failed: "+field+" file is required",
					usecase.FieldError{Field: field, Message: field + " file is required"},
				)
			}
			return nil, nil
		}
		return nil, usecase.Validation("Invalid multipart form", usecase.FieldError{Field: field, Message: err.Error()})
	}

	if fh.Size > rule.maxBytes {
		return nil, usecase.Validation(
			"File too large",
			usecase.FieldError{Field: field, Message: fmt.Sprintf("%s must not exceed %d MB", field, rule.maxBytes/mb)},
		)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, usecase.Internal(fmt.Errorf("open upload %s: %w", field, err))
	}

	contentType, err := sniff(f)
	if err != nil {
		_ = f.Close()
		return nil, usecase.Internal(fmt.Errorf("read upload %s: %w", field, err))
	}
	if !rule.accepts(contentType) {
		_ = f.Close()
		return nil, usecase.Validation(
			"Invalid file type",
			usecase.FieldError{Field: field, Message: fmt.Sprintf("%s must be %s", field, rule.kindLabel)},
		)
	}

	uf := &usecase.UploadedFile{
		Name:        fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        f,
	}
	*u = append(*u, openedFile{file: uf, closer: f})
	return uf, nil
}

// 拡張子やヘッダーは信用せず先頭バイトで判定する
func sniff(f multipart.File) (string, error) {
	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	ct := http.DetectContentType(head[:n])
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return ct, nil
}

func (r uploadRule) accepts(contentType string) bool {
	if r.allowPDF && contentType == "application/pdf" {
		return true
	}
	return r.allowImg && strings.HasPrefix(contentType, "image/")
}
