package pdf

import (
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

var ErrEmptyDocument = errors.New("pdf: document has no pages")

func init() {
	//設定ファイルをユーザーディレクトリに作らせない
	api.DisableConfigDir()
}

// pdfcpuでページ数を数える
type PageCounter struct{}

func NewPageCounter() PageCounter { return PageCounter{} }

func (PageCounter) CountPages(r io.ReadSeeker) (int, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("pdf: rewind: %w", err)
	}
	n, err := api.PageCount(r, nil)
	if err != nil {
		return 0, fmt.Errorf("pdf: page count: %w", err)
	}
	if n <= 0 {
		return 0, ErrEmptyDocument
	}
	return n, nil
}
