package output

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/PuerkitoBio/goquery"
)

// FileOverlay writes a copy of a page with the results panel appended to its
// body.
type FileOverlay struct {
	Path string
	Page func() []byte
}

func (f FileOverlay) Show(_ context.Context, endpoints []string) error {
	var page []byte
	if f.Page != nil {
		page = f.Page()
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}
	doc.Find("body").AppendHtml(PanelHTML(endpoints))
	markup, err := doc.Html()
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := os.WriteFile(f.Path, []byte(markup), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
