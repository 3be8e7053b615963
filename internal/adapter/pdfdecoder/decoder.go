// Package pdfdecoder adapts the ledongthuc/pdf reader to the domain's
// Document contract. The library recovers plain text positioned by row but
// exposes no table model, so decoded pages report zero tables; bulletin
// extraction rides on the text pass.
package pdfdecoder

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/couchcryptid/rainfall-etl/internal/domain"
)

// Opener opens bulletin PDFs from the local filesystem. It implements
// pipeline.DocumentOpener.
type Opener struct{}

// Open reads the whole document eagerly and returns an in-memory snapshot,
// so no file handle outlives the call. An unreadable file is the one hard
// failure the decoder owns; individual bad pages are skipped.
func (Opener) Open(path string) (domain.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []domain.Page
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		p := r.Page(pageNum)
		if p.V.IsNull() {
			continue
		}
		text, err := pageText(p)
		if err != nil {
			continue
		}
		pages = append(pages, textPage(text))
	}
	return memoryDocument(pages), nil
}

// pageText rebuilds line-oriented text from the page's positioned rows.
// GetPlainText flattens a page into one string; record parsing needs the
// row structure, so join each row's fragments with spaces and rows with
// newlines.
func pageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, word := range row.Content {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(word.S)
		}
	}
	return b.String(), nil
}

type memoryDocument []domain.Page

func (d memoryDocument) Pages() ([]domain.Page, error) { return d, nil }

type textPage string

func (p textPage) Text() string           { return string(p) }
func (p textPage) Tables() []domain.Table { return nil }
