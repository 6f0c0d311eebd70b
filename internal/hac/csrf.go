package hac

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	csrfParam         = "_csrf"
	defaultCSRFHeader = "X-CSRF-TOKEN"
)

type csrfToken struct {
	Header string
	Value  string
}

// extractCSRF reads the Spring Security meta tags every console page renders:
// <meta name="_csrf" content="..."> and <meta name="_csrf_header" content="...">.
func extractCSRF(body []byte) (csrfToken, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return csrfToken{}, ErrCSRFTokenNotFound
	}

	value, _ := doc.Find(`meta[name="_csrf"]`).First().Attr("content")
	value = strings.TrimSpace(value)
	if value == "" {
		return csrfToken{}, ErrCSRFTokenNotFound
	}

	header, _ := doc.Find(`meta[name="_csrf_header"]`).First().Attr("content")
	header = strings.TrimSpace(header)
	if header == "" {
		header = defaultCSRFHeader
	}
	return csrfToken{Header: header, Value: value}, nil
}
