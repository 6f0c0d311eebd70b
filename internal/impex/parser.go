package impex

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors of the console markup. These are a fixed contract with the
// server-rendered pages.
const (
	CommunicationErrorSelector = ".error"
	DataErrorSelector          = ".impexResult pre"
	DownloadLinkSelector       = "#downloadExportResultData a"
)

// ResponseParser extracts the parts of a console page the operations act on.
// Implementations never fail: missing markup yields empty results.
type ResponseParser interface {
	CommunicationErrors(html string) []string
	DataError(html string) string
	DownloadLinks(html string) []string
}

// ParsedResponse holds everything extracted from one page.
type ParsedResponse struct {
	CommunicationErrors []string
	DataError           string
	DownloadLinks       []string
}

// HTMLParser is the goquery backed ResponseParser.
type HTMLParser struct{}

var _ ResponseParser = HTMLParser{}

func (p HTMLParser) CommunicationErrors(html string) []string {
	return communicationErrors(parseHTMLDocument(html))
}

func (p HTMLParser) DataError(html string) string {
	return dataError(parseHTMLDocument(html))
}

func (p HTMLParser) DownloadLinks(html string) []string {
	return downloadLinks(parseHTMLDocument(html))
}

// Parse extracts all three parts from a single parse of html.
func (p HTMLParser) Parse(html string) ParsedResponse {
	doc := parseHTMLDocument(html)
	return ParsedResponse{
		CommunicationErrors: communicationErrors(doc),
		DataError:           dataError(doc),
		DownloadLinks:       downloadLinks(doc),
	}
}

// parseHTMLDocument returns nil when the input cannot be read; the html
// tokenizer itself accepts any byte sequence.
func parseHTMLDocument(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return doc
}

func communicationErrors(doc *goquery.Document) []string {
	out := []string{}
	if doc == nil {
		return out
	}
	doc.Find(CommunicationErrorSelector).Each(func(_ int, sel *goquery.Selection) {
		if text := normalizeSpace(sel.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

// dataError joins the text of every matching block; the console renders at
// most one.
func dataError(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	var parts []string
	doc.Find(DataErrorSelector).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

func downloadLinks(doc *goquery.Document) []string {
	out := []string{}
	if doc == nil {
		return out
	}
	doc.Find(DownloadLinkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		if href = strings.TrimSpace(href); href != "" {
			out = append(out, href)
		}
	})
	return out
}

// normalizeSpace trims and collapses internal whitespace runs.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
