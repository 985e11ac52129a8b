package httpclient

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxSnippetBytes = 512

// Summary returns a short, log-friendly rendering of a response body.
// HTML error pages are reduced to their title and first heading.
func Summary(resp Response) string {
	if resp == nil {
		return ""
	}
	body := resp.Body()
	if isHTML(resp.Header().Get("Content-Type"), body) {
		if s := htmlSummary(body); s != "" {
			return s
		}
	}
	return snippet(body)
}

func isHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(body))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

func htmlSummary(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	heading := strings.TrimSpace(doc.Find("h1").First().Text())
	switch {
	case title != "" && heading != "" && title != heading:
		return title + ": " + heading
	case title != "":
		return title
	default:
		return heading
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "<empty>"
	}
	if len(s) > maxSnippetBytes {
		return s[:maxSnippetBytes] + "..."
	}
	return s
}
