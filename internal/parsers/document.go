package parsers

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Normalize returns input as a parsed document.
//
// Documents are returned unchanged. Strings are taken as UTF-8 markup; byte slices and readers
// are decoded using the charset the markup declares. Input that cannot be read or has an
// unsupported type yields an empty document, which every layout rejects.
func Normalize(input any) *goquery.Document {
	switch v := input.(type) {
	case *goquery.Document:
		if v == nil {
			return emptyDocument()
		}
		return v
	case *html.Node:
		if v == nil {
			return emptyDocument()
		}
		return goquery.NewDocumentFromNode(v)
	case string:
		return fromReader(strings.NewReader(v))
	case []byte:
		return NormalizeContent(v, "")
	case io.Reader:
		return decode(v, "")
	default:
		return emptyDocument()
	}
}

// NormalizeContent parses body using the charset from contentType, falling back to
// the page's meta declaration and then to content sniffing.
func NormalizeContent(body []byte, contentType string) *goquery.Document {
	return decode(bytes.NewReader(body), contentType)
}

func decode(r io.Reader, contentType string) *goquery.Document {
	utf8, err := charset.NewReader(r, contentType)
	if err != nil {
		return emptyDocument()
	}
	return fromReader(utf8)
}

func fromReader(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return emptyDocument()
	}
	return doc
}

func emptyDocument() *goquery.Document {
	return goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
}
