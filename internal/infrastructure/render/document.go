package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/localprint/bridge/internal/domain/printing"
)

// The tag name must be followed by whitespace or the closing bracket so that
// <header> is not mistaken for <head>.
var (
	headTagRe = regexp.MustCompile(`(?i)<head(\s[^>]*)?>`)
	htmlTagRe = regexp.MustCompile(`(?i)<html(\s[^>]*)?>`)
)

// DecodeContent decodes a base64 HTML payload. Payloads that are not valid
// base64 are passed through untouched, so callers may submit raw HTML.
func DecodeContent(payload string) []byte {
	if data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload)); err == nil {
		return data
	}
	return []byte(payload)
}

// pageStyle returns the style element that pins the CSS page box to the
// physical paper size.
func pageStyle(size printing.PageSize, orientation printing.Orientation) []byte {
	w, h := size.DimensionsFor(orientation)
	return []byte(fmt.Sprintf("<style>@page { size: %dmm %dmm; margin: 0; }</style>", w, h))
}

// PrepareDocument injects the page-size style rule into the document. The
// rule lands right after an opening <head> tag when one exists; documents
// with an <html> tag but no head get one synthesized; bare fragments are
// wrapped in a minimal full document. Apart from the insertion the original
// bytes are preserved.
func PrepareDocument(html []byte, size printing.PageSize, orientation printing.Orientation) []byte {
	style := pageStyle(size, orientation)

	if loc := headTagRe.FindIndex(html); loc != nil {
		var buf bytes.Buffer
		buf.Grow(len(html) + len(style))
		buf.Write(html[:loc[1]])
		buf.Write(style)
		buf.Write(html[loc[1]:])
		return buf.Bytes()
	}

	if loc := htmlTagRe.FindIndex(html); loc != nil {
		var buf bytes.Buffer
		buf.Write(html[:loc[1]])
		buf.WriteString("<head>")
		buf.Write(style)
		buf.WriteString("</head>")
		buf.Write(html[loc[1]:])
		return buf.Bytes()
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html><html><head><meta charset=\"UTF-8\">")
	buf.Write(style)
	buf.WriteString("</head><body>")
	buf.Write(html)
	buf.WriteString("</body></html>")
	return buf.Bytes()
}
