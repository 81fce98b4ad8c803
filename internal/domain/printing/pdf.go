package printing

import "bytes"

var pdfMagic = []byte("%PDF-")

// LooksLikePDF reports whether data starts with the PDF magic bytes. Used to
// enrich the audit line, never to reject content: the spooler's own PDF
// filter is the authority on what it can print.
func LooksLikePDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// EstimatePageCount estimates the page count from raw PDF data by counting
// "/Type /Page" page objects. The count includes the parent "/Type /Pages"
// nodes, which are subtracted again. Returns at least 1 for anything that
// looks like a PDF.
func EstimatePageCount(data []byte) int {
	count := bytes.Count(data, []byte("/Type /Page"))
	parents := bytes.Count(data, []byte("/Type /Pages"))
	count -= parents
	if count < 1 {
		if LooksLikePDF(data) {
			return 1
		}
		return 0
	}
	return count
}
