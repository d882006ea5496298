// Package pagecount estimates the number of pages in a PDF by scanning for
// page object markers. It is a heuristic and never fails: anything it cannot
// read or recognise counts as a single page.
package pagecount

import (
	"io"
	"regexp"

	"github.com/gofiber/fiber/v2/log"
)

// pageMarker matches "/Type /Page" with any whitespace between the tokens.
// Matches followed by 's' are the "/Type /Pages" root and are skipped in Count.
var pageMarker = regexp.MustCompile(`/Type\s*/Page`)

// Count returns the number of page objects in pdf, or 1 when none are found.
func Count(pdf []byte) int {
	n := 0
	for _, loc := range pageMarker.FindAllIndex(pdf, -1) {
		if end := loc[1]; end < len(pdf) && pdf[end] == 's' {
			continue
		}
		n++
	}
	if n == 0 {
		return 1
	}
	return n
}

// CountReader drains r and counts its pages. A read error is logged and
// counted as a single page.
func CountReader(r io.Reader) int {
	if r == nil {
		log.Warn("[PageCounter] nil reader, assuming 1 page")
		return 1
	}
	data, err := io.ReadAll(r)
	if err != nil {
		log.Warnf("[PageCounter] could not read PDF stream, assuming 1 page: %v", err)
		return 1
	}
	return Count(data)
}
