// Package resume implements the resume mutation engine: editable-region
// parsing, bounded mutation application, base-template selection, and LaTeX
// compilation with rollback.
package resume

import "strings"

// Editable-region sentinel lines. The markers must appear alone on their
// line (surrounding whitespace ignored).
const (
	BeginMarker = "%%BEGIN_EDITABLE"
	EndMarker   = "%%END_EDITABLE"
)

// EditableRegion is a marker-delimited span of a document that automated
// mutation may alter. Line numbers are 1-based, inclusive, and refer to the
// original document; content excludes the marker lines themselves.
type EditableRegion struct {
	Content   string
	StartLine int
	EndLine   int
}

// ParseEditableRegions extracts all editable regions from a document.
//
// The parser is forgiving: an end marker outside any region is ignored, and
// a begin marker with no matching end absorbs the rest of the document into
// one region. Regions are returned in source order.
func ParseEditableRegions(texContent string) []EditableRegion {
	var regions []EditableRegion
	lines := strings.Split(texContent, "\n")

	inRegion := false
	regionStart := 0
	var regionLines []string

	for i, line := range lines {
		lineNum := i + 1
		switch strings.TrimSpace(line) {
		case BeginMarker:
			inRegion = true
			regionStart = lineNum + 1
			regionLines = nil
		case EndMarker:
			if inRegion {
				regions = append(regions, EditableRegion{
					Content:   strings.Join(regionLines, "\n"),
					StartLine: regionStart,
					EndLine:   lineNum - 1,
				})
				inRegion = false
			}
		default:
			if inRegion {
				regionLines = append(regionLines, line)
			}
		}
	}

	if inRegion {
		regions = append(regions, EditableRegion{
			Content:   strings.Join(regionLines, "\n"),
			StartLine: regionStart,
			EndLine:   len(lines),
		})
	}

	return regions
}
