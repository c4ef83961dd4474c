package extract

import (
	"regexp"
	"strings"

	"github.com/openstack-archive/rst2bash/internal/region"
)

// Tag syntax recognized in documentation source. The umbrella pattern
// drives a single linear traversal; the concrete patterns locate each
// category's open and close tags.
var (
	reAllBlocks   = regexp.MustCompile(`\.\.\s(code-block::|only::|path)[a-z\s/].*`)
	reDistroStart = regexp.MustCompile(`\.\.\sonly::[\sa-z].*`)
	reDistroEnd   = regexp.MustCompile(`\.\.\sendonly\n`)
	reCodeStart   = regexp.MustCompile(`\.\.\scode-block::\s[a-z]*`)
	reCodeEnd     = regexp.MustCompile(`\.\.\send\n`)
	rePath        = regexp.MustCompile(`\.\.\spath\s.*`)
)

// closeKeyword is the content-kind spelling reserved for the code close
// tag. RE2 has no negative lookahead, so candidates declaring it are
// filtered after matching instead.
const closeKeyword = "end"

func findSpans(re *regexp.Regexp, doc string) []region.Span {
	var spans []region.Span
	for _, loc := range re.FindAllStringIndex(doc, -1) {
		spans = append(spans, region.Span{Start: loc[0], End: loc[1]})
	}
	return spans
}

// findCodeStarts matches code opening tags, excluding the closing-keyword
// variant so ".. code-block:: end" is never taken as an opening tag.
func findCodeStarts(doc string) []region.Span {
	var spans []region.Span
	for _, loc := range reCodeStart.FindAllStringIndex(doc, -1) {
		kind := doc[loc[0]:loc[1]]
		kind = strings.TrimSpace(kind[strings.LastIndex(kind, " ")+1:])
		if strings.HasPrefix(kind, closeKeyword) {
			continue
		}
		spans = append(spans, region.Span{Start: loc[0], End: loc[1]})
	}
	return spans
}
