// Package extract locates tagged regions in raw documentation source and
// walks them in document order, carrying the ambient distro and path
// context that each code region is translated under.
package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/exp/maps"

	apperr "github.com/openstack-archive/rst2bash/internal/errors"
	"github.com/openstack-archive/rst2bash/internal/logfields"
	"github.com/openstack-archive/rst2bash/internal/region"
	"github.com/openstack-archive/rst2bash/internal/translate"
)

// Category identifies which concrete tag category owns a traversal entry.
type Category string

const (
	CategoryCode   Category = "code"
	CategoryDistro Category = "distro"
	CategoryPath   Category = "path"
)

// Engine builds the per-category region indices for one document and
// performs the ordered, stateful traversal over them. One Engine per
// document; no state crosses a document boundary.
type Engine struct {
	doc            string
	defaultDistros []string

	code   *region.Index
	distro *region.Index
	path   *region.Index
	all    *region.Index
}

// entry is one element of the merged traversal list: an umbrella start
// span tagged with its owning category and the ordinal inside it. Tagging
// at construction removes repeated membership probing during traversal.
type entry struct {
	category Category
	ordinal  int
	span     region.Span
}

// ambient is the traversal state carried across sibling regions.
// distros nil means "no restriction": the default distro set applies.
// path persists across code regions until overwritten.
type ambient struct {
	distros   []string
	path      string
	distroEnd int
}

// NewEngine creates an engine for one raw document. The default distro
// set is injected configuration, applied to code regions outside any
// distro-restriction scope.
func NewEngine(doc string, defaultDistros []string) *Engine {
	return &Engine{doc: doc, defaultDistros: defaultDistros}
}

// BuildIndices scans the document once per pattern and builds the
// per-category indices. Count mismatches for delimited categories are
// diagnosed here with positional detail but do not abort: the traversal
// surfaces them as missing-tag failures when it actually runs off an index.
func (e *Engine) BuildIndices() {
	e.all = region.New(findSpans(reAllBlocks, e.doc), nil)
	e.code = region.New(findCodeStarts(e.doc), findSpans(reCodeEnd, e.doc))
	e.distro = region.New(findSpans(reDistroStart, e.doc), findSpans(reDistroEnd, e.doc))
	e.path = region.New(findSpans(rePath, e.doc), nil)

	e.reportStructure(CategoryCode, e.code, reCodeStart, reCodeEnd)
	e.reportStructure(CategoryDistro, e.distro, reDistroStart, reDistroEnd)
}

// Index returns the built index for a category; the umbrella index is not
// addressable. Mostly useful for discovery-style reporting.
func (e *Engine) Index(c Category) *region.Index {
	switch c {
	case CategoryCode:
		return e.code
	case CategoryDistro:
		return e.distro
	default:
		return e.path
	}
}

// RegionCount returns the number of traversal entries in the document.
func (e *Engine) RegionCount() int { return e.all.StartCount() }

// reportStructure logs a line-numbered report of a delimited category's
// open and close tags, at error level when the counts disagree.
func (e *Engine) reportStructure(c Category, ix *region.Index, start, end *regexp.Regexp) {
	lines := make(map[int]string, ix.StartCount()+ix.EndCount())
	for cur := ix.Starts(); ; {
		s, ok := cur.Next()
		if !ok {
			break
		}
		lines[e.lineNumber(s.Start)] = "start block"
	}
	for i := 0; i < ix.EndCount(); i++ {
		lines[e.lineNumber(ix.EndAt(i).Start)] = "end block"
	}

	lineNumbers := maps.Keys(lines)
	slices.Sort(lineNumbers)

	var report []string
	for _, ln := range lineNumbers {
		report = append(report, fmt.Sprintf("%s (line %d)", lines[ln], ln))
	}

	attrs := []any{
		logfields.Category(string(c)),
		slog.String("start_pattern", start.String()),
		slog.String("end_pattern", end.String()),
		slog.String("report", strings.Join(report, "; ")),
	}
	if ix.Balanced() {
		slog.Debug("tag structure", attrs...)
		return
	}
	mismatch := apperr.StructureMismatch(string(c), ix.StartCount(), ix.EndCount())
	slog.Error("tag structure mismatch", append(attrs, logfields.Error(mismatch))...)
}

// lineNumber converts a byte offset into a 1-based line number.
func (e *Engine) lineNumber(offset int) int {
	return strings.Count(e.doc[:offset], "\n") + 1
}

// Extract traverses the regions in document order and returns the
// translated units. Exhaustion of the traversal list is the normal stop
// condition; running off a category index mid-region is a missing-tag
// failure that aborts this document only.
func (e *Engine) Extract() ([]translate.Unit, error) {
	entries, err := e.mergeEntries()
	if err != nil {
		return nil, err
	}

	state := ambient{distroEnd: -1}
	var units []translate.Unit

	for _, en := range entries {
		// Ambient distro restriction expires exactly at its closing
		// tag's end offset, not at the next tag of any kind. A region
		// beginning at or after that offset sees no restriction.
		if en.span.Start >= state.distroEnd {
			state.distros = nil
		}

		switch en.category {
		case CategoryCode:
			if en.ordinal >= e.code.EndCount() {
				return nil, apperr.MissingTags(string(CategoryCode), en.ordinal).
					WithContext("line", e.lineNumber(en.span.Start))
			}
			open := e.code.StartAt(en.ordinal)
			closing := e.code.EndAt(en.ordinal)

			content := strings.TrimSpace(e.doc[open.End:closing.Start])
			label := e.doc[open.Start:open.End]

			distros := state.distros
			if distros == nil {
				distros = e.defaultDistros
			}
			unit, terr := translate.Translate(content, label, distros, state.path)
			if terr != nil {
				return nil, terr
			}
			units = append(units, unit)

		case CategoryPath:
			text := e.doc[en.span.Start:en.span.End]
			state.path = strings.TrimSpace(strings.Replace(text, ".. path", "", 1))

		case CategoryDistro:
			if en.ordinal >= e.distro.EndCount() {
				return nil, apperr.MissingTags(string(CategoryDistro), en.ordinal).
					WithContext("line", e.lineNumber(en.span.Start))
			}
			text := e.doc[en.span.Start:en.span.End]
			state.distros = parseDistros(text)
			state.distroEnd = e.distro.EndAt(en.ordinal).End
		}
	}

	return units, nil
}

// mergeEntries correlates each umbrella start span with its owning
// concrete category, in fixed precedence order (code, distro, path).
// A span owned by no category is an unrecognized block: per-document fatal.
func (e *Engine) mergeEntries() ([]entry, error) {
	var entries []entry
	for cur := e.all.Starts(); ; {
		s, ok := cur.Next()
		if !ok {
			break
		}
		matched := false
		for _, c := range []struct {
			category Category
			index    *region.Index
		}{
			{CategoryCode, e.code},
			{CategoryDistro, e.distro},
			{CategoryPath, e.path},
		} {
			if pos, found := c.index.Position(s); found {
				entries = append(entries, entry{category: c.category, ordinal: pos, span: s})
				matched = true
				break
			}
		}
		if !matched {
			return nil, apperr.UnrecognizedBlock(s.Start).
				WithContext("line", e.lineNumber(s.Start)).
				WithContext("text", strings.TrimSpace(e.doc[s.Start:s.End]))
		}
	}
	return entries, nil
}

var reOrSeparator = regexp.MustCompile(`\s+or\s+`)

// parseDistros extracts the distro names declared on an "only" opening
// tag, joined by the textual "or". A tag declaring no names returns nil
// so the default distro set applies to the enclosed regions.
func parseDistros(text string) []string {
	text = strings.Replace(text, ".. only::", "", 1)
	var distros []string
	for _, p := range reOrSeparator.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			distros = append(distros, p)
		}
	}
	return distros
}
