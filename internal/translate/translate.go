// Package translate turns the raw text of one code region into shell
// statements. Three mutually exclusive content dialects are recognized:
// console command transcripts, ini-style configuration fragments, and
// opaque blocks injected verbatim into a target file.
package translate

import (
	"regexp"
	"strings"

	apperr "github.com/openstack-archive/rst2bash/internal/errors"
)

// Action identifies how a translated region's statements are applied.
type Action string

const (
	ActionConsole Action = "console"
	ActionConfig  Action = "config"
	ActionInject  Action = "inject"
)

// Unit is the result of translating one code region. Immutable after
// construction; consumed exactly once by the assembler.
type Unit struct {
	Distros    []string
	Action     Action
	Path       string
	Statements []string
}

var (
	reCommand = regexp.MustCompile(`[#$>].*`)
	reSection = regexp.MustCompile(`\[[a-zA-Z0-9_]+\]`)
)

// continuationMark temporarily replaces backslash-newline sequences so the
// line scanner treats a continued command as a single logical command. The
// sequence never occurs in documentation source.
const continuationMark = "&#10&#10&#13"

// Classify maps a code region's declared content-kind label to its action.
// Labels are matched by substring since the label carries the full opening
// tag text.
func Classify(label string) (Action, error) {
	switch {
	case strings.Contains(label, "console"):
		return ActionConsole, nil
	case strings.Contains(label, "apache"):
		return ActionInject, nil
	case strings.Contains(label, "ini"), strings.Contains(label, "conf"):
		return ActionConfig, nil
	default:
		return "", apperr.UnsupportedKind(strings.TrimSpace(label))
	}
}

// Translate converts one raw code region into a Unit carrying the ambient
// distro set and target path it was extracted under.
func Translate(content, label string, distros []string, path string) (Unit, error) {
	action, err := Classify(label)
	if err != nil {
		return Unit{}, err
	}

	var statements []string
	switch action {
	case ActionConsole:
		statements, err = parseConsole(content)
		if err != nil {
			return Unit{}, err
		}
	case ActionInject:
		statements = parseInject(content)
	case ActionConfig:
		statements = parseConfig(content)
	}

	return Unit{
		Distros:    distros,
		Action:     action,
		Path:       path,
		Statements: statements,
	}, nil
}

// parseConsole scans console transcripts. Each line starting with a prompt
// marker (#, $, >) opens a new logical command; the marker is replaced by
// its shell prefix. Backslash-newline continuations are preserved inside
// the resulting command.
func parseConsole(block string) ([]string, error) {
	block = strings.ReplaceAll(block, "mysql>", ">")
	block = strings.ReplaceAll(block, "\\\n", continuationMark)

	commands := []string{}
	for _, loc := range reCommand.FindAllStringIndex(block, -1) {
		cmd := strings.ReplaceAll(block[loc[0]:loc[1]], continuationMark, "\\\n")
		prefix, err := shellOperator(cmd[0])
		if err != nil {
			return nil, err
		}
		commands = append(commands, prefix+strings.TrimSpace(cmd[1:]))
	}
	return commands, nil
}

// shellOperator maps a prompt marker to its command prefix:
//
//	# -> root shell -> sudo
//	$ -> user shell -> no prefix
//	> -> database prompt -> mysql_exec
func shellOperator(op byte) (string, error) {
	switch op {
	case '#':
		return "sudo ", nil
	case '$':
		return "", nil
	case '>':
		return "mysql_exec ", nil
	default:
		return "", apperr.UnsupportedOperator(string(op))
	}
}

// parseInject wraps the whole region as a single statement with the
// heredoc terminator appended. No line-level interpretation.
func parseInject(block string) []string {
	return []string{block + "\nEOL\n"}
}

// parseConfig walks configuration fragments line by line. A bracketed
// identifier switches the current section; assignment lines under it emit
// "<section> <key> <value>" entries. Comments and anything else are skipped.
func parseConfig(block string) []string {
	section := ""
	parsed := []string{}
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case reSection.MatchString(line):
			section = line[1 : len(line)-1]
		case strings.Contains(line, "=") && !strings.HasPrefix(line, "#"):
			parsed = append(parsed, strings.TrimSpace(section+" "+strings.ReplaceAll(line, "=", " ")))
		}
	}
	return parsed
}
