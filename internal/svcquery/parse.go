package svcquery

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Field names used in parse errors.
const (
	FieldServiceName = "SERVICE_NAME"
	FieldDisplayName = "DISPLAY_NAME"
	FieldState       = "STATE"
	FieldPID         = "PID"
)

// ErrParseFailure is wrapped by every listing parse error.
var ErrParseFailure = errors.New("svcquery: malformed listing")

// ParseError identifies the block and field that did not match.
type ParseError struct {
	Block int
	Field string
	Text  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("svcquery: block %d: missing or malformed %s", e.Block, e.Field)
}

func (e *ParseError) Unwrap() error {
	return ErrParseFailure
}

var (
	blockSeparator = regexp.MustCompile(`(?:\r\n|\n)(?:\r\n|\n)`)

	serviceNameLine = regexp.MustCompile(`^SERVICE_NAME:\s+(\S.*?)\s*$`)
	displayNameLine = regexp.MustCompile(`^DISPLAY_NAME:\s+(\S.*?)\s*$`)
	stateLine       = regexp.MustCompile(`^\s*STATE\s+:\s+(\d+)(?:\s|$)`)
	pidLine         = regexp.MustCompile(`^\s*PID\s+:\s+(\d+)(?:\s|$)`)
)

// ParseListing parses the full output of `sc queryex type=service state=all`.
// Blocks are separated by a blank line. A block that does not match the
// expected grammar fails the whole listing; no partial result is returned.
func ParseListing(text string) ([]ServiceRecord, error) {
	blocks := SplitBlocks(text)
	records := make([]ServiceRecord, 0, len(blocks))
	for i, block := range blocks {
		rec, err := parseBlock(i, block)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// SplitBlocks splits a listing on blank-line boundaries and drops fragments
// that are empty or whitespace only. Surrounding line breaks are trimmed.
func SplitBlocks(text string) []string {
	var blocks []string
	for _, frag := range blockSeparator.Split(text, -1) {
		if strings.TrimSpace(frag) == "" {
			continue
		}
		blocks = append(blocks, strings.Trim(frag, "\r\n"))
	}
	return blocks
}

func parseBlock(idx int, block string) (ServiceRecord, error) {
	lines := splitLines(block)

	nameAt, name, err := extractServiceName(idx, block, lines)
	if err != nil {
		return ServiceRecord{}, err
	}
	displayName, err := extractDisplayName(idx, block, lines, nameAt)
	if err != nil {
		return ServiceRecord{}, err
	}
	state, err := extractNumber(idx, block, lines, stateLine, FieldState)
	if err != nil {
		return ServiceRecord{}, err
	}
	pid, err := extractNumber(idx, block, lines, pidLine, FieldPID)
	if err != nil {
		return ServiceRecord{}, err
	}

	return ServiceRecord{
		Name:        name,
		DisplayName: displayName,
		StateCode:   State(state),
		ProcessID:   pid,
	}, nil
}

func splitLines(block string) []string {
	lines := strings.Split(block, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func extractServiceName(idx int, block string, lines []string) (int, string, error) {
	for i, l := range lines {
		if m := serviceNameLine.FindStringSubmatch(l); m != nil {
			return i, m[1], nil
		}
	}
	return 0, "", &ParseError{Block: idx, Field: FieldServiceName, Text: block}
}

// extractDisplayName requires DISPLAY_NAME on the line right after
// SERVICE_NAME.
func extractDisplayName(idx int, block string, lines []string, nameAt int) (string, error) {
	if nameAt+1 < len(lines) {
		if m := displayNameLine.FindStringSubmatch(lines[nameAt+1]); m != nil {
			return m[1], nil
		}
	}
	return "", &ParseError{Block: idx, Field: FieldDisplayName, Text: block}
}

func extractNumber(idx int, block string, lines []string, re *regexp.Regexp, field string) (int, error) {
	for _, l := range lines {
		m := re.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			break
		}
		return n, nil
	}
	return 0, &ParseError{Block: idx, Field: field, Text: block}
}
