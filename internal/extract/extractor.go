// Package extract turns the JS literal block of a textage source file into
// JSON text. A single forward pass finds the block start, transforms each
// interior line per the dataset's rules, and stops at the first end marker.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/papapumpkin/textage/internal/rules"
)

var (
	blankLine   = regexp.MustCompile(`^\s*$`)
	commentLine = regexp.MustCompile(`^//.*`)
)

// Block is the result of one extraction.
type Block struct {
	Text      string // assembled JSON document
	StartLine int    // 1-based line of the start marker
	EndLine   int    // 1-based line of the end marker
	Entries   int    // interior lines emitted
}

type state int

const (
	seeking state = iota
	capturing
	done
)

// Extract scans src for the dataset's block and returns it as JSON text. Input after
// the first end marker is ignored. It returns ErrNoBlock when the start marker
// never matches and ErrUnterminatedBlock when input runs out before the end
// marker.
func Extract(src string, spec rules.DatasetSpec) (Block, error) {
	var (
		st        = seeking
		open      string
		fragments []string
		block     Block
	)

	lines := strings.Split(src, "\n")
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		lineNo := i + 1

		switch st {
		case seeking:
			m := spec.BlockStart.FindStringSubmatchIndex(line)
			if m == nil {
				continue
			}
			open = submatch(line, m, 1)
			fragments = append(fragments, open)
			if trailing := submatch(line, m, 2); trailing != "" {
				fragments = append(fragments, trailing)
			}
			block.StartLine = lineNo
			st = capturing

		case capturing:
			if spec.BlockEnd.MatchString(line) {
				fragments = append(fragments, closing(open))
				block.EndLine = lineNo
				st = done
				break
			}
			if blankLine.MatchString(line) || commentLine.MatchString(line) {
				continue
			}
			out, err := TransformLine(line, spec.Shape, spec.Rules)
			if err != nil {
				return Block{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
			fragments = append(fragments, out)
			block.Entries++
		}

		if st == done {
			break
		}
	}

	switch st {
	case seeking:
		return Block{}, ErrNoBlock
	case capturing:
		return Block{}, fmt.Errorf("%w: opened at line %d", ErrUnterminatedBlock, block.StartLine)
	}

	block.Text = strings.Join(fragments, "\n")
	return block, nil
}

// submatch returns group n of a FindStringSubmatchIndex result, or "" when the
// group does not exist or did not participate.
func submatch(s string, m []int, n int) string {
	if 2*n+1 >= len(m) || m[2*n] < 0 {
		return ""
	}
	return s[m[2*n]:m[2*n+1]]
}

func closing(open string) string {
	switch open {
	case "{":
		return "}"
	case "[":
		return "]"
	}
	return ""
}
