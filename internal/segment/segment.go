// Package segment splits markdown text into retrievable chunks: fenced
// code blocks and contiguous prose paragraphs.
package segment

import "strings"

type scanState int

const (
	stateIdle scanState = iota
	stateCodeBlock
	stateProse
	stateCommentBlock
)

// Split segments text into ordered chunks with a line scanner. Fenced
// code blocks are emitted whole, both fence lines included. Regions
// between two "---" lines are front matter and are discarded, as are
// heading lines and blank lines outside a block. A code block or prose
// run still open at end of input is dropped rather than emitted
// partially.
func Split(text string) []string {
	var chunks []string
	var b strings.Builder
	state := stateIdle

	for _, line := range strings.Split(text, "\n") {
		switch state {
		case stateIdle:
			switch {
			case strings.HasPrefix(line, "```"):
				state = stateCodeBlock
				b.Reset()
				b.WriteString(line)
				b.WriteByte('\n')
			case strings.HasPrefix(line, "---"):
				state = stateCommentBlock
			case line != "" && !strings.HasPrefix(line, "#"):
				state = stateProse
				b.Reset()
				b.WriteString(line)
				b.WriteByte('\n')
			}
		case stateCodeBlock:
			b.WriteString(line)
			b.WriteByte('\n')
			if strings.HasPrefix(line, "```") {
				chunks = append(chunks, b.String())
				b.Reset()
				state = stateIdle
			}
		case stateCommentBlock:
			if strings.HasPrefix(line, "---") {
				state = stateIdle
			}
		case stateProse:
			if line == "" {
				chunks = append(chunks, b.String())
				b.Reset()
				state = stateIdle
			} else {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	}
	return chunks
}
