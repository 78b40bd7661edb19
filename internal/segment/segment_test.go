package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitProseParagraphs(t *testing.T) {
	chunks := Split("# Title\n\nSome text\n\nMore text\n")
	require.Len(t, chunks, 2)
	assert.Equal(t, "Some text\n", chunks[0])
	assert.Equal(t, "More text\n", chunks[1])
}

func TestSplitCodeBlock(t *testing.T) {
	input := "Intro paragraph\n\n```go\nfunc main() {}\n\nfmt.Println(1)\n```\n\nOutro\n"
	chunks := Split(input)
	require.Len(t, chunks, 3)
	assert.Equal(t, "Intro paragraph\n", chunks[0])
	assert.Equal(t, "```go\nfunc main() {}\n\nfmt.Println(1)\n```\n", chunks[1])
	assert.Equal(t, "Outro\n", chunks[2])
}

func TestSplitFrontMatterDiscarded(t *testing.T) {
	input := "---\ntitle: hidden\nauthor: nobody\n---\n\nVisible text\n"
	chunks := Split(input)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Visible text\n", chunks[0])
	for _, c := range chunks {
		assert.NotContains(t, c, "hidden")
		assert.NotContains(t, c, "nobody")
	}
}

func TestSplitUnterminatedBlocksDropped(t *testing.T) {
	assert.Empty(t, Split("```\nnever closed\n"))
	// Prose with no trailing blank line or newline is dropped too.
	assert.Empty(t, Split("dangling prose"))
}

func TestSplitHeadingsAndBlanksSkipped(t *testing.T) {
	chunks := Split("# One\n## Two\n\n\n### Three\n")
	assert.Empty(t, chunks)
}

func TestSplitPreservesSourceOrder(t *testing.T) {
	input := "alpha\n\nbravo\n\n```\ncharlie\n```\n\ndelta\n\n"
	chunks := Split(input)
	require.Len(t, chunks, 4)
	// Each chunk's content must appear in the original after the previous one.
	pos := 0
	for _, c := range chunks {
		i := strings.Index(input[pos:], c)
		require.GreaterOrEqual(t, i, 0)
		pos += i
	}
}

func TestSplitEmptyInput(t *testing.T) {
	assert.Empty(t, Split(""))
}
