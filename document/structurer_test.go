package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructureHeadings(t *testing.T) {
	raw := "# Title\n" +
		"Intro text.\n" +
		"## Install\n" +
		"Run the installer.\n" +
		"### Linux\n" +
		"Use the tarball.\n" +
		"## Usage\n" +
		"Call the binary.\n"

	doc := Structure(raw)

	require.Len(t, doc.Sections, 1)
	title := doc.Sections[0]
	assert.Equal(t, 1, title.Level)
	assert.Equal(t, "Title", title.Heading)
	assert.Equal(t, "Intro text.", title.Content)

	require.Len(t, title.Children, 2)
	install := title.Children[0]
	assert.Equal(t, "Install", install.Heading)
	assert.Equal(t, "Run the installer.", install.Content)
	require.Len(t, install.Children, 1)
	assert.Equal(t, "Linux", install.Children[0].Heading)

	usage := title.Children[1]
	assert.Equal(t, "Usage", usage.Heading)
	assert.Empty(t, usage.Children)
}

func TestStructureNoHeadings(t *testing.T) {
	raw := "Just a paragraph.\n\nAnd another one."
	doc := Structure(raw)

	require.Len(t, doc.Sections, 1)
	section := doc.Sections[0]
	assert.Equal(t, 1, section.Level)
	assert.Empty(t, section.Heading)
	assert.Contains(t, section.Content, "Just a paragraph.")
	assert.Contains(t, section.Content, "And another one.")
}

func TestStructureCodeBlocks(t *testing.T) {
	raw := "# API\n" +
		"Example:\n" +
		"```go\n" +
		"func main() {}\n" +
		"```\n" +
		"Done.\n"

	doc := Structure(raw)

	require.Len(t, doc.CodeBlocks, 1)
	assert.Equal(t, "go", doc.CodeBlocks[0].Language)
	assert.Equal(t, "func main() {}", doc.CodeBlocks[0].Code)

	// Code lines must not leak into section content.
	require.Len(t, doc.Sections, 1)
	assert.NotContains(t, doc.Sections[0].Content, "func main")
	assert.Contains(t, doc.Sections[0].Content, "Example:")
	assert.Contains(t, doc.Sections[0].Content, "Done.")
}

func TestStructureUnclosedCodeBlock(t *testing.T) {
	raw := "```python\nprint('hi')\n"
	doc := Structure(raw)

	require.Len(t, doc.CodeBlocks, 1)
	assert.Equal(t, "python", doc.CodeBlocks[0].Language)
	assert.Contains(t, doc.CodeBlocks[0].Code, "print('hi')")
}

func TestStructureTables(t *testing.T) {
	raw := "## Limits\n" +
		"| Name | Max |\n" +
		"|------|-----|\n" +
		"| Requests | 100 |\n" +
		"| Sessions | 10 |\n" +
		"After the table.\n"

	doc := Structure(raw)

	require.Len(t, doc.Tables, 1)
	table := doc.Tables[0]
	assert.Equal(t, []string{"Name", "Max"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Requests", "100"}, table.Rows[0])
	assert.Equal(t, []string{"Sessions", "10"}, table.Rows[1])
	assert.Equal(t, "Limits", table.Caption)

	// The separator row is discarded and rows don't leak into content.
	require.Len(t, doc.Sections, 1)
	assert.NotContains(t, doc.Sections[0].Content, "Requests")
	assert.Contains(t, doc.Sections[0].Content, "After the table.")
}

func TestStructureTableAtEOF(t *testing.T) {
	raw := "| A | B |\n|---|---|\n| 1 | 2 |"
	doc := Structure(raw)

	require.Len(t, doc.Tables, 1)
	assert.Equal(t, []string{"A", "B"}, doc.Tables[0].Headers)
	require.Len(t, doc.Tables[0].Rows, 1)
}

func TestStructureSiblingHierarchy(t *testing.T) {
	raw := "## First\na\n## Second\nb\n# Root\nc\n"
	doc := Structure(raw)

	// Two level-2 roots followed by a level-1 root.
	require.Len(t, doc.Sections, 3)
	assert.Equal(t, "First", doc.Sections[0].Heading)
	assert.Equal(t, "Second", doc.Sections[1].Heading)
	assert.Equal(t, "Root", doc.Sections[2].Heading)
}

func TestStructureOffsets(t *testing.T) {
	raw := "# A\nalpha\n# B\nbeta\n"
	doc := Structure(raw)

	require.Len(t, doc.Sections, 2)
	a, b := doc.Sections[0], doc.Sections[1]
	assert.Equal(t, "alpha", raw[a.StartOffset:a.EndOffset-1])
	assert.Less(t, a.EndOffset, b.StartOffset)
}

func TestParseHeading(t *testing.T) {
	cases := []struct {
		line    string
		level   int
		heading string
		ok      bool
	}{
		{"# Top", 1, "Top", true},
		{"###### Deep", 6, "Deep", true},
		{"####### Too deep", 0, "", false},
		{"#NoSpace", 0, "", false},
		{"plain", 0, "", false},
		{"## Trailing  ", 2, "Trailing", true},
	}
	for _, tc := range cases {
		level, heading, ok := parseHeading(tc.line)
		assert.Equal(t, tc.ok, ok, tc.line)
		if ok {
			assert.Equal(t, tc.level, level, tc.line)
			assert.Equal(t, tc.heading, heading, tc.line)
		}
	}
}
