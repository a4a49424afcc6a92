// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package document parses raw markdown-flavored text into a structural tree
// of sections, tables, and code blocks ahead of chunking.
package document

import "strings"

// Section is a heading-scoped region of the document. Offsets are character
// positions in the raw input covering the section's own content.
type Section struct {
	Level       int
	Heading     string
	Content     string
	Children    []*Section
	StartOffset int
	EndOffset   int
}

// Table is an extracted pipe-delimited table. The separator row below the
// header is discarded during parsing.
type Table struct {
	Headers []string
	Rows    [][]string
	Caption string
}

// CodeBlock is an extracted fenced code block.
type CodeBlock struct {
	Language string
	Code     string
}

// Document is the structured form of one raw input.
type Document struct {
	Sections   []*Section
	Tables     []Table
	CodeBlocks []CodeBlock
}

// scanner modes; mutually exclusive
type scanMode int

const (
	modeContent scanMode = iota
	modeCode
	modeTable
)

// Structure parses raw text in a single left-to-right scan. A fenced code
// marker toggles code mode and flushes the pending block; table rows
// accumulate until a non-table line is seen; a heading marker closes the
// current section and opens a new one. A document with no headings is
// wrapped in one synthetic top-level section.
func Structure(raw string) *Document {
	doc := &Document{}

	var (
		mode     scanMode
		flat     []*Section
		current  = &Section{Level: 1} // synthetic root until a heading is seen
		codeLang string
		codeRows []string
		tableRaw [][]string
		offset   int
	)
	current.StartOffset = 0

	flushCode := func() {
		doc.CodeBlocks = append(doc.CodeBlocks, CodeBlock{
			Language: codeLang,
			Code:     strings.Join(codeRows, "\n"),
		})
		codeLang = ""
		codeRows = nil
	}

	flushTable := func() {
		if len(tableRaw) == 0 {
			return
		}
		table := Table{Headers: tableRaw[0], Caption: current.Heading}
		// second row is the header separator; discard it
		if len(tableRaw) > 2 {
			table.Rows = tableRaw[2:]
		}
		doc.Tables = append(doc.Tables, table)
		tableRaw = nil
	}

	closeSection := func(end int) {
		current.EndOffset = end
		current.Content = strings.TrimSpace(current.Content)
		flat = append(flat, current)
	}

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lineStart := offset
		offset += len(line)
		if i < len(lines)-1 {
			offset++ // the newline
		}

		trimmed := strings.TrimSpace(line)

		if mode == modeCode {
			if strings.HasPrefix(trimmed, "```") {
				flushCode()
				mode = modeContent
			} else {
				codeRows = append(codeRows, line)
			}
			continue
		}

		if strings.HasPrefix(trimmed, "```") {
			if mode == modeTable {
				flushTable()
			}
			mode = modeCode
			codeLang = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			continue
		}

		if strings.HasPrefix(trimmed, "|") {
			mode = modeTable
			tableRaw = append(tableRaw, splitTableRow(trimmed))
			continue
		}
		if mode == modeTable {
			flushTable()
			mode = modeContent
		}

		if level, heading, ok := parseHeading(trimmed); ok {
			closeSection(lineStart)
			current = &Section{
				Level:       level,
				Heading:     heading,
				StartOffset: offset,
			}
			continue
		}

		current.Content += line + "\n"
	}

	// Flush anything still pending at end of input.
	if mode == modeCode {
		flushCode()
	}
	flushTable()
	closeSection(len(raw))

	doc.Sections = assemble(flat)
	return doc
}

// parseHeading recognizes a markdown heading of level 1-6.
func parseHeading(line string) (level int, heading string, ok bool) {
	if !strings.HasPrefix(line, "#") {
		return 0, "", false
	}
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level > 6 || level == len(line) || line[level] != ' ' {
		return 0, "", false
	}
	return level, strings.TrimSpace(line[level:]), true
}

// splitTableRow splits a pipe-delimited row into trimmed cells, dropping the
// empty cells produced by leading/trailing pipes.
func splitTableRow(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}

// assemble builds the section hierarchy from the flat scan order: pop the
// stack until the top level is strictly less than the new section's level,
// attach as child, else start a new root. Empty synthetic sections produced
// by leading headings are dropped.
func assemble(flat []*Section) []*Section {
	var roots []*Section
	var stack []*Section

	for _, section := range flat {
		if section.Heading == "" && section.Content == "" && len(flat) > 1 {
			continue
		}

		for len(stack) > 0 && stack[len(stack)-1].Level >= section.Level {
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			roots = append(roots, section)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, section)
		}
		stack = append(stack, section)
	}

	return roots
}
