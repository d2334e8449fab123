// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package crashui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// markdownParser is initialized once and reused. The parser
// configuration never changes and the goldmark Parser is safe to
// share; parsing state is per Parse call.
var (
	markdownParser     goldmark.Markdown
	markdownParserOnce sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParser = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownParser
}

// wrapBreakpoints are the characters ansi.Wrap may break lines at.
const wrapBreakpoints = " ,.;-+|"

// renderTerminalMarkdown parses markdown and renders it as styled
// terminal output at the given width. Soft line breaks become spaces
// so hard-wrapped note text reflows at any pane width; code blocks,
// lists, and blockquotes keep their structure.
func renderTerminalMarkdown(input string, theme Theme, width int) string {
	if input == "" {
		return ""
	}
	source := []byte(input)
	document := getMarkdownParser().Parser().Parse(text.NewReader(source))

	// Force the ANSI256 profile: this output always targets a
	// terminal (the bubbletea viewer), and auto-detection would strip
	// colors under tests and pipes. SetColorProfile is needed because
	// the renderer otherwise re-detects from the environment.
	lipRenderer := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	lipRenderer.SetColorProfile(termenv.ANSI256)

	renderer := &markdownRenderer{
		source:      source,
		theme:       theme,
		width:       width,
		lipRenderer: lipRenderer,
		// Start "blank" so the first block emits no leading newlines.
		trailingNewlines: 2,
	}
	ast.Walk(document, renderer.walk)

	return strings.TrimRight(renderer.output.String(), "\n")
}

// markdownRenderer walks a goldmark AST and produces styled terminal
// text. It uses a direct ast.Walk rather than goldmark's renderer
// interface because terminal rendering needs accumulate-then-wrap
// semantics: inline content collects in a buffer and gets word-wrapped
// as a unit when its containing block closes.
type markdownRenderer struct {
	source []byte
	theme  Theme
	width  int

	output strings.Builder

	// Inline accumulator, flushed with word-wrap when the containing
	// block closes.
	inline strings.Builder

	// Prefix stack for nested containers (blockquotes, list items).
	prefixes    []prefixLevel
	linePrefix  string
	prefixWidth int

	// Pending bullet: replaces the prefix for the next emitted line
	// only. Set when a list item opens.
	pendingBullet string

	// Inline style depth counters; counters rather than booleans so
	// nested emphasis unwinds correctly.
	boldDepth   int
	italicDepth int
	strikeDepth int

	listStack []listState

	lipRenderer *lipgloss.Renderer

	// Trailing newlines currently at the end of output, for blank
	// line management between blocks.
	trailingNewlines int
}

type prefixLevel struct {
	text  string
	width int
}

type listState struct {
	ordered bool
	counter int
	tight   bool
}

func (renderer *markdownRenderer) style() lipgloss.Style {
	return renderer.lipRenderer.NewStyle()
}

// contentWidth is the wrap width after subtracting nesting prefixes,
// clamped so degenerate panes still wrap sanely.
func (renderer *markdownRenderer) contentWidth() int {
	width := renderer.width - renderer.prefixWidth
	if width < 10 {
		width = 10
	}
	return width
}

func (renderer *markdownRenderer) pushPrefix(text string, width int) {
	renderer.prefixes = append(renderer.prefixes, prefixLevel{text: text, width: width})
	renderer.linePrefix += text
	renderer.prefixWidth += width
}

func (renderer *markdownRenderer) popPrefix() {
	if len(renderer.prefixes) == 0 {
		return
	}
	top := renderer.prefixes[len(renderer.prefixes)-1]
	renderer.prefixes = renderer.prefixes[:len(renderer.prefixes)-1]
	renderer.linePrefix = renderer.linePrefix[:len(renderer.linePrefix)-len(top.text)]
	renderer.prefixWidth -= top.width
}

func (renderer *markdownRenderer) inTightList() bool {
	return len(renderer.listStack) > 0 && renderer.listStack[len(renderer.listStack)-1].tight
}

func (renderer *markdownRenderer) write(s string) {
	if s == "" {
		return
	}
	renderer.output.WriteString(s)

	trailing := 0
	for index := len(s) - 1; index >= 0 && s[index] == '\n'; index-- {
		trailing++
	}
	if trailing == len(s) {
		renderer.trailingNewlines += trailing
	} else {
		renderer.trailingNewlines = trailing
	}
}

func (renderer *markdownRenderer) ensureNewline() {
	if renderer.trailingNewlines < 1 {
		renderer.write("\n")
	}
}

func (renderer *markdownRenderer) ensureBlankLine() {
	for renderer.trailingNewlines < 2 {
		renderer.write("\n")
	}
}

// prefixed prepends line prefixes to every line of content. The first
// line consumes the pending bullet when one is set.
func (renderer *markdownRenderer) prefixed(content string) string {
	lines := strings.Split(content, "\n")
	var result strings.Builder
	for index, line := range lines {
		if index == 0 && renderer.pendingBullet != "" {
			result.WriteString(renderer.pendingBullet)
			renderer.pendingBullet = ""
		} else {
			result.WriteString(renderer.linePrefix)
		}
		result.WriteString(line)
		if index < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// flushInline word-wraps the accumulated inline content to the
// current width and applies line prefixes. Resets the buffer.
func (renderer *markdownRenderer) flushInline() string {
	content := renderer.inline.String()
	renderer.inline.Reset()
	if content == "" {
		return ""
	}
	return renderer.prefixed(ansi.Wrap(content, renderer.contentWidth(), wrapBreakpoints))
}

// styledText applies the current inline style depth to a text span.
func (renderer *markdownRenderer) styledText(content string) string {
	style := renderer.style().Foreground(renderer.theme.NormalText)
	if renderer.boldDepth > 0 {
		style = style.Bold(true)
	}
	if renderer.italicDepth > 0 {
		style = style.Italic(true)
	}
	if renderer.strikeDepth > 0 {
		style = style.Strikethrough(true)
	}
	return style.Render(content)
}

// inlineContent renders a node's children into a string, saving and
// restoring the inline buffer and style state around the walk.
func (renderer *markdownRenderer) inlineContent(node ast.Node) string {
	savedInline := renderer.inline.String()
	savedBold, savedItalic, savedStrike := renderer.boldDepth, renderer.italicDepth, renderer.strikeDepth

	renderer.inline.Reset()
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		ast.Walk(child, renderer.walk)
	}
	result := renderer.inline.String()

	renderer.inline.Reset()
	renderer.inline.WriteString(savedInline)
	renderer.boldDepth, renderer.italicDepth, renderer.strikeDepth = savedBold, savedItalic, savedStrike
	return result
}

// highlightCode syntax-highlights code with chroma, falling back to
// faint plain text on unknown languages or highlighter errors.
func (renderer *markdownRenderer) highlightCode(code, language string) string {
	if language == "" {
		return renderer.style().Foreground(renderer.theme.FaintText).Render(code)
	}
	var highlighted strings.Builder
	if err := quick.Highlight(&highlighted, code, language, "terminal256", "monokai"); err != nil {
		return renderer.style().Foreground(renderer.theme.FaintText).Render(code)
	}
	return highlighted.String()
}

func (renderer *markdownRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {

	case ast.KindDocument:

	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			renderer.inline.Reset()
		} else if flushed := renderer.flushInline(); flushed != "" {
			renderer.write(flushed)
			renderer.ensureNewline()
			if !renderer.inTightList() {
				renderer.ensureBlankLine()
			}
		}

	case ast.KindHeading:
		if entering {
			renderer.inline.Reset()
		} else {
			renderer.leaveHeading(node.(*ast.Heading))
		}

	case ast.KindFencedCodeBlock:
		if entering {
			block := node.(*ast.FencedCodeBlock)
			renderer.renderCode(blockText(block, renderer.source), string(block.Language(renderer.source)))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindCodeBlock:
		if entering {
			renderer.renderCode(blockText(node, renderer.source), "")
			return ast.WalkSkipChildren, nil
		}

	case ast.KindBlockquote:
		if entering {
			renderer.pushPrefix("│ ", 2)
		} else {
			renderer.popPrefix()
			renderer.ensureBlankLine()
		}

	case ast.KindList:
		if entering {
			list := node.(*ast.List)
			start := 0
			if list.IsOrdered() {
				start = list.Start
			}
			renderer.listStack = append(renderer.listStack, listState{
				ordered: list.IsOrdered(),
				counter: start,
				tight:   list.IsTight,
			})
		} else {
			if len(renderer.listStack) > 0 {
				renderer.listStack = renderer.listStack[:len(renderer.listStack)-1]
			}
			if !renderer.inTightList() {
				renderer.ensureBlankLine()
			}
		}

	case ast.KindListItem:
		if entering {
			renderer.enterListItem()
		} else {
			renderer.popPrefix()
			if renderer.inTightList() {
				renderer.ensureNewline()
			} else {
				renderer.ensureBlankLine()
			}
		}

	case ast.KindThematicBreak:
		if entering {
			rule := renderer.style().
				Foreground(renderer.theme.BorderColor).
				Render(strings.Repeat("─", renderer.contentWidth()))
			renderer.ensureBlankLine()
			renderer.write(renderer.prefixed(rule))
			renderer.ensureNewline()
			renderer.ensureBlankLine()
		}

	case ast.KindHTMLBlock:
		if entering {
			return ast.WalkSkipChildren, nil
		}

	case ast.KindText:
		if entering {
			textNode := node.(*ast.Text)
			renderer.inline.WriteString(renderer.styledText(string(textNode.Segment.Value(renderer.source))))
			if textNode.SoftLineBreak() {
				// Soft breaks become spaces so hard-wrapped source
				// reflows at the pane width.
				renderer.inline.WriteString(" ")
			}
			if textNode.HardLineBreak() {
				renderer.inline.WriteString("\n")
			}
		}

	case ast.KindString:
		if entering {
			renderer.inline.WriteString(renderer.styledText(string(node.(*ast.String).Value)))
		}

	case ast.KindEmphasis:
		emphasis := node.(*ast.Emphasis)
		delta := 1
		if !entering {
			delta = -1
		}
		if emphasis.Level >= 2 {
			renderer.boldDepth += delta
		} else {
			renderer.italicDepth += delta
		}

	case ast.KindCodeSpan:
		if entering {
			renderer.inline.WriteString(renderer.style().
				Foreground(renderer.theme.FaintText).
				Render(codeSpanText(node, renderer.source)))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindLink:
		if entering {
			renderer.inline.WriteString(renderer.inlineContent(node))
			if url := string(node.(*ast.Link).Destination); url != "" {
				renderer.inline.WriteString(" " + renderer.style().
					Foreground(renderer.theme.FaintText).
					Render("("+url+")"))
			}
			return ast.WalkSkipChildren, nil
		}

	case ast.KindAutoLink:
		if entering {
			renderer.inline.WriteString(renderer.style().
				Foreground(renderer.theme.FaintText).
				Render(string(node.(*ast.AutoLink).URL(renderer.source))))
		}

	case ast.KindImage:
		if entering {
			faint := renderer.style().Foreground(renderer.theme.FaintText)
			renderer.inline.WriteString(faint.Render("[" + renderer.inlineContent(node) + "]"))
			if url := string(node.(*ast.Image).Destination); url != "" {
				renderer.inline.WriteString(" " + faint.Render("("+url+")"))
			}
			return ast.WalkSkipChildren, nil
		}

	case ast.KindRawHTML:
		// Raw HTML has no terminal rendering; drop it.

	case extast.KindStrikethrough:
		if entering {
			renderer.strikeDepth++
		} else {
			renderer.strikeDepth--
		}

	case extast.KindTable:
		if entering {
			renderer.renderTable(node)
			return ast.WalkSkipChildren, nil
		}

	case extast.KindTaskCheckBox:
		if entering {
			if node.(*extast.TaskCheckBox).IsChecked {
				renderer.inline.WriteString(renderer.style().
					Foreground(renderer.theme.GoodForeground).
					Render("[x]") + " ")
			} else {
				renderer.inline.WriteString(renderer.styledText("[ ] "))
			}
		}
	}

	return ast.WalkContinue, nil
}

func (renderer *markdownRenderer) leaveHeading(heading *ast.Heading) {
	// Strip inline styling: the heading's own style replaces it.
	content := ansi.Strip(renderer.inline.String())
	renderer.inline.Reset()
	if content == "" {
		return
	}

	style := renderer.style().Bold(true).Foreground(renderer.theme.NormalText)
	if heading.Level <= 2 {
		style = style.Foreground(renderer.theme.HeaderForeground)
	}

	wrapped := ansi.Wrap(style.Render(content), renderer.contentWidth(), wrapBreakpoints)
	renderer.ensureBlankLine()
	renderer.write(renderer.prefixed(wrapped))
	renderer.ensureNewline()
	renderer.ensureBlankLine()
}

func (renderer *markdownRenderer) renderCode(code, language string) {
	highlighted := renderer.highlightCode(code, language)
	renderer.ensureBlankLine()
	for _, line := range strings.Split(strings.TrimRight(highlighted, "\n"), "\n") {
		renderer.write(renderer.prefixed(line))
		renderer.ensureNewline()
	}
	renderer.ensureBlankLine()
}

func (renderer *markdownRenderer) enterListItem() {
	if len(renderer.listStack) == 0 {
		return
	}
	top := &renderer.listStack[len(renderer.listStack)-1]

	var bullet string
	if top.ordered {
		bullet = fmt.Sprintf("%d. ", top.counter)
		top.counter++
	} else {
		bullet = "- "
	}

	// The pending bullet carries the full current prefix so it
	// replaces it entirely on the item's first line; continuation
	// lines get matching indentation.
	renderer.pendingBullet = renderer.linePrefix + bullet
	renderer.pushPrefix(strings.Repeat(" ", len(bullet)), len(bullet))
}

// renderTable renders a GFM table as plain aligned text rows. The
// detail pane is narrow; a full box-drawing table would waste most of
// its width on chrome.
func (renderer *markdownRenderer) renderTable(node ast.Node) {
	var rows [][]string
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.Kind() {
		case extast.KindTableHeader, extast.KindTableRow:
			var cells []string
			for cell := child.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, ansi.Strip(renderer.inlineContent(cell)))
			}
			rows = append(rows, cells)
		}
	}
	if len(rows) == 0 {
		return
	}

	columns := 0
	for _, row := range rows {
		columns = max(columns, len(row))
	}
	widths := make([]int, columns)
	for _, row := range rows {
		for index, cell := range row {
			widths[index] = max(widths[index], ansi.StringWidth(cell))
		}
	}

	normal := renderer.style().Foreground(renderer.theme.NormalText)
	header := renderer.style().Bold(true).Foreground(renderer.theme.NormalText)

	totalWidth := 2 * (columns - 1)
	for _, width := range widths {
		totalWidth += width
	}

	renderer.ensureBlankLine()
	for rowIndex, row := range rows {
		style := normal
		if rowIndex == 0 {
			style = header
		}
		var line strings.Builder
		for columnIndex := 0; columnIndex < columns; columnIndex++ {
			cell := ""
			if columnIndex < len(row) {
				cell = row[columnIndex]
			}
			if columnIndex > 0 {
				line.WriteString("  ")
			}
			line.WriteString(cell)
			line.WriteString(strings.Repeat(" ", widths[columnIndex]-ansi.StringWidth(cell)))
		}
		renderer.write(renderer.prefixed(style.Render(strings.TrimRight(line.String(), " "))))
		renderer.ensureNewline()

		// Rule under the header row.
		if rowIndex == 0 {
			rule := renderer.style().
				Foreground(renderer.theme.BorderColor).
				Render(strings.Repeat("─", totalWidth))
			renderer.write(renderer.prefixed(rule))
			renderer.ensureNewline()
		}
	}
	renderer.ensureBlankLine()
}

// blockText collects the raw text lines of a code block node.
func blockText(node ast.Node, source []byte) string {
	var code strings.Builder
	lines := node.Lines()
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		code.Write(segment.Value(source))
	}
	return code.String()
}

// codeSpanText collects the text of a code span's children.
func codeSpanText(node ast.Node, source []byte) string {
	var code strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch typed := child.(type) {
		case *ast.Text:
			code.Write(typed.Segment.Value(source))
		case *ast.String:
			code.Write(typed.Value)
		}
	}
	return code.String()
}
