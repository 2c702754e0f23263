package docparser

import (
	"errors"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// Parser turns raw doc comment text into annotation entries. It is a pure
// function of its input and safe for concurrent use.
type Parser struct {
	grammar *participle.Parser[segmentNode]
}

// NewParser creates a new doc comment parser using participle
func NewParser() *Parser {
	grammar := participle.MustBuild[segmentNode](
		participle.Lexer(annotationLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(3),
	)
	return &Parser{grammar: grammar}
}

// Parse extracts every annotation declared in doc, in source order
func (p *Parser) Parse(doc string) ([]Entry, error) {
	var entries []Entry
	for _, seg := range extractSegments(doc) {
		node, err := p.grammar.ParseString("", seg.text)
		if err != nil {
			return nil, p.syntaxError(seg, err)
		}
		for _, annotation := range node.Annotations {
			entry, err := annotation.entry(seg.line - 1)
			if err != nil {
				return nil, &SyntaxError{Msg: err.Error(), Line: seg.line, Column: 1, Text: seg.text}
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (p *Parser) syntaxError(seg segment, err error) error {
	syntaxErr := &SyntaxError{Msg: err.Error(), Line: seg.line, Column: 1, Text: seg.text}
	var perr participle.Error
	if errors.As(err, &perr) {
		pos := perr.Position()
		syntaxErr.Msg = perr.Message()
		syntaxErr.Line = seg.line + pos.Line - 1
		syntaxErr.Column = pos.Column
	}
	return syntaxErr
}

// segment is the text of one or more declarations starting on a line that
// begins with '@', extended over following lines while brackets are open and
// cut where the declarations end.
type segment struct {
	text string
	line int
}

func extractSegments(doc string) []segment {
	lines := strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n")

	var segments []segment
	for i := 0; i < len(lines); i++ {
		text := stripCommentMarkers(lines[i])
		if !startsDeclaration(text) {
			continue
		}
		seg := segment{text: text, line: i + 1}
		depth := bracketDepth(text)
		for depth > 0 && i+1 < len(lines) {
			i++
			next := stripCommentMarkers(lines[i])
			seg.text += "\n" + next
			depth += bracketDepth(next)
		}
		seg.text = strings.TrimSpace(seg.text[:declarationsEnd(seg.text)])
		segments = append(segments, seg)
	}
	return segments
}

func stripCommentMarkers(line string) string {
	line = strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, "//"):
		line = line[2:]
	case strings.HasPrefix(line, "/**"):
		line = line[3:]
	case strings.HasPrefix(line, "/*"):
		line = line[2:]
	}
	line = strings.TrimSuffix(strings.TrimSpace(line), "*/")
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "*") {
		line = strings.TrimSpace(line[1:])
	}
	return line
}

func startsDeclaration(line string) bool {
	if len(line) < 2 || line[0] != '@' {
		return false
	}
	return isNameStart(line[1])
}

// bracketDepth counts unbalanced ( and { outside of quoted strings
func bracketDepth(line string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '{':
			depth++
		case ')', '}':
			depth--
		}
	}
	return depth
}

// declarationsEnd returns the offset just past the last of the consecutive
// declarations at the start of text. Free text following them is left out;
// an unbalanced argument list runs to the end of text.
func declarationsEnd(text string) int {
	end, i := 0, 0
	for {
		for i < len(text) && isSpace(text[i]) {
			i++
		}
		if !startsDeclaration(text[i:]) {
			return end
		}
		i = nameEnd(text, i+1)
		end = i

		j := i
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		if j < len(text) && text[j] == '(' {
			i = closingBracket(text, j)
			end = i
		}
	}
}

// closingBracket returns the offset just past the bracket closing the one
// at open, or len(text) when it is never closed
func closingBracket(text string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '{':
			depth++
		case ')', '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(text)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// nameEnd scans a dotted or colon separated name starting at i
func nameEnd(text string, i int) int {
	for i < len(text) {
		c := text[i]
		switch {
		case isNameStart(c) || (c >= '0' && c <= '9'):
			i++
		case (c == '.' || c == ':') && i+1 < len(text) && isNameStart(text[i+1]):
			i++
		default:
			return i
		}
	}
	return i
}

func isNameStart(c byte) bool {
	return c == '_' || c == '\\' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
