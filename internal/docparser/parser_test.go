package docparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeclarations(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		doc      string
		expected []Entry
	}{
		{
			name:     "no annotations",
			doc:      "UserController handles users.\nIt has no metadata.",
			expected: nil,
		},
		{
			name:     "bare tag",
			doc:      "@Test",
			expected: []Entry{{Tag: "Test", Line: 1}},
		},
		{
			name:     "empty parens",
			doc:      "@Test()",
			expected: []Entry{{Tag: "Test", Line: 1}},
		},
		{
			name: "positional string",
			doc:  `@T:Other("Other message")`,
			expected: []Entry{{
				Tag:    "T:Other",
				Params: []Param{{Value: Literal("Other message")}},
				Line:   1,
			}},
		},
		{
			name: "named parameters with mixed literals",
			doc:  `@Route(method="GET", path='/users/:id', weight=2, ratio=0.5, cached=false, fallback=null, mode=Singleton)`,
			expected: []Entry{{
				Tag: "Route",
				Params: []Param{
					{Key: "method", Value: Literal("GET")},
					{Key: "path", Value: Literal("/users/:id")},
					{Key: "weight", Value: Literal(int64(2))},
					{Key: "ratio", Value: Literal(0.5)},
					{Key: "cached", Value: Literal(false)},
					{Key: "fallback", Value: Literal(nil)},
					{Key: "mode", Value: Literal(Ident("Singleton"))},
				},
				Line: 1,
			}},
		},
		{
			name: "list value",
			doc:  `@Target({"method", "property"})`,
			expected: []Entry{{
				Tag:    "Target",
				Params: []Param{{Value: List(Literal("method"), Literal("property"))}},
				Line:   1,
			}},
		},
		{
			name: "nested annotation",
			doc:  `@MethodAnnotation(@NestedAnnotation(true))`,
			expected: []Entry{{
				Tag: "MethodAnnotation",
				Params: []Param{{Value: Nested(Entry{
					Tag:    "NestedAnnotation",
					Params: []Param{{Value: Literal(true)}},
					Line:   1,
				})}},
				Line: 1,
			}},
		},
		{
			name: "namespaced backslash tag",
			doc:  `@AddendumPP\Annotation_Target("class")`,
			expected: []Entry{{
				Tag:    `AddendumPP\Annotation_Target`,
				Params: []Param{{Value: Literal("class")}},
				Line:   1,
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := parser.Parse(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, entries)
		})
	}
}

func TestParseGoCommentMarkers(t *testing.T) {
	parser := NewParser()

	doc := `// UserController serves the user API.
//
// @Controller
// @Route("GET /users")
func x() {}`

	entries, err := parser.Parse(doc)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Controller", entries[0].Tag)
	assert.Equal(t, 3, entries[0].Line)
	assert.Equal(t, "Route", entries[1].Tag)
	assert.Equal(t, 4, entries[1].Line)
}

func TestParseBlockComment(t *testing.T) {
	parser := NewParser()

	doc := `/**
 * @MetaAnnotation()
 * @ClassAnnotation()
 */`

	entries, err := parser.Parse(doc)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "MetaAnnotation", entries[0].Tag)
	assert.Equal(t, "ClassAnnotation", entries[1].Tag)
}

func TestParseMultilineDeclaration(t *testing.T) {
	parser := NewParser()

	doc := `@Route(
    method="POST",
    path="/users"
)
@Auth`

	entries, err := parser.Parse(doc)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Route", entries[0].Tag)
	assert.Len(t, entries[0].Params, 2)
	assert.Equal(t, "Auth", entries[1].Tag)
	assert.Equal(t, 5, entries[1].Line)
}

func TestParsePreservesSourceOrder(t *testing.T) {
	parser := NewParser()

	entries, err := parser.Parse("@First\n@Second\n@First(2)\n@Third @Fourth")
	require.NoError(t, err)

	tags := make([]string, 0, len(entries))
	for _, e := range entries {
		tags = append(tags, e.Tag)
	}
	assert.Equal(t, []string{"First", "Second", "First", "Third", "Fourth"}, tags)
}

func TestParseIgnoresTrailingText(t *testing.T) {
	parser := NewParser()

	entries, err := parser.Parse("@deprecated use $other instead")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "deprecated", entries[0].Tag)
	assert.Empty(t, entries[0].Params)
}

func TestParseIgnoresMidLineAt(t *testing.T) {
	parser := NewParser()

	entries, err := parser.Parse("contact admin@example.com for access")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseSyntaxError(t *testing.T) {
	parser := NewParser()

	_, err := parser.Parse("first line\n@Broken(key=)")
	require.Error(t, err)

	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 2, syntaxErr.Line)
	assert.Equal(t, "@Broken(key=)", syntaxErr.Text)
}

func TestParseMalformedArguments(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		doc  string
		line int
	}{
		{doc: `@Route(method=, path="/x")`, line: 1},
		{doc: `@Route(method="GET" path="/x")`, line: 1},
		{doc: `@Route(path="/x"`, line: 1},
		{doc: "@Route(\n  method=,\n  path=\"/x\")", line: 2},
	}
	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			_, err := parser.Parse(tt.doc)
			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, tt.line, syntaxErr.Line)
		})
	}
}

func TestParseCutsFreeTextAfterDeclarations(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		doc  string
		tags []string
	}{
		{doc: "@Test() is used here", tags: []string{"Test"}},
		{doc: "@A @B(1) trailing words (with brackets)", tags: []string{"A", "B"}},
		{doc: "@Deprecated. Use the other one.", tags: []string{"Deprecated"}},
		{doc: "@Route(path=\"/a)b\") see docs", tags: []string{"Route"}},
		{doc: "@Outer(@Inner(1)) done", tags: []string{"Outer"}},
	}
	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			entries, err := parser.Parse(tt.doc)
			require.NoError(t, err)

			var tags []string
			for _, e := range entries {
				tags = append(tags, e.Tag)
			}
			assert.Equal(t, tt.tags, tags)
		})
	}
}

func TestParseEscapes(t *testing.T) {
	parser := NewParser()

	entries, err := parser.Parse(`@Message("say \"hi\"", 'it\'s')`)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Params, 2)
	assert.Equal(t, `say "hi"`, entries[0].Params[0].Value.Literal)
	assert.Equal(t, "it's", entries[0].Params[1].Value.Literal)
}

func TestEntryString(t *testing.T) {
	entry := NewEntry("Route",
		Param{Key: "method", Value: Literal("GET")},
		Param{Value: List(Literal(int64(1)), Nested(NewEntry("Inner")))},
	)
	assert.Equal(t, `@Route(method="GET", {1, @Inner()})`, entry.String())
}
