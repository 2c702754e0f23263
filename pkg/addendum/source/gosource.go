package source

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/toyz/addendum/internal/utils"
	"github.com/toyz/addendum/pkg/addendum"
)

// GoSource is a Provider reading classes from Go source files. Every named
// type is a class; its doc comment is the class doc, its struct fields are
// properties and the methods declared on it are methods.
type GoSource struct {
	mu      sync.RWMutex
	fileSet *token.FileSet
	scans   map[string]*fileScan
	classes map[string]*addendum.ClassInfo
	cache   *utils.Cache[string, *fileScan]
}

// fileScan is everything extracted from one Go file
type fileScan struct {
	pkg     string
	types   []typeScan
	methods []methodScan
}

type typeScan struct {
	name   string
	doc    string
	fields []fieldScan
	embeds []string // embedded type names, package selectors kept as pkg.Name
}

type fieldScan struct {
	name     string
	doc      string
	tag      string
	exported bool
}

type methodScan struct {
	recv string
	name string
	doc  string
}

// NewGoSource creates an empty Go source provider
func NewGoSource() *GoSource {
	return &GoSource{
		fileSet: token.NewFileSet(),
		scans:   make(map[string]*fileScan),
		classes: make(map[string]*addendum.ClassInfo),
		cache:   utils.NewCache[string, *fileScan](),
	}
}

// ParseSource parses Go source held in memory, registered under filename
func (g *GoSource) ParseSource(filename, src string) error {
	file, err := parser.ParseFile(g.fileSet, filename, src, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("failed to parse source: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.scans[filename] = scanFile(file)
	g.rebuild()
	return nil
}

// ParseFile parses one Go file. Unchanged files are served from cache.
func (g *GoSource) ParseFile(path string) error {
	scan, ok := g.cache.GetForFile(path, path)
	if !ok {
		file, err := parser.ParseFile(g.fileSet, path, nil, parser.ParseComments)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		scan = scanFile(file)
		if err := g.cache.SetForFile(path, scan, path); err != nil {
			return err
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.scans[path] = scan
	g.rebuild()
	return nil
}

// ParseDir parses every non-test Go file of dir, descending into
// subdirectories when recursive is set. Hidden, underscore prefixed, vendor
// and testdata directories are skipped.
func (g *GoSource) ParseDir(dir string, recursive bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == dir {
				return nil
			}
			if !recursive || SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSourceFile(path) {
			return nil
		}
		return g.ParseFile(path)
	})
}

// Remove forgets everything read from path
func (g *GoSource) Remove(path string) {
	g.cache.Delete(path)

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.scans[path]; ok {
		delete(g.scans, path)
		g.rebuild()
	}
}

// Files returns the paths of every parsed file, sorted
func (g *GoSource) Files() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.sortedFiles()
}

// Class implements addendum.Provider
func (g *GoSource) Class(name string) (*addendum.ClassInfo, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	info, ok := g.classes[name]
	if !ok {
		return nil, false
	}
	return cloneClass(info), true
}

// Classes returns the names of every class found, sorted
func (g *GoSource) Classes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	names := make([]string, 0, len(g.classes))
	for name := range g.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSourceFile reports whether path is a non-test Go file
func IsSourceFile(path string) bool {
	return strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go")
}

// SkipDir reports whether a directory is left out of recursive scans
func SkipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
		name == "vendor" || name == "testdata"
}

func (g *GoSource) sortedFiles() []string {
	files := make([]string, 0, len(g.scans))
	for path := range g.scans {
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

// rebuild merges every file scan into the class view; callers hold the
// write lock
func (g *GoSource) rebuild() {
	g.classes = make(map[string]*addendum.ClassInfo)
	files := g.sortedFiles()

	for _, path := range files {
		for _, t := range g.scans[path].types {
			info := &addendum.ClassInfo{Name: t.name, Doc: t.doc}
			for _, f := range t.fields {
				info.Properties = append(info.Properties, addendum.MemberInfo{Name: f.name, Doc: f.doc})
			}
			g.classes[t.name] = info
		}
	}
	for _, path := range files {
		for _, m := range g.scans[path].methods {
			if info, ok := g.classes[m.recv]; ok {
				info.Methods = append(info.Methods, addendum.MemberInfo{Name: m.name, Doc: m.doc})
			}
		}
	}
}

// scanFile extracts type declarations and methods from a parsed file
func scanFile(file *ast.File) *fileScan {
	scan := &fileScan{pkg: file.Name.Name}

	for _, decl := range file.Decls {
		switch node := decl.(type) {
		case *ast.GenDecl:
			if node.Tok != token.TYPE {
				continue
			}
			for _, spec := range node.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := typeSpec.Doc
				if doc == nil && len(node.Specs) == 1 {
					doc = node.Doc
				}
				t := typeScan{name: typeSpec.Name.Name, doc: docText(doc)}
				if structType, ok := typeSpec.Type.(*ast.StructType); ok {
					t.fields, t.embeds = scanFields(structType)
				}
				scan.types = append(scan.types, t)
			}
		case *ast.FuncDecl:
			if node.Recv == nil || len(node.Recv.List) == 0 {
				continue
			}
			recv := receiverName(node.Recv.List[0].Type)
			if recv == "" {
				continue
			}
			scan.methods = append(scan.methods, methodScan{
				recv: recv,
				name: node.Name.Name,
				doc:  docText(node.Doc),
			})
		}
	}
	return scan
}

func scanFields(structType *ast.StructType) ([]fieldScan, []string) {
	var fields []fieldScan
	var embeds []string
	if structType.Fields == nil {
		return nil, nil
	}

	for _, field := range structType.Fields.List {
		tag := ""
		if field.Tag != nil {
			if unquoted, err := strconv.Unquote(field.Tag.Value); err == nil {
				tag = unquoted
			}
		}
		doc := field.Doc
		if doc == nil {
			doc = field.Comment
		}

		if len(field.Names) == 0 {
			if name := typeName(field.Type); name != "" {
				embeds = append(embeds, name)
			}
			continue
		}
		for _, name := range field.Names {
			fields = append(fields, fieldScan{
				name:     name.Name,
				doc:      docText(doc),
				tag:      tag,
				exported: name.IsExported(),
			})
		}
	}
	return fields, embeds
}

// receiverName returns the base type name of a method receiver, including
// generic receivers such as *List[T]
func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	}
	return ""
}

// typeName renders an embedded field type as Name or pkg.Name
func typeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return typeName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name + "." + t.Sel.Name
		}
	}
	return ""
}

func docText(group *ast.CommentGroup) string {
	if group == nil {
		return ""
	}
	return strings.TrimSpace(group.Text())
}

// annotationProperty names the annotation property a struct field binds to,
// matching addendum.Register
func annotationProperty(f fieldScan) (string, bool) {
	if !f.exported {
		return "", false
	}
	tag := reflect.StructTag(f.tag).Get("annotation")
	if tag == "-" {
		return "", false
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, true
	}
	if f.name == "Value" {
		return addendum.ValueProperty, true
	}
	r, size := utf8.DecodeRuneInString(f.name)
	return string(unicode.ToLower(r)) + f.name[size:], true
}
