// Package parser wraps tree-sitter parsing of ECMAScript-family sources.
// Everything downstream consumes the parse tree as a black box with byte-range
// annotations; this is the only package that selects grammars or owns tree
// lifetimes.
package parser

import (
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"scalpel/internal/errors"
)

// Language identifies a supported source dialect.
type Language string

const (
	// LangJavaScript covers .js, .mjs, .cjs and .jsx sources
	LangJavaScript Language = "javascript"
	// LangTypeScript covers .ts, .mts and .cts sources
	LangTypeScript Language = "typescript"
	// LangTSX covers .tsx sources
	LangTSX Language = "tsx"
)

// MaxFileSize is the largest source buffer Parse will accept.
const MaxFileSize = 10 * 1024 * 1024

// LanguageFromExtension maps a lowercased file extension to a Language.
func LanguageFromExtension(ext string) (Language, bool) {
	switch ext {
	case ".js", ".mjs", ".cjs", ".jsx":
		return LangJavaScript, true
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	default:
		return "", false
	}
}

// LanguageForFile maps a file path to a Language by extension.
func LanguageForFile(path string) (Language, bool) {
	return LanguageFromExtension(strings.ToLower(filepath.Ext(path)))
}

// Result is one parsed source file. The tree-sitter tree owns C memory; call
// Close when the Result leaves a cache or goes out of scope.
type Result struct {
	Path     string
	Language Language
	Source   []byte
	Tree     *sitter.Tree
}

// Root returns the tree's root node.
func (r *Result) Root() *sitter.Node {
	return r.Tree.RootNode()
}

// Close releases the underlying tree.
func (r *Result) Close() {
	if r.Tree != nil {
		r.Tree.Close()
		r.Tree = nil
	}
}

func grammar(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	default:
		return nil, errors.Newf(errors.InvalidParameter, "unsupported language: %s", lang)
	}
}

// Parse parses source into a Result. A tree containing syntax errors is
// treated as a whole-file PARSE_FAILURE: downstream consumers never see
// partial extraction results.
//
// Each call builds its own tree-sitter parser, so Parse is safe for
// concurrent use.
func Parse(ctx context.Context, path string, source []byte, lang Language) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(source) > MaxFileSize {
		return nil, errors.Newf(errors.InvalidParameter, "%s: file exceeds %d bytes", path, MaxFileSize)
	}
	if !utf8.Valid(source) {
		return nil, errors.Newf(errors.ParseFailure, "%s: source is not valid UTF-8", path)
	}

	g, err := grammar(lang)
	if err != nil {
		return nil, err
	}

	p := sitter.NewParser()
	p.SetLanguage(g)
	tree, err := p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errors.New(errors.ParseFailure, path+": tree-sitter parse failed", err)
	}

	root := tree.RootNode()
	if root == nil || root.HasError() {
		tree.Close()
		return nil, errors.Newf(errors.ParseFailure, "%s: source contains syntax errors", path)
	}

	return &Result{
		Path:     path,
		Language: lang,
		Source:   source,
		Tree:     tree,
	}, nil
}

// ParseFile parses a file whose language is detected from its extension.
func ParseFile(ctx context.Context, path string, source []byte) (*Result, error) {
	lang, ok := LanguageForFile(path)
	if !ok {
		return nil, errors.Newf(errors.InvalidParameter, "%s: unsupported file extension", path)
	}
	return Parse(ctx, path, source, lang)
}
