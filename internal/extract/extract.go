// Package extract locates import specifiers in source files across eleven
// languages.
//
// Naive regex matching over raw source misreads imports inside comments and
// string literals, and misses imports hidden by formatting. Each language
// here runs a two-phase pass instead: Phase 1 is a single left-to-right scan
// that blanks comment content to spaces (preserving line structure and
// string content), Phase 2 recognizes import statements line by line on the
// stripped text. Python is the exception, it goes through a structured
// tree-sitter parse.
package extract

import (
	"os"
	"path/filepath"
	"strings"
)

// Language identifies a supported source language. New languages are added
// by extending this enum and the dispatch in Extract, never by branching on
// extension strings at call sites.
type Language int

const (
	LangUnknown Language = iota
	LangJSTS
	LangPython
	LangGo
	LangRust
	LangJava
	LangDart
	LangKotlin
	LangSwift
	LangCSharp
	LangPHP
	LangRuby
)

// String returns the language name for logging.
func (l Language) String() string {
	switch l {
	case LangJSTS:
		return "js/ts"
	case LangPython:
		return "python"
	case LangGo:
		return "go"
	case LangRust:
		return "rust"
	case LangJava:
		return "java"
	case LangDart:
		return "dart"
	case LangKotlin:
		return "kotlin"
	case LangSwift:
		return "swift"
	case LangCSharp:
		return "csharp"
	case LangPHP:
		return "php"
	case LangRuby:
		return "ruby"
	}
	return "unknown"
}

// LanguageForExt maps a file extension (with leading dot) to its language.
func LanguageForExt(ext string) Language {
	switch strings.ToLower(ext) {
	case ".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs":
		return LangJSTS
	case ".py":
		return LangPython
	case ".go":
		return LangGo
	case ".rs":
		return LangRust
	case ".java":
		return LangJava
	case ".dart":
		return LangDart
	case ".kt", ".kts":
		return LangKotlin
	case ".swift":
		return LangSwift
	case ".cs":
		return LangCSharp
	case ".php":
		return LangPHP
	case ".rb":
		return LangRuby
	}
	return LangUnknown
}

// LanguageForPath maps a file path to its language by extension.
func LanguageForPath(path string) Language {
	return LanguageForExt(filepath.Ext(path))
}

// Extract returns the import specifiers found in src, in order of first
// appearance with duplicates collapsed. An unknown language yields nil.
func Extract(src []byte, lang Language) []string {
	switch lang {
	case LangJSTS:
		return extractJSTS(src)
	case LangPython:
		return extractPython(src)
	case LangGo:
		return extractGo(src)
	case LangRust:
		return extractRust(src)
	case LangJava:
		return extractJava(src)
	case LangDart:
		return extractDart(src)
	case LangKotlin:
		return extractKotlin(src)
	case LangSwift:
		return extractSwift(src)
	case LangCSharp:
		return extractCSharp(src)
	case LangPHP:
		return extractPHP(src)
	case LangRuby:
		return extractRuby(src)
	}
	return nil
}

// File extracts imports from a file on disk. Unreadable files and
// unrecognized extensions yield nil, never an error.
func File(path string) []string {
	lang := LanguageForPath(path)
	if lang == LangUnknown {
		return nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return Extract(src, lang)
}

// importList accumulates specifiers preserving first-appearance order.
type importList struct {
	seen map[string]struct{}
	list []string
}

func (l *importList) add(imp string) {
	if imp == "" {
		return
	}
	if l.seen == nil {
		l.seen = make(map[string]struct{})
	}
	if _, ok := l.seen[imp]; ok {
		return
	}
	l.seen[imp] = struct{}{}
	l.list = append(l.list, imp)
}

func splitLines(s string) []string {
	return strings.Split(s, "\n")
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isAlphaByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
