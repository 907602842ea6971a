package extract

import (
	"regexp"
	"strings"
)

const (
	rsCode = iota
	rsLineComment
	rsBlockComment
	rsDoubleString
	rsRawString
	rsCharLiteral
)

var (
	rustExternCrate = regexp.MustCompile(`^extern\s+crate\s+(\w+)`)
	rustUseGroup    = regexp.MustCompile(`^use\s+([\w:]+)::\{([^}]+)\}`)
	rustUseSimple   = regexp.MustCompile(`^use\s+([\w:]+(?:::\*)?)\s*(?:as\s+\w+\s*)?;`)
)

// stripRust blanks comments to spaces. Rust block comments nest, so a depth
// counter is kept; raw strings close only on a quote followed by the same
// number of hashes that opened them.
func stripRust(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	state := rsCode
	blockDepth := 0
	rawHashes := 0
	n := len(src)

	for i := 0; i < n; {
		ch := src[i]

		switch state {
		case rsCode:
			if ch == '/' && i+1 < n {
				switch src[i+1] {
				case '/':
					out[i], out[i+1] = ' ', ' '
					state = rsLineComment
					i += 2
					continue
				case '*':
					out[i], out[i+1] = ' ', ' '
					state = rsBlockComment
					blockDepth = 1
					i += 2
					continue
				}
			}
			// Raw strings: r"...", r#"..."#, br"...", br#"..."#
			if (ch == 'r' || ch == 'b') && i+1 < n {
				j := -1
				if ch == 'b' && src[i+1] == 'r' {
					j = i + 2
				} else if ch == 'r' {
					j = i + 1
				}
				if j > 0 && j < n {
					hashes := 0
					for j < n && src[j] == '#' {
						hashes++
						j++
					}
					if j < n && src[j] == '"' {
						rawHashes = hashes
						state = rsRawString
						i = j + 1
						continue
					}
				}
			}
			if ch == 'b' && i+1 < n && src[i+1] == '"' {
				state = rsDoubleString
				i += 2
				continue
			}
			if ch == '"' {
				state = rsDoubleString
				i++
				continue
			}
			if ch == '\'' {
				// Char literal vs lifetime: '\x' or 'x' followed by a
				// closing quote is a char; otherwise assume lifetime.
				if i+2 < n && src[i+1] == '\\' {
					state = rsCharLiteral
					i++
					continue
				}
				if i+2 < n && src[i+2] == '\'' {
					state = rsCharLiteral
					i++
					continue
				}
			}
			i++

		case rsLineComment:
			if ch == '\n' {
				state = rsCode
			} else {
				out[i] = ' '
			}
			i++

		case rsBlockComment:
			if ch == '/' && i+1 < n && src[i+1] == '*' {
				out[i], out[i+1] = ' ', ' '
				blockDepth++
				i += 2
				continue
			}
			if ch == '*' && i+1 < n && src[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				blockDepth--
				if blockDepth == 0 {
					state = rsCode
				}
				i += 2
				continue
			}
			if ch != '\n' {
				out[i] = ' '
			}
			i++

		case rsDoubleString:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '"' {
				state = rsCode
			}
			i++

		case rsRawString:
			if ch == '"' {
				j := i + 1
				hashes := 0
				for j < n && src[j] == '#' && hashes < rawHashes {
					hashes++
					j++
				}
				if hashes == rawHashes {
					state = rsCode
					i = j
					continue
				}
			}
			i++

		case rsCharLiteral:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '\'' {
				state = rsCode
			}
			i++
		}
	}

	return out
}

// extractRust matches use/extern statements at line start; the grammar
// restricts them to module scope so nothing mid-expression can misfire.
func extractRust(src []byte) []string {
	cleaned := string(stripRust(src))
	var imports importList

	for _, line := range splitLines(cleaned) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "use ") && !strings.HasPrefix(trimmed, "extern ") {
			continue
		}

		if m := rustExternCrate.FindStringSubmatch(trimmed); m != nil {
			imports.add(m[1])
			continue
		}

		// Grouped: use std::{io, fs as filesystem};
		if m := rustUseGroup.FindStringSubmatch(trimmed); m != nil {
			prefix := m[1]
			for _, item := range strings.Split(m[2], ",") {
				item = strings.TrimSpace(item)
				if idx := strings.Index(item, " as "); idx >= 0 {
					item = strings.TrimSpace(item[:idx])
				}
				if item != "" {
					imports.add(prefix + "::" + item)
				}
			}
			continue
		}

		// Simple, glob, or renamed use.
		if m := rustUseSimple.FindStringSubmatch(trimmed); m != nil {
			imports.add(m[1])
		}
	}
	return imports.list
}
