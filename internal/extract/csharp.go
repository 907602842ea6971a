package extract

import (
	"regexp"
	"strings"
)

const (
	csCode = iota
	csLineComment
	csBlockComment
	csDoubleString
	csVerbatimString
	csCharLiteral
	csRawString
)

var (
	csharpUsing = regexp.MustCompile(
		`^(?:global\s+)?using\s+(?:static\s+)?(?:\w+\s*=\s*)?(?:global::)?([\w.]+)`)
	csharpDeclStart = regexp.MustCompile(`^(namespace|class|struct|interface|enum|record)\s`)
)

// stripCSharp blanks comments to spaces. Verbatim strings (@"...") escape a
// quote by doubling it; raw string literals open and close with a matching
// run of three or more quotes.
func stripCSharp(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	state := csCode
	rawQuotes := 0
	n := len(src)

	for i := 0; i < n; {
		ch := src[i]

		switch state {
		case csCode:
			if ch == '/' && i+1 < n {
				switch src[i+1] {
				case '/':
					out[i], out[i+1] = ' ', ' '
					state = csLineComment
					i += 2
					continue
				case '*':
					out[i], out[i+1] = ' ', ' '
					state = csBlockComment
					i += 2
					continue
				}
			}
			// Verbatim strings: @"..." or $@"..."
			if (ch == '@' || ch == '$') && i+1 < n {
				j := -1
				if ch == '$' && i+1 < n && src[i+1] == '@' {
					j = i + 2
				} else if ch == '@' {
					j = i + 1
				}
				if j > 0 && j < n && src[j] == '"' {
					qcount := 0
					k := j
					for k < n && src[k] == '"' {
						qcount++
						k++
					}
					if qcount >= 3 {
						rawQuotes = qcount
						state = csRawString
						i = k
						continue
					}
					state = csVerbatimString
					i = j + 1
					continue
				}
			}
			// Raw string literals: """...""" with 3+ quotes.
			if ch == '"' && i+2 < n && src[i+1] == '"' && src[i+2] == '"' {
				qcount := 0
				j := i
				for j < n && src[j] == '"' {
					qcount++
					j++
				}
				rawQuotes = qcount
				state = csRawString
				i = j
				continue
			}
			// Interpolated string: $"..."
			if ch == '$' && i+1 < n && src[i+1] == '"' {
				state = csDoubleString
				i += 2
				continue
			}
			switch ch {
			case '"':
				state = csDoubleString
			case '\'':
				state = csCharLiteral
			}
			i++

		case csLineComment:
			if ch == '\n' {
				state = csCode
			} else {
				out[i] = ' '
			}
			i++

		case csBlockComment:
			if ch == '*' && i+1 < n && src[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				state = csCode
				i += 2
				continue
			}
			if ch != '\n' {
				out[i] = ' '
			}
			i++

		case csDoubleString:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '"' {
				state = csCode
			}
			i++

		case csVerbatimString:
			if ch == '"' {
				if i+1 < n && src[i+1] == '"' {
					i += 2 // doubled quote
					continue
				}
				state = csCode
			}
			i++

		case csCharLiteral:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '\'' {
				state = csCode
			}
			i++

		case csRawString:
			if ch == '"' {
				qcount := 0
				j := i
				for j < n && src[j] == '"' {
					qcount++
					j++
				}
				if qcount >= rawQuotes {
					state = csCode
					i = j
					continue
				}
			}
			i++
		}
	}

	return out
}

// extractCSharp reads top-level using directives only, stopping at the first
// type or namespace declaration.
func extractCSharp(src []byte) []string {
	cleaned := string(stripCSharp(src))
	var imports importList

	for _, line := range splitLines(cleaned) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if csharpDeclStart.MatchString(trimmed) {
			break
		}
		if m := csharpUsing.FindStringSubmatch(trimmed); m != nil {
			imports.add(m[1])
		}
	}
	return imports.list
}
