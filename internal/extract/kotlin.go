package extract

import (
	"regexp"
	"strings"
)

const (
	ktCode = iota
	ktLineComment
	ktBlockComment
	ktDoubleString
	ktTripleString
	ktCharLiteral
)

var kotlinImport = regexp.MustCompile(`^import\s+([\w]+(?:\.[\w]+)*(?:\.\*)?)`)

// stripKotlin blanks comments to spaces. Kotlin block comments nest; triple
// quoted strings are raw with no escapes.
func stripKotlin(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	state := ktCode
	blockDepth := 0
	n := len(src)

	for i := 0; i < n; {
		ch := src[i]

		switch state {
		case ktCode:
			if ch == '/' && i+1 < n {
				switch src[i+1] {
				case '/':
					out[i], out[i+1] = ' ', ' '
					state = ktLineComment
					i += 2
					continue
				case '*':
					out[i], out[i+1] = ' ', ' '
					state = ktBlockComment
					blockDepth = 1
					i += 2
					continue
				}
			}
			if ch == '"' && i+2 < n && src[i+1] == '"' && src[i+2] == '"' {
				state = ktTripleString
				i += 3
				continue
			}
			switch ch {
			case '"':
				state = ktDoubleString
			case '\'':
				state = ktCharLiteral
			}
			i++

		case ktLineComment:
			if ch == '\n' {
				state = ktCode
			} else {
				out[i] = ' '
			}
			i++

		case ktBlockComment:
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
					state = ktCode
				}
				i += 2
				continue
			}
			if ch != '\n' {
				out[i] = ' '
			}
			i++

		case ktDoubleString:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '"' {
				state = ktCode
			}
			i++

		case ktTripleString:
			if ch == '"' && i+2 < n && src[i+1] == '"' && src[i+2] == '"' {
				state = ktCode
				i += 3
				continue
			}
			i++

		case ktCharLiteral:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '\'' {
				state = ktCode
			}
			i++
		}
	}

	return out
}

func extractKotlin(src []byte) []string {
	cleaned := string(stripKotlin(src))
	var imports importList

	for _, line := range splitLines(cleaned) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if m := kotlinImport.FindStringSubmatch(trimmed); m != nil {
			imports.add(m[1])
		}
	}
	return imports.list
}
