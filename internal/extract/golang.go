package extract

import (
	"regexp"
	"strings"
)

const (
	goCode = iota
	goLineComment
	goBlockComment
	goDoubleString
	goRawString
	goRuneLiteral
)

var (
	goImportGroupOpen = regexp.MustCompile(`^import\s*\(`)
	goGroupEntry      = regexp.MustCompile(`^\s*(?:\w+\s+)?"([^"]+)"`)
	goSingleImport    = regexp.MustCompile(`^import\s+(?:\w+\s+)?"([^"]+)"`)
)

// stripGo blanks comments to spaces. Go block comments do not nest; raw
// strings have no escape sequences.
func stripGo(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	state := goCode
	n := len(src)

	for i := 0; i < n; {
		ch := src[i]

		switch state {
		case goCode:
			if ch == '/' && i+1 < n {
				switch src[i+1] {
				case '/':
					out[i], out[i+1] = ' ', ' '
					state = goLineComment
					i += 2
					continue
				case '*':
					out[i], out[i+1] = ' ', ' '
					state = goBlockComment
					i += 2
					continue
				}
			}
			switch ch {
			case '"':
				state = goDoubleString
			case '`':
				state = goRawString
			case '\'':
				state = goRuneLiteral
			}
			i++

		case goLineComment:
			if ch == '\n' {
				state = goCode
			} else {
				out[i] = ' '
			}
			i++

		case goBlockComment:
			if ch == '*' && i+1 < n && src[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				state = goCode
				i += 2
				continue
			}
			if ch != '\n' {
				out[i] = ' '
			}
			i++

		case goDoubleString:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '"' {
				state = goCode
			}
			i++

		case goRawString:
			if ch == '`' {
				state = goCode
			}
			i++

		case goRuneLiteral:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '\'' {
				state = goCode
			}
			i++
		}
	}

	return out
}

// extractGo works line by line on the stripped source. Go imports only
// appear at file scope, so `import` at the start of a trimmed line is always
// a real import statement.
func extractGo(src []byte) []string {
	cleaned := string(stripGo(src))
	var imports importList
	inGroup := false

	for _, line := range splitLines(cleaned) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if goImportGroupOpen.MatchString(trimmed) {
			inGroup = true
			continue
		}
		if inGroup && strings.HasPrefix(trimmed, ")") {
			inGroup = false
			continue
		}

		if inGroup {
			if m := goGroupEntry.FindStringSubmatch(line); m != nil {
				imports.add(m[1])
			}
		} else if strings.HasPrefix(trimmed, "import ") {
			if m := goSingleImport.FindStringSubmatch(trimmed); m != nil {
				imports.add(m[1])
			}
		}
	}
	return imports.list
}
