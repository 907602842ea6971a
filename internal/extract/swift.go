package extract

import (
	"regexp"
	"strings"
)

const (
	swCode = iota
	swLineComment
	swBlockComment
	swDoubleString
	swTripleString
)

var swiftImport = regexp.MustCompile(
	`^(?:@testable\s+)?import\s+(?:(?:struct|class|enum|protocol|typealias|func|var|let)\s+)?(\w+)`)

// stripSwift blanks comments to spaces. Swift block comments nest; string
// interpolation \(...) stays inside string state, which is safe because
// import statements never appear there.
func stripSwift(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	state := swCode
	blockDepth := 0
	n := len(src)

	for i := 0; i < n; {
		ch := src[i]

		switch state {
		case swCode:
			if ch == '/' && i+1 < n {
				switch src[i+1] {
				case '/':
					out[i], out[i+1] = ' ', ' '
					state = swLineComment
					i += 2
					continue
				case '*':
					out[i], out[i+1] = ' ', ' '
					state = swBlockComment
					blockDepth = 1
					i += 2
					continue
				}
			}
			if ch == '"' && i+2 < n && src[i+1] == '"' && src[i+2] == '"' {
				state = swTripleString
				i += 3
				continue
			}
			if ch == '"' {
				state = swDoubleString
			}
			i++

		case swLineComment:
			if ch == '\n' {
				state = swCode
			} else {
				out[i] = ' '
			}
			i++

		case swBlockComment:
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
					state = swCode
				}
				i += 2
				continue
			}
			if ch != '\n' {
				out[i] = ' '
			}
			i++

		case swDoubleString:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '"' {
				state = swCode
			}
			i++

		case swTripleString:
			if ch == '"' && i+2 < n && src[i+1] == '"' && src[i+2] == '"' {
				state = swCode
				i += 3
				continue
			}
			i++
		}
	}

	return out
}

func extractSwift(src []byte) []string {
	cleaned := string(stripSwift(src))
	var imports importList

	for _, line := range splitLines(cleaned) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if m := swiftImport.FindStringSubmatch(trimmed); m != nil {
			imports.add(m[1])
		}
	}
	return imports.list
}
