package extract

import (
	"regexp"
	"strings"
)

const (
	dtCode = iota
	dtLineComment
	dtBlockComment
	dtDoubleString
	dtSingleString
	dtTripleDouble
	dtTripleSingle
	dtRawDouble
	dtRawSingle
)

var dartDirective = regexp.MustCompile(`^(?:import|export|part)\s+['"](.+?)['"]`)

// stripDart blanks comments to spaces. Dart block comments do not nest; raw
// strings (r"...", r'...') take no escapes; triple-quoted strings must be
// checked before their single-quote forms.
func stripDart(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	state := dtCode
	n := len(src)

	for i := 0; i < n; {
		ch := src[i]

		switch state {
		case dtCode:
			if ch == 'r' && i+1 < n {
				if src[i+1] == '"' {
					state = dtRawDouble
					i += 2
					continue
				}
				if src[i+1] == '\'' {
					state = dtRawSingle
					i += 2
					continue
				}
			}
			if ch == '/' && i+1 < n {
				switch src[i+1] {
				case '/':
					out[i], out[i+1] = ' ', ' '
					state = dtLineComment
					i += 2
					continue
				case '*':
					out[i], out[i+1] = ' ', ' '
					state = dtBlockComment
					i += 2
					continue
				}
			}
			if ch == '"' && i+2 < n && src[i+1] == '"' && src[i+2] == '"' {
				state = dtTripleDouble
				i += 3
				continue
			}
			if ch == '\'' && i+2 < n && src[i+1] == '\'' && src[i+2] == '\'' {
				state = dtTripleSingle
				i += 3
				continue
			}
			switch ch {
			case '"':
				state = dtDoubleString
			case '\'':
				state = dtSingleString
			}
			i++

		case dtLineComment:
			if ch == '\n' {
				state = dtCode
			} else {
				out[i] = ' '
			}
			i++

		case dtBlockComment:
			if ch == '*' && i+1 < n && src[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				state = dtCode
				i += 2
				continue
			}
			if ch != '\n' {
				out[i] = ' '
			}
			i++

		case dtDoubleString:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '"' {
				state = dtCode
			}
			i++

		case dtSingleString:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '\'' {
				state = dtCode
			}
			i++

		case dtTripleDouble:
			if ch == '"' && i+2 < n && src[i+1] == '"' && src[i+2] == '"' {
				state = dtCode
				i += 3
				continue
			}
			i++

		case dtTripleSingle:
			if ch == '\'' && i+2 < n && src[i+1] == '\'' && src[i+2] == '\'' {
				state = dtCode
				i += 3
				continue
			}
			i++

		case dtRawDouble:
			if ch == '"' {
				state = dtCode
			}
			i++

		case dtRawSingle:
			if ch == '\'' {
				state = dtCode
			}
			i++
		}
	}

	return out
}

func extractDart(src []byte) []string {
	cleaned := string(stripDart(src))
	var imports importList

	for _, line := range splitLines(cleaned) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if m := dartDirective.FindStringSubmatch(trimmed); m != nil {
			imports.add(m[1])
		}
	}
	return imports.list
}
