package extract

import (
	"regexp"
	"strings"
)

// Lexical states for the JS/TS stripper.
const (
	jsCode = iota
	jsLineComment
	jsBlockComment
	jsSingleString
	jsDoubleString
	jsTemplateString
	jsRegexLiteral
)

var jstsImportPatterns = []*regexp.Regexp{
	// import ... from 'path'  /  export ... from 'path'
	regexp.MustCompile(`(?:import|export)\s+.*?\s+from\s+['"]([^'"]+)['"]`),
	// import 'path'  (side-effect)
	regexp.MustCompile(`import\s+['"]([^'"]+)['"]`),
	// export * from 'path'
	regexp.MustCompile(`export\s+\*\s+from\s+['"]([^'"]+)['"]`),
	// require('path')
	regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]\s*\)`),
	// dynamic import('path'), string literals only
	regexp.MustCompile(`import\s*\(\s*['"]([^'"]+)['"]\s*\)`),
}

var jstsKeywords = []string{"import", "require", "export"}

// prevTokenEndsValue reports whether the last non-blank character before pos
// could terminate an expression. If so a following '/' is division, not the
// start of a regex literal.
func prevTokenEndsValue(src []byte, pos int) bool {
	i := pos - 1
	for i >= 0 && (src[i] == ' ' || src[i] == '\t') {
		i--
	}
	if i < 0 {
		return false
	}
	switch src[i] {
	case ')', ']', '}', '.', '_', '$':
		return true
	}
	b := src[i]
	return (b >= '0' && b <= '9') || isAlphaByte(b)
}

// stripJSTS blanks comments to spaces while preserving string content and
// line structure. Template `${...}` expressions re-enter code state with a
// brace depth counter so braces inside the expression do not close the
// surrounding template early.
func stripJSTS(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	state := jsCode
	var stateStack []int // template nesting
	braceDepth := 0
	n := len(src)

	for i := 0; i < n; {
		ch := src[i]

		switch state {
		case jsCode:
			if ch == '/' && i+1 < n {
				switch src[i+1] {
				case '/':
					out[i], out[i+1] = ' ', ' '
					state = jsLineComment
					i += 2
					continue
				case '*':
					out[i], out[i+1] = ' ', ' '
					state = jsBlockComment
					i += 2
					continue
				}
				if !prevTokenEndsValue(src, i) {
					state = jsRegexLiteral
					i++
					continue
				}
			}
			switch {
			case ch == '\'':
				state = jsSingleString
			case ch == '"':
				state = jsDoubleString
			case ch == '`':
				out[i] = ' '
				stateStack = append(stateStack, jsCode)
				state = jsTemplateString
			case ch == '}' && len(stateStack) > 0:
				braceDepth--
				if braceDepth <= 0 {
					braceDepth = 0
					state = stateStack[len(stateStack)-1]
					stateStack = stateStack[:len(stateStack)-1]
				}
			case ch == '{' && len(stateStack) > 0:
				braceDepth++
			}
			i++

		case jsLineComment:
			if ch == '\n' {
				state = jsCode
			} else {
				out[i] = ' '
			}
			i++

		case jsBlockComment:
			if ch == '*' && i+1 < n && src[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				state = jsCode
				i += 2
				continue
			}
			if ch != '\n' {
				out[i] = ' '
			}
			i++

		case jsSingleString:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '\'' || ch == '\n' {
				state = jsCode
			}
			i++

		case jsDoubleString:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '"' || ch == '\n' {
				state = jsCode
			}
			i++

		case jsTemplateString:
			if ch == '\\' && i+1 < n {
				out[i], out[i+1] = ' ', ' '
				i += 2
				continue
			}
			if ch == '`' {
				out[i] = ' '
				if len(stateStack) > 0 {
					state = stateStack[len(stateStack)-1]
					stateStack = stateStack[:len(stateStack)-1]
				} else {
					state = jsCode
				}
				i++
				continue
			}
			if ch == '$' && i+1 < n && src[i+1] == '{' {
				out[i], out[i+1] = ' ', ' '
				stateStack = append(stateStack, jsTemplateString)
				state = jsCode
				braceDepth = 1
				i += 2
				continue
			}
			if ch != '\n' {
				out[i] = ' '
			}
			i++

		case jsRegexLiteral:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '/' {
				state = jsCode
				i++
				for i < n && isAlphaByte(src[i]) { // trailing flags
					i++
				}
				continue
			}
			if ch == '\n' {
				state = jsCode
			}
			i++

		default:
			i++
		}
	}

	return out
}

// keywordOutsideStrings reports whether keyword occurs in line at a word
// boundary outside of any string literal. Comments are assumed stripped.
func keywordOutsideStrings(line string, keyword string) bool {
	const (
		inCode = iota
		inSingle
		inDouble
		inTemplate
	)
	state := inCode
	klen := len(keyword)
	n := len(line)

	for i := 0; i < n; {
		ch := line[i]

		switch state {
		case inCode:
			if i+klen <= n && line[i:i+klen] == keyword {
				beforeOK := i == 0 || !isWordByte(line[i-1])
				afterOK := i+klen >= n || !isWordByte(line[i+klen])
				if beforeOK && afterOK {
					return true
				}
			}
			switch ch {
			case '\'':
				state = inSingle
			case '"':
				state = inDouble
			case '`':
				state = inTemplate
			}
			i++
		case inSingle:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '\'' || ch == '\n' {
				state = inCode
			}
			i++
		case inDouble:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '"' || ch == '\n' {
				state = inCode
			}
			i++
		case inTemplate:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '`' {
				state = inCode
			}
			// ${...} is not tracked here; import keywords inside
			// template expressions are rare enough to ignore.
			i++
		}
	}
	return false
}

func extractJSTS(src []byte) []string {
	cleaned := string(stripJSTS(src))
	var imports importList

	for _, line := range splitLines(cleaned) {
		hasKw := false
		for _, kw := range jstsKeywords {
			if strings.Contains(line, kw) && keywordOutsideStrings(line, kw) {
				hasKw = true
				break
			}
		}
		if !hasKw {
			continue
		}
		for _, pat := range jstsImportPatterns {
			for _, m := range pat.FindAllStringSubmatch(line, -1) {
				imports.add(m[1])
			}
		}
	}
	return imports.list
}
