package extract

import (
	"regexp"
	"strings"
)

const (
	rbCode = iota
	rbLineComment
	rbBlockComment
	rbSingleString
	rbDoubleString
	rbHeredoc
)

var (
	rubyRequire  = regexp.MustCompile(`^(?:require_relative|require_dependency|require|load)\s+['"](.+?)['"]`)
	rubyAutoload = regexp.MustCompile(`^autoload\s+:\w+,\s*['"](.+?)['"]`)
)

// stripRuby blanks comments to spaces. Block comments are =begin/=end at
// line start; heredocs accept ~ and - flags plus quoted identifiers, and a
// candidate is only treated as a heredoc if the next meaningful character
// after the marker could follow one (newline, comma, dot or close paren).
// This keeps `a << b` shifts in code state.
func stripRuby(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	state := rbCode
	heredocID := ""
	atLineStart := true
	n := len(src)

	for i := 0; i < n; {
		ch := src[i]

		switch state {
		case rbCode:
			if atLineStart && ch == '=' && hasPrefixAt(src, i, "=begin") &&
				(i+6 >= n || src[i+6] == ' ' || src[i+6] == '\t' || src[i+6] == '\n') {
				for i < n && src[i] != '\n' {
					out[i] = ' '
					i++
				}
				state = rbBlockComment
				atLineStart = true
				continue
			}
			if ch == '#' {
				out[i] = ' '
				state = rbLineComment
				i++
				continue
			}
			if ch == '<' && i+1 < n && src[i+1] == '<' {
				j := i + 2
				if j < n && (src[j] == '~' || src[j] == '-') {
					j++
				}
				var quote byte
				if j < n && (src[j] == '\'' || src[j] == '"') {
					quote = src[j]
					j++
				}
				idStart := j
				for j < n && isWordByte(src[j]) {
					j++
				}
				if j > idStart {
					hid := string(src[idStart:j])
					if quote != 0 && j < n && src[j] == quote {
						j++
					}
					k := j
					for k < n && (src[k] == ' ' || src[k] == '\t') {
						k++
					}
					if k < n && (src[k] == '\n' || src[k] == ',' || src[k] == '.' || src[k] == ')') {
						heredocID = hid
						for i < n && src[i] != '\n' {
							i++
						}
						state = rbHeredoc
						atLineStart = true
						continue
					}
				}
			}
			switch ch {
			case '\'':
				state = rbSingleString
			case '"':
				state = rbDoubleString
			}
			atLineStart = ch == '\n'
			i++

		case rbLineComment:
			if ch == '\n' {
				state = rbCode
				atLineStart = true
			} else {
				out[i] = ' '
			}
			i++

		case rbBlockComment:
			if atLineStart && ch == '=' && hasPrefixAt(src, i, "=end") &&
				(i+4 >= n || src[i+4] == ' ' || src[i+4] == '\t' || src[i+4] == '\n') {
				for i < n && src[i] != '\n' {
					out[i] = ' '
					i++
				}
				state = rbCode
				atLineStart = true
				continue
			}
			if ch != '\n' {
				out[i] = ' '
			}
			atLineStart = ch == '\n'
			i++

		case rbSingleString:
			if ch == '\\' && i+1 < n && (src[i+1] == '\\' || src[i+1] == '\'') {
				i += 2
				continue
			}
			if ch == '\'' {
				state = rbCode
			}
			atLineStart = ch == '\n'
			i++

		case rbDoubleString:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '"' {
				state = rbCode
			}
			atLineStart = ch == '\n'
			i++

		case rbHeredoc:
			if ch == '\n' {
				j := i + 1
				for j < n && (src[j] == ' ' || src[j] == '\t') {
					j++
				}
				if j+len(heredocID) <= n && string(src[j:j+len(heredocID)]) == heredocID {
					after := j + len(heredocID)
					if after >= n || src[after] == '\n' || src[after] == ' ' || src[after] == '\t' {
						state = rbCode
						i = after
						atLineStart = false
						continue
					}
				}
				atLineStart = true
			} else {
				atLineStart = false
			}
			i++
		}
	}

	return out
}

func hasPrefixAt(src []byte, i int, prefix string) bool {
	return i+len(prefix) <= len(src) && string(src[i:i+len(prefix)]) == prefix
}

func extractRuby(src []byte) []string {
	cleaned := string(stripRuby(src))
	var imports importList

	for _, line := range splitLines(cleaned) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if m := rubyRequire.FindStringSubmatch(trimmed); m != nil {
			imports.add(m[1])
			continue
		}
		if m := rubyAutoload.FindStringSubmatch(trimmed); m != nil {
			imports.add(m[1])
		}
	}
	return imports.list
}
