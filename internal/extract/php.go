package extract

import (
	"regexp"
	"strings"
)

const (
	phCode = iota
	phLineComment
	phBlockComment
	phSingleString
	phDoubleString
	phHeredoc
)

var (
	phpUseSimple = regexp.MustCompile(`^use\s+(?:function\s+|const\s+)?([\w\\]+)\s*(?:as\s+\w+\s*)?;`)
	phpUseGroup  = regexp.MustCompile(`^use\s+(?:function\s+|const\s+)?([\w\\]+)\\\{([^}]+)\}`)
	phpRequire   = regexp.MustCompile(`^(?:require_once|require|include_once|include)\s+['"](.+?)['"]`)
)

// stripPHP blanks comments to spaces. `#` opens a comment except in the
// `#[` attribute form. Heredoc/nowdoc bodies (<<<ID, <<<'ID') run until a
// line whose content starts with the identifier.
func stripPHP(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	state := phCode
	heredocID := ""
	n := len(src)

	for i := 0; i < n; {
		ch := src[i]

		switch state {
		case phCode:
			if ch == '/' && i+1 < n {
				switch src[i+1] {
				case '/':
					out[i], out[i+1] = ' ', ' '
					state = phLineComment
					i += 2
					continue
				case '*':
					out[i], out[i+1] = ' ', ' '
					state = phBlockComment
					i += 2
					continue
				}
			}
			if ch == '#' && (i+1 >= n || src[i+1] != '[') {
				out[i] = ' '
				state = phLineComment
				i++
				continue
			}
			// Heredoc/Nowdoc: <<<IDENTIFIER or <<<'IDENTIFIER'
			if ch == '<' && i+2 < n && src[i+1] == '<' && src[i+2] == '<' {
				j := i + 3
				for j < n && (src[j] == ' ' || src[j] == '\t') {
					j++
				}
				nowdoc := false
				if j < n && src[j] == '\'' {
					nowdoc = true
					j++
				}
				idStart := j
				for j < n && isWordByte(src[j]) {
					j++
				}
				if j > idStart {
					heredocID = string(src[idStart:j])
					if nowdoc && j < n && src[j] == '\'' {
						j++
					}
					for j < n && src[j] != '\n' {
						j++
					}
					state = phHeredoc
					i = j
					continue
				}
			}
			switch ch {
			case '\'':
				state = phSingleString
			case '"':
				state = phDoubleString
			}
			i++

		case phLineComment:
			if ch == '\n' {
				state = phCode
			} else {
				out[i] = ' '
			}
			i++

		case phBlockComment:
			if ch == '*' && i+1 < n && src[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				state = phCode
				i += 2
				continue
			}
			if ch != '\n' {
				out[i] = ' '
			}
			i++

		case phSingleString:
			// Only \\ and \' escape in single-quoted strings.
			if ch == '\\' && i+1 < n && (src[i+1] == '\\' || src[i+1] == '\'') {
				i += 2
				continue
			}
			if ch == '\'' {
				state = phCode
			}
			i++

		case phDoubleString:
			if ch == '\\' && i+1 < n {
				i += 2
				continue
			}
			if ch == '"' {
				state = phCode
			}
			i++

		case phHeredoc:
			if ch == '\n' {
				j := i + 1
				for j < n && (src[j] == ' ' || src[j] == '\t') {
					j++
				}
				if j+len(heredocID) <= n && string(src[j:j+len(heredocID)]) == heredocID {
					after := j + len(heredocID)
					if after >= n || src[after] == '\n' || src[after] == ';' {
						state = phCode
						i = after
						continue
					}
				}
			}
			i++
		}
	}

	return out
}

func extractPHP(src []byte) []string {
	cleaned := string(stripPHP(src))
	var imports importList

	for _, line := range splitLines(cleaned) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// use App\Services\UserService [as US];
		if m := phpUseSimple.FindStringSubmatch(trimmed); m != nil {
			imports.add(m[1])
			continue
		}

		// use App\Models\{User, Role as R};
		if m := phpUseGroup.FindStringSubmatch(trimmed); m != nil {
			prefix := m[1]
			for _, item := range strings.Split(m[2], ",") {
				item = strings.TrimSpace(item)
				if idx := strings.Index(item, " as "); idx >= 0 {
					item = strings.TrimSpace(item[:idx])
				}
				if item != "" {
					imports.add(prefix + `\` + item)
				}
			}
			continue
		}

		if m := phpRequire.FindStringSubmatch(trimmed); m != nil {
			imports.add(m[1])
		}
	}
	return imports.list
}
