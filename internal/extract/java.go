package extract

import "regexp"

var javaImport = regexp.MustCompile(`import\s+(?:static\s+)?([\w.*]+)`)

// stripJava removes comments while copying string and char literals through
// unchanged. Unlike the other strippers it rebuilds the output, dropping
// comment bytes entirely; the Java matcher runs over the whole text rather
// than per line, so column positions do not need to survive.
func stripJava(src []byte) []byte {
	out := make([]byte, 0, len(src))
	n := len(src)

	for i := 0; i < n; {
		c := src[i]
		switch {
		case c == '"':
			out = append(out, c)
			i++
			for i < n && src[i] != '"' {
				if src[i] == '\\' {
					out = append(out, src[i])
					i++
					if i < n {
						out = append(out, src[i])
						i++
					}
				} else {
					out = append(out, src[i])
					i++
				}
			}
			if i < n {
				out = append(out, src[i])
				i++
			}
		case c == '\'':
			out = append(out, c)
			i++
			for i < n && src[i] != '\'' {
				if src[i] == '\\' {
					out = append(out, src[i])
					i++
					if i < n {
						out = append(out, src[i])
						i++
					}
				} else {
					out = append(out, src[i])
					i++
				}
			}
			if i < n {
				out = append(out, src[i])
				i++
			}
		case c == '/' && i+1 < n && src[i+1] == '/':
			for i < n && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && src[i+1] == '*':
			i += 2
			for i+1 < n && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			i += 2
		default:
			out = append(out, c)
			i++
		}
	}
	return out
}

func extractJava(src []byte) []string {
	cleaned := string(stripJava(src))
	var imports importList
	for _, m := range javaImport.FindAllStringSubmatch(cleaned, -1) {
		imports.add(m[1])
	}
	return imports.list
}
