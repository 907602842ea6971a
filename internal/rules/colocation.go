package rules

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Name patterns that identify test files themselves; these always pass the
// colocation check.
var testFilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\.(test|spec)\.`),
	regexp.MustCompile(`\.d\.ts$`),
	regexp.MustCompile(`(Test|Tests|IT|Spec)\.java$`),
	regexp.MustCompile(`_test\.(go|dart|rb)$`),
	regexp.MustCompile(`_spec\.rb$`),
	regexp.MustCompile(`(Test|Tests)\.kt$`),
	regexp.MustCompile(`(Tests)\.swift$`),
	regexp.MustCompile(`(Tests|Test)\.cs$`),
	regexp.MustCompile(`(Test)\.php$`),
}

var sourceExtPattern = regexp.MustCompile(`\.(ts|js|py|java|go|rs|dart|kt|kts|swift|cs|php|rb)$`)

// IsTestFile reports whether a file is itself a test by naming convention.
func IsTestFile(relPath string) bool {
	for _, pat := range testFilePatterns {
		if pat.MatchString(relPath) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// HasColocatedTest reports whether a source file has a test colocated by the
// conventions of its language: a sibling .test/.spec file, a same-directory
// suffix form, a mirrored test-root form, or (for Rust) an in-file test
// module or project-root tests/ file. Non-source extensions and test files
// themselves always pass.
func HasColocatedTest(root, absPath, relPath string) bool {
	if !sourceExtPattern.MatchString(relPath) {
		return true
	}
	if IsTestFile(relPath) {
		return true
	}

	ext := strings.TrimPrefix(filepath.Ext(absPath), ".")
	base := strings.TrimSuffix(absPath, "."+ext)
	stem := filepath.Base(base)
	dir := filepath.Dir(absPath)

	// Generic sibling forms work for every language.
	if fileExists(base+".test."+ext) || fileExists(base+".spec."+ext) {
		return true
	}

	switch ext {
	case "java":
		for _, suffix := range []string{"Test.java", "Tests.java", "IT.java"} {
			if fileExists(filepath.Join(dir, stem+suffix)) {
				return true
			}
		}
		if strings.Contains(absPath, "/src/main/java/") {
			mirror := strings.TrimSuffix(strings.Replace(absPath, "src/main/java", "src/test/java", 1), ".java")
			for _, suffix := range []string{"Test.java", "Tests.java", "IT.java"} {
				if fileExists(mirror + suffix) {
					return true
				}
			}
		}

	case "go":
		if fileExists(filepath.Join(dir, stem+"_test.go")) {
			return true
		}

	case "rs":
		if content, err := os.ReadFile(absPath); err == nil && strings.Contains(string(content), "#[cfg(test)]") {
			return true
		}
		if fileExists(filepath.Join(root, "tests", stem+".rs")) ||
			fileExists(filepath.Join(root, "tests", "test_"+stem+".rs")) {
			return true
		}

	case "dart":
		if fileExists(filepath.Join(dir, stem+"_test.dart")) {
			return true
		}
		if strings.Contains(absPath, "/lib/") {
			mirror := strings.TrimSuffix(strings.Replace(absPath, "/lib/", "/test/", 1), ".dart")
			if fileExists(mirror + "_test.dart") {
				return true
			}
		}

	case "kt", "kts":
		for _, suffix := range []string{"Test.kt", "Tests.kt"} {
			if fileExists(filepath.Join(dir, stem+suffix)) {
				return true
			}
		}
		if strings.Contains(absPath, "/src/main/") {
			mirror := strings.Replace(absPath, "src/main/kotlin", "src/test/kotlin", 1)
			mirror = strings.Replace(mirror, "src/main/java", "src/test/java", 1)
			mirror = strings.TrimSuffix(mirror, "."+ext)
			if fileExists(mirror+"Test.kt") || fileExists(mirror+"Tests.kt") {
				return true
			}
		}

	case "swift":
		if fileExists(filepath.Join(dir, stem+"Tests.swift")) {
			return true
		}
		if strings.Contains(absPath, "/Sources/") {
			mirror := strings.TrimSuffix(strings.Replace(absPath, "/Sources/", "/Tests/", 1), ".swift")
			if fileExists(mirror + "Tests.swift") {
				return true
			}
		}

	case "cs":
		if fileExists(filepath.Join(dir, stem+"Tests.cs")) || fileExists(filepath.Join(dir, stem+"Test.cs")) {
			return true
		}

	case "php":
		if fileExists(filepath.Join(dir, stem+"Test.php")) {
			return true
		}
		if strings.Contains(absPath, "/src/") {
			mirror := strings.TrimSuffix(strings.Replace(absPath, "/src/", "/tests/", 1), ".php")
			if fileExists(mirror + "Test.php") {
				return true
			}
		}

	case "rb":
		if fileExists(filepath.Join(dir, stem+"_test.rb")) || fileExists(filepath.Join(dir, stem+"_spec.rb")) {
			return true
		}
		if strings.Contains(absPath, "/app/") {
			testMirror := strings.TrimSuffix(strings.Replace(absPath, "/app/", "/test/", 1), ".rb")
			specMirror := strings.TrimSuffix(strings.Replace(absPath, "/app/", "/spec/", 1), ".rb")
			if fileExists(testMirror+"_test.rb") || fileExists(specMirror+"_spec.rb") {
				return true
			}
		}
	}

	return false
}
