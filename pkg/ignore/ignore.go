// Package ignore implements the IgnoreFilter described in spec.md §4.3:
// gitignore-syntax matching against a repository's .dockignore file.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// matcher reports whether a rule's pattern applies to a candidate path and
// its basename. Every rule compiles down to one of these at parse time, so
// IsIgnored never has to re-inspect pattern syntax at match time.
type matcher func(path, base string) bool

// rule is one parsed .dockignore line together with its negation flag.
// Unlike a pattern-plus-flags struct inspected anew on every IsIgnored call,
// a rule already knows how to test itself.
type rule struct {
	negated bool
	match   matcher
}

// Checker decides whether a repository-relative, posix-separated path is
// ignored. A zero Checker (no patterns) ignores nothing.
//
// Rules are kept in file order and evaluated newest-first: since gitignore
// semantics say the last matching line wins, walking from the end and
// stopping at the first hit produces the same answer as scanning forward
// while remembering the highest matching index, without needing one.
type Checker struct {
	rules []rule
}

// New builds a Checker for the repository rooted at repoRoot. If
// .dockignore does not exist, the returned Checker's IsIgnored always
// returns false — spec.md §4.3 defines this as the missing-file behavior.
func New(repoRoot string) *Checker {
	c := &Checker{}

	f, err := os.Open(filepath.Join(repoRoot, ".dockignore"))
	if err != nil {
		return c
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if r, ok := compileLine(scanner.Text()); ok {
			c.rules = append(c.rules, r)
		}
	}
	return c
}

// compileLine turns one .dockignore line into a rule. It reports false for
// blank lines and comments, which carry no rule of their own.
func compileLine(line string) (rule, bool) {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	var negated bool
	if strings.HasPrefix(line, "!") {
		negated = true
		line = line[1:]
	}

	var dirOnly bool
	if strings.HasSuffix(line, "/") {
		dirOnly = true
		line = strings.TrimRight(line, "/")
	}

	hasSlash := strings.Contains(line, "/")
	return rule{negated: negated, match: buildMatcher(line, hasSlash, dirOnly)}, true
}

// buildMatcher compiles text into a matcher closure. Directory-only
// patterns match the directory itself or anything beneath it; everything
// else matches either against the full path (hasSlash) or just the
// basename, as a literal string or a compiled glob regex depending on
// whether text contains glob metacharacters.
func buildMatcher(text string, hasSlash, dirOnly bool) matcher {
	if dirOnly {
		return func(path, _ string) bool {
			return path == text || strings.HasPrefix(path, text+"/")
		}
	}

	if isLiteral(text) {
		if hasSlash {
			return func(path, _ string) bool { return path == text }
		}
		return func(_, base string) bool { return base == text }
	}

	re := regexp.MustCompile(globToRegex(text))
	if hasSlash {
		return func(path, _ string) bool { return re.MatchString(path) }
	}
	return func(_, base string) bool { return re.MatchString(base) }
}

func isLiteral(text string) bool {
	return !strings.ContainsAny(text, "*?[")
}

// IsIgnored reports whether path (posix-relative to the repository root)
// matches the ignore patterns. The last matching pattern wins, so a later
// negated (!) pattern can un-ignore an earlier match.
func (c *Checker) IsIgnored(path string) bool {
	if c == nil {
		return false
	}
	path = filepath.ToSlash(path)
	base := filepath.Base(path)

	for i := len(c.rules) - 1; i >= 0; i-- {
		r := c.rules[i]
		if r.match(path, base) {
			return !r.negated
		}
	}
	return false
}

// globToRegex translates a gitignore-style glob into an anchored regular
// expression: * and ? stay confined to a single path segment, ** spans any
// number of segments (including zero, when followed by a slash), and every
// other rune is escaped literally via regexp.QuoteMeta rather than an
// explicit metacharacter set.
func globToRegex(glob string) string {
	var b strings.Builder
	b.WriteByte('^')

	runes := []rune(glob)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				if i+2 < len(runes) && runes[i+2] == '/' {
					b.WriteString("(?:.*/)?")
					i += 2
				} else {
					b.WriteString(".*")
					i++
				}
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
		}
	}

	b.WriteByte('$')
	return b.String()
}
