package script

import (
	"strings"
)

// builtinVariables are the NSIS variables and constants recognised after a
// '$' inside a string.
var builtinVariables = []string{
	"ADMINTOOLS", "APPDATA", "CDBURN_AREA", "CMDLINE", "COMMONFILES",
	"COMMONFILES32", "COMMONFILES64", "COOKIES", "DESKTOP", "DOCUMENTS",
	"EXEDIR", "EXEFILE", "EXEPATH", "FAVORITES", "FONTS", "HISTORY",
	"HWNDPARENT", "INSTDIR", "INTERNET_CACHE", "LANGUAGE", "LOCALAPPDATA",
	"MUSIC", "NETHOOD", "OUTDIR", "PICTURES", "PLUGINSDIR", "PRINTHOOD",
	"PROFILE", "PROGRAMFILES", "PROGRAMFILES32", "PROGRAMFILES64",
	"QUICKLAUNCH", "RECENT", "RESOURCES", "RESOURCES_LOCALIZED", "SENDTO",
	"SMPROGRAMS", "SMSTARTUP", "STARTMENU", "SYSDIR", "TEMP", "TEMPLATES",
	"VIDEOS", "WINDIR",
}

// quoter escapes literals for double-quoted NSIS strings.
type quoter struct {
	vars map[string]bool
}

func newQuoter(extra []string) *quoter {
	q := &quoter{vars: make(map[string]bool, len(builtinVariables)+len(extra))}
	for _, v := range builtinVariables {
		q.vars[v] = true
	}
	for _, v := range extra {
		q.vars[v] = true
	}
	return q
}

// Quote escapes s and wraps it in double quotes. References to NSIS
// variables are kept; every other '$' is doubled.
func (q *quoter) Quote(s string) string {
	return `"` + q.Escape(s) + `"`
}

// Escape escapes s for use inside a double-quoted NSIS string.
func (q *quoter) Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`$\"`)
		case '\r':
			b.WriteString(`$\r`)
		case '\n':
			b.WriteString(`$\n`)
		case '\t':
			b.WriteString(`$\t`)
		case '$':
			n := q.reference(s[i:])
			if n == 0 {
				b.WriteString("$$")
				continue
			}
			b.WriteString(s[i : i+n])
			i += n - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// reference returns the length of the NSIS reference at the start of s, or
// zero when the '$' is literal.
func (q *quoter) reference(s string) int {
	if len(s) < 2 {
		return 0
	}
	switch c := s[1]; {
	case c == '$':
		return 2
	case c >= '0' && c <= '9':
		return 2
	case c == 'R' && len(s) >= 3 && s[2] >= '0' && s[2] <= '9':
		return 3
	case c == '{':
		return enclosed(s, '}', isDefineChar)
	case c == '(':
		return enclosed(s, ')', isLangChar)
	case c == '%':
		return enclosed(s, '%', isEnvChar)
	case isIdentChar(c):
		return q.variable(s)
	default:
		return 0
	}
}

// variable matches the longest known variable name after the '$'.
func (q *quoter) variable(s string) int {
	end := 1
	for end < len(s) && isIdentChar(s[end]) {
		end++
	}
	for n := end; n > 1; n-- {
		if q.vars[s[1:n]] {
			return n
		}
	}
	return 0
}

func enclosed(s string, closing byte, valid func(byte) bool) int {
	for i := 2; i < len(s); i++ {
		if s[i] == closing {
			if i == 2 {
				return 0
			}
			return i + 1
		}
		if !valid(s[i]) {
			return 0
		}
	}
	return 0
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '.' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDefineChar(c byte) bool {
	return isIdentChar(c) || c == ':' || c == '-'
}

func isLangChar(c byte) bool {
	return isIdentChar(c) || c == '^'
}

func isEnvChar(c byte) bool {
	return c != '"' && c != '$' && c != '\r' && c != '\n'
}
