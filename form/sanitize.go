package form

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/pkevan/wp-chargify/values"
)

var validate = validator.New()

var (
	scriptOrStyle = regexp.MustCompile(`(?is)<(script|style)[^>]*?>.*?</(script|style)\s*>`)
	tag           = regexp.MustCompile(`(?s)<[^<>]*>`)
	space         = regexp.MustCompile(`[\r\n\t ]+`)
	octet         = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
)

// SanitizeText returns s made safe to store as a single line of plain
// text. Invalid UTF-8 yields "". Tags are removed along with the contents
// of script and style elements, a stray "<" is escaped, runs of whitespace
// become a single space, and percent-encoded octets are removed.
func SanitizeText(s string) string {
	if !utf8.ValidString(s) {
		return ""
	}
	if strings.Contains(s, "<") {
		s = scriptOrStyle.ReplaceAllString(s, "")
		s = tag.ReplaceAllString(s, "")
		s = strings.ReplaceAll(s, "<", "&lt;")
	}
	s = space.ReplaceAllString(s, " ")
	for octet.MatchString(s) {
		s = octet.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}

// SanitizeEmail returns s as a plain email address, or "" if s is not
// one.
func SanitizeEmail(s string) string {
	s = SanitizeText(s)
	if s == "" || validate.Var(s, "email") != nil {
		return ""
	}
	return s
}

// SanitizeEmailList sanitizes each address in the comma separated list s
// and drops those that are invalid.
func SanitizeEmailList(s string) string {
	var good []string
	for _, e := range strings.Split(s, ",") {
		if e = SanitizeEmail(e); e != "" {
			good = append(good, e)
		}
	}
	return strings.Join(good, ",")
}

// Sanitize returns the values in post for the given fields, sanitized
// according to their type. Keys not among fields are dropped, as are
// display-only fields and values that sanitize to "". A checked checkbox
// is recorded as "on". Passwords are kept as submitted.
func Sanitize(fields []Field, post url.Values) Values {
	m := make(map[string]string)
	for _, f := range fields {
		vv, ok := post[f.Key]
		if !ok || len(vv) == 0 {
			continue
		}
		raw := vv[0]
		var v string
		switch f.Type {
		case Display:
			continue
		case Checkbox:
			if values.Checked(raw) {
				v = "on"
			}
		case Password:
			v = raw
		case Email:
			v = SanitizeEmail(raw)
		case EmailList:
			v = SanitizeEmailList(raw)
		default:
			v = SanitizeText(raw)
		}
		if v != "" {
			m[f.Key] = v
		}
	}
	return Values{m: m}
}
