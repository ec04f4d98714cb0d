package session

import (
	"regexp"
	"strings"
)

// Player page assignments carrying the session tokens, e.g.
//
//	amznMusic.customerId = 'A1B2C3';
var (
	customerIDPattern = regexp.MustCompile(`amznMusic\.customerId\s*=\s*['"]([^'"]+)['"]\s*;`)
	adpTokenPattern   = regexp.MustCompile(`amznMusic\.tid\s*=\s*['"]([^'"]+)['"]\s*;`)
	deviceIDPattern   = regexp.MustCompile(`amznMusic\.did\s*=\s*['"]([^'"]+)['"]\s*;`)
	deviceTypePattern = regexp.MustCompile(`amznMusic\.dtid\s*=\s*['"]([^'"]+)['"]\s*;`)
)

type tokenField struct {
	name    string
	pattern *regexp.Regexp
	dst     func(*Credentials) *string
}

var tokenFields = []tokenField{
	{"customerId", customerIDPattern, func(c *Credentials) *string { return &c.CustomerID }},
	{"tid", adpTokenPattern, func(c *Credentials) *string { return &c.ADPToken }},
	{"did", deviceIDPattern, func(c *Credentials) *string { return &c.DeviceID }},
	{"dtid", deviceTypePattern, func(c *Credentials) *string { return &c.DeviceType }},
}

// Extract finds the four session tokens anywhere in page. Each pattern runs
// independently over the whole text, so line order and unrelated content
// do not matter. The returned Credentials carry no cookies.
func Extract(page string) (Credentials, error) {
	var creds Credentials
	var missing []string

	for _, f := range tokenFields {
		m := f.pattern.FindStringSubmatch(page)
		if m == nil {
			missing = append(missing, f.name)
			continue
		}
		*f.dst(&creds) = m[1]
	}

	if len(missing) > 0 {
		return Credentials{}, authFailed("player page lacks amznMusic.%s", strings.Join(missing, ", amznMusic."))
	}
	return creds, nil
}
