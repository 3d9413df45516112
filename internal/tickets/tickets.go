// Package tickets turns ticket URLs into the short display names shown on
// ticket badges ("WID-12", "widget#40").
package tickets

import (
	"net/url"
	"strings"

	qaerrors "github.com/Iron-Ham/qanotes/internal/errors"
	"github.com/gobwas/glob"
)

// Resolver maps a ticket URL to its badge text.
type Resolver interface {
	DisplayName(ticketURL string) (string, error)
}

// Rule matches a whole ticket URL against a glob pattern and formats the
// badge text from Display. Display may reference {host}, {owner}, {repo}
// and {last} (the final path segment).
//
// Patterns use '/' as the separator, so '*' stays within one path segment
// and '**' spans several.
type Rule struct {
	Pattern string `mapstructure:"pattern" yaml:"pattern"`
	Display string `mapstructure:"display" yaml:"display"`
}

// BuiltinRules covers the trackers the release tooling links to out of the box.
func BuiltinRules() []Rule {
	return []Rule{
		{Pattern: "{http,https}://github.com/*/*/issues/*", Display: "{repo}#{last}"},
		{Pattern: "{http,https}://github.com/*/*/pull/*", Display: "{repo}#{last}"},
		{Pattern: "{http,https}://gitlab.*/**/-/issues/*", Display: "{repo}#{last}"},
		{Pattern: "{http,https}://gitlab.*/**/-/merge_requests/*", Display: "{repo}!{last}"},
		{Pattern: "{http,https}://*/browse/*", Display: "{last}"},
		{Pattern: "{http,https}://*/issues/*", Display: "#{last}"},
	}
}

type compiledRule struct {
	Rule
	g glob.Glob
}

// Matcher is the default Resolver. Rules are tried in order, configured
// rules before the built-ins.
type Matcher struct {
	rules  []compiledRule
	strict bool
}

var _ Resolver = (*Matcher)(nil)

// NewMatcher compiles rules followed by BuiltinRules. With strict set, a URL
// no rule matches is an error; otherwise the URL itself is shown.
func NewMatcher(rules []Rule, strict bool) (*Matcher, error) {
	m := &Matcher{strict: strict}
	all := append(append([]Rule{}, rules...), BuiltinRules()...)
	for _, r := range all {
		g, err := glob.Compile(r.Pattern, '/')
		if err != nil {
			return nil, qaerrors.NewTicketError("compile rule "+r.Pattern, qaerrors.Join(qaerrors.ErrBadTicketRule, err))
		}
		m.rules = append(m.rules, compiledRule{Rule: r, g: g})
	}
	return m, nil
}

// DisplayName implements Resolver.
func (m *Matcher) DisplayName(ticketURL string) (string, error) {
	for _, r := range m.rules {
		if r.g.Match(ticketURL) {
			return expand(r.Display, ticketURL), nil
		}
	}
	if !m.strict {
		return ticketURL, nil
	}
	return "", qaerrors.NewTicketError("no rule matches ticket URL", qaerrors.ErrUnknownTicketFormat).WithURL(ticketURL)
}

func expand(display, ticketURL string) string {
	u, err := url.Parse(ticketURL)
	if err != nil {
		return ticketURL
	}
	var segs []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	at := func(i int) string {
		if i >= 0 && i < len(segs) {
			return segs[i]
		}
		return ""
	}
	return strings.NewReplacer(
		"{host}", u.Host,
		"{owner}", at(0),
		"{repo}", at(1),
		"{last}", at(len(segs)-1),
	).Replace(display)
}
