// Package match implements subscription category matching.
//
// A subscription carries zero or more rules; each rule is a wildcard pattern
// plus an exception flag. Matching a single category value against a rule set
// follows three laws:
//
//   - An empty rule set matches every category.
//   - A non-exception rule matches when the category matches its pattern.
//   - An exception rule matches when the category does NOT match its pattern.
//
// The rules of a set combine with OR: the category matches the set when any
// single rule accepts it. Matching a *list* of categories combines with AND:
// every supplied category must independently pass the rule set.
//
// Patterns use SQL-LIKE wildcards ('%' matches any run, '_' matches a single
// character) and are evaluated case-insensitively, mirroring the collations
// the broker's tables use. Evaluation happens in Go rather than in the store
// so the semantics are portable across drivers and testable without a
// database.
package match

import (
	"regexp"
	"strings"
)

// Rule is one category pattern attached to a subscription.
type Rule struct {
	// Pattern is a LIKE-style wildcard expression, e.g. "orders.%".
	Pattern string
	// Exception inverts the rule: it accepts categories that do NOT match.
	Exception bool
}

// compiled pairs a rule's compiled pattern with its exception flag.
type compiled struct {
	re        *regexp.Regexp
	exception bool
}

// RuleSet is a compiled, immutable set of rules ready for matching.
// The zero value (no rules) matches everything.
type RuleSet struct {
	rules []compiled
}

// NewRuleSet compiles the given rules. It returns an error only when a
// translated pattern fails to compile, which cannot happen for patterns
// produced by Translate from any input; the error return guards against
// future translator changes.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{rules: make([]compiled, 0, len(rules))}
	for _, r := range rules {
		re, err := regexp.Compile(Translate(r.Pattern))
		if err != nil {
			return nil, err
		}
		rs.rules = append(rs.rules, compiled{re: re, exception: r.Exception})
	}
	return rs, nil
}

// Matches reports whether a single category value passes the rule set.
func (rs *RuleSet) Matches(category string) bool {
	if rs == nil || len(rs.rules) == 0 {
		return true
	}
	for _, r := range rs.rules {
		hit := r.re.MatchString(category)
		if r.exception {
			hit = !hit
		}
		if hit {
			return true
		}
	}
	return false
}

// MatchesAll reports whether every supplied category independently passes
// the rule set. An empty list is vacuously true (no filter applied).
func (rs *RuleSet) MatchesAll(categories []string) bool {
	for _, c := range categories {
		if !rs.Matches(c) {
			return false
		}
	}
	return true
}

// Len returns the number of rules in the set.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Translate converts a LIKE-style wildcard pattern into an anchored,
// case-insensitive regular expression source string. '%' becomes ".*",
// '_' becomes "."; everything else is matched literally. There is no
// escape character, matching LIKE without an ESCAPE clause.
func Translate(pattern string) string {
	var b strings.Builder
	b.WriteString("(?is)^")
	lit := func(s string) {
		if s != "" {
			b.WriteString(regexp.QuoteMeta(s))
		}
	}
	start := 0
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '%':
			lit(pattern[start:i])
			b.WriteString(".*")
			start = i + 1
		case '_':
			lit(pattern[start:i])
			b.WriteString(".")
			start = i + 1
		}
	}
	lit(pattern[start:])
	b.WriteString("$")
	return b.String()
}
