package textproc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
)

// Rule is one entry of the replacements file. Patterns are regular
// expressions applied in file order; IgnoreCase defaults to true to
// match how dictated text usually arrives.
type Rule struct {
	Match      string `json:"match"`
	Replace    string `json:"replace"`
	IgnoreCase *bool  `json:"ignore_case,omitempty"`
}

// LoadRules reads the replacement rules from path. A missing file is
// not an error: dictation works fine without any rules.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read rules %q: %w", path, err)
	}

	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rules %q: %w", path, err)
	}
	return rules, nil
}

type compiledRule struct {
	re      *regexp.Regexp
	replace string
}

// Replacer applies an ordered chain of regex replacements. Each rule
// sees the output of the previous one.
type Replacer struct {
	rules []compiledRule
}

// NewReplacer compiles the rule set. Invalid patterns are logged and
// skipped so one bad rule does not disable the rest of the chain.
func NewReplacer(rules []Rule, log *slog.Logger) *Replacer {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		pattern := r.Match
		if r.IgnoreCase == nil || *r.IgnoreCase {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			log.Warn("skipping invalid replacement rule", "pattern", r.Match, "error", err)
			continue
		}
		compiled = append(compiled, compiledRule{re: re, replace: r.Replace})
	}
	return &Replacer{rules: compiled}
}

// Apply runs the chain over text in rule order.
func (r *Replacer) Apply(text string) string {
	for _, rule := range r.rules {
		text = rule.re.ReplaceAllString(text, rule.replace)
	}
	return text
}

// Len reports how many rules compiled successfully.
func (r *Replacer) Len() int {
	return len(r.rules)
}
