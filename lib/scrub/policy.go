// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

// Package scrub redacts secrets from crash payloads before they leave
// memory.
//
// Flight recordings are raw program output and routinely contain the
// exact material an operator least wants written to disk: bearer
// tokens from logged HTTP headers, environment dumps, pasted identity
// keys. A Policy is an ordered list of named regular-expression rules
// plus an optional size cap; the persist handler and the collector
// apply it to the fault message and the flight snapshot before the
// crash record is encoded.
//
// Policies are authored as JSONC files (JSON extended with comments
// and trailing commas):
//
//	{
//	  // Rules run top to bottom.
//	  "rules": [
//	    {"name": "bearer-token", "pattern": "(?i)\\b(bearer)\\s+\\S{8,}", "replace": "${1} [scrubbed]"},
//	  ],
//	  "max_bytes": 65536,
//	}
//
// Use Default for the built-in rules when no policy file is
// configured.
package scrub

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/tidwall/jsonc"
)

// DefaultMaxBytes is the size cap of the built-in policy. It matches
// the default flight recorder capacity, so an uncustomized pipeline
// never truncates.
const DefaultMaxBytes = 64 * 1024

// Rule is one named redaction rule as authored in a policy file.
type Rule struct {
	// Name identifies the rule in errors and in the default
	// replacement tag.
	Name string `json:"name"`
	// Pattern is a Go (RE2) regular expression.
	Pattern string `json:"pattern"`
	// Replace is the replacement text. Capture references ($1,
	// ${name}) are expanded. Empty means "[scrubbed:<name>]".
	Replace string `json:"replace,omitempty"`
}

// Policy is a compiled, immutable redaction policy. A nil *Policy is
// valid and redacts nothing, so callers can thread an optional policy
// without nil checks.
type Policy struct {
	rules    []compiledRule
	maxBytes int
}

type compiledRule struct {
	name    string
	pattern *regexp.Regexp
	replace []byte
}

// policyFile is the on-disk shape after comment stripping.
type policyFile struct {
	Rules    []Rule `json:"rules"`
	MaxBytes int    `json:"max_bytes"`
}

// Compile builds a Policy from rules, validating each one. maxBytes
// caps the input size of Apply; zero disables the cap. Rules apply in
// the order given.
func Compile(rules []Rule, maxBytes int) (*Policy, error) {
	if maxBytes < 0 {
		return nil, fmt.Errorf("max_bytes must be non-negative, got %d", maxBytes)
	}

	policy := &Policy{maxBytes: maxBytes}
	seen := make(map[string]int, len(rules))
	for index, rule := range rules {
		if rule.Name == "" {
			return nil, fmt.Errorf("rules[%d]: name is required", index)
		}
		if firstIndex, exists := seen[rule.Name]; exists {
			return nil, fmt.Errorf("rules[%d] %q: duplicate rule name (first used at rules[%d])",
				index, rule.Name, firstIndex)
		}
		seen[rule.Name] = index

		if rule.Pattern == "" {
			return nil, fmt.Errorf("rules[%d] %q: pattern is required", index, rule.Name)
		}
		pattern, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rules[%d] %q: %w", index, rule.Name, err)
		}

		replace := rule.Replace
		if replace == "" {
			replace = "[scrubbed:" + rule.Name + "]"
		}
		policy.rules = append(policy.rules, compiledRule{
			name:    rule.Name,
			pattern: pattern,
			replace: []byte(replace),
		})
	}
	return policy, nil
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals and compiles the policy.
func Parse(data []byte) (*Policy, error) {
	stripped := jsonc.ToJSON(data)

	var file policyFile
	if err := json.Unmarshal(stripped, &file); err != nil {
		return nil, fmt.Errorf("parsing policy: %w", err)
	}
	return Compile(file.Rules, file.MaxBytes)
}

// Load reads a JSONC policy file from disk and compiles it. Returns a
// descriptive error if the file cannot be read, the JSON is
// malformed, or a rule does not compile.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	policy, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return policy, nil
}

// Apply redacts data according to the policy. When the input exceeds
// the size cap, only the trailing cap bytes are kept before the rules
// run: the end of a flight recording is the part closest to the
// fault. The input slice is never modified; the result may alias it
// when nothing matched.
func (p *Policy) Apply(data []byte) []byte {
	if p == nil || len(data) == 0 {
		return data
	}
	if p.maxBytes > 0 && len(data) > p.maxBytes {
		data = data[len(data)-p.maxBytes:]
	}
	for _, rule := range p.rules {
		data = rule.pattern.ReplaceAll(data, rule.replace)
	}
	return data
}

// ApplyString is Apply for strings.
func (p *Policy) ApplyString(s string) string {
	if p == nil || s == "" {
		return s
	}
	return string(p.Apply([]byte(s)))
}

// RuleNames returns the rule names in application order.
func (p *Policy) RuleNames() []string {
	if p == nil {
		return nil
	}
	names := make([]string, len(p.rules))
	for index, rule := range p.rules {
		names[index] = rule.name
	}
	return names
}

// MaxBytes returns the size cap, or zero when the policy is uncapped.
func (p *Policy) MaxBytes() int {
	if p == nil {
		return 0
	}
	return p.maxBytes
}
