// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package scrub

// Default returns the built-in policy: bearer tokens, environment
// assignments whose names look secret-bearing, and age identity keys,
// capped at DefaultMaxBytes. Programs needing different rules author
// a policy file and Load it instead.
//
// The returned Policy is shared and immutable.
func Default() *Policy {
	return defaultPolicy
}

var defaultPolicy = mustCompile([]Rule{
	{
		// Authorization headers and copy-pasted tokens. The minimum
		// length keeps prose like "bearer of" intact.
		Name:    "bearer-token",
		Pattern: `(?i)\b(bearer)\s+[a-z0-9._~+/=-]{8,}`,
		Replace: "${1} [scrubbed]",
	},
	{
		// Environment dumps: NAME=value where NAME suggests a secret.
		// Quoted values are consumed whole so spaces inside quotes do
		// not leak a partial value.
		Name:    "env-secret",
		Pattern: `\b([A-Z0-9_]*(?:KEY|TOKEN|SECRET|PASSWORD)[A-Z0-9_]*)=("[^"]*"|'[^']*'|\S+)`,
		Replace: "${1}=[scrubbed]",
	},
	{
		// age identity keys (Bech32, AGE-SECRET-KEY-1 prefix). Lenient
		// on length so wrapped or truncated keys are still caught.
		Name:    "age-key",
		Pattern: `\bAGE-SECRET-KEY-1[A-Z0-9]{10,}\b`,
	},
}, DefaultMaxBytes)

// mustCompile is Compile for the package's own constant rule set,
// where a failure is a programming error.
func mustCompile(rules []Rule, maxBytes int) *Policy {
	policy, err := Compile(rules, maxBytes)
	if err != nil {
		panic("scrub: " + err.Error())
	}
	return policy
}
