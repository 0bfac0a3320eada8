// Package redact strips registry credentials from engine diagnostics before
// they are printed. Plugin resolution failures can echo npm configuration,
// including auth tokens.
package redact

import (
	"os"
	"regexp"
	"strings"
	"sync"
)

// tokenEnvVars name environment variables whose values must never reach
// output.
var tokenEnvVars = []string{
	"NPM_TOKEN",
	"NODE_AUTH_TOKEN",
	"YARN_NPM_AUTH_TOKEN",
	"GITHUB_TOKEN",
	"GH_TOKEN",
}

// npmrcAuth matches credential assignments in .npmrc syntax, for example
// "//registry.npmjs.org/:_authToken=abcd".
var npmrcAuth = regexp.MustCompile(`(_authToken|_auth|_password)\s*=\s*[^\s"']+`)

var (
	secrets     []string
	secretsOnce sync.Once
)

func loadSecrets() {
	for _, name := range tokenEnvVars {
		// Short values would redact ordinary words.
		if v := os.Getenv(name); len(v) >= 4 {
			secrets = append(secrets, v)
		}
	}
}

// ResetForTest forgets the cached token values so tests can set new ones
// with t.Setenv.
func ResetForTest() {
	secrets = nil
	secretsOnce = sync.Once{}
}

// String replaces token values and .npmrc credential assignments in s with
// "[REDACTED]". Token values are read from the environment once.
func String(s string) string {
	secretsOnce.Do(loadSecrets)
	for _, secret := range secrets {
		s = strings.ReplaceAll(s, secret, "[REDACTED]")
	}
	return npmrcAuth.ReplaceAllString(s, "$1=[REDACTED]")
}
