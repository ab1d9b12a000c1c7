package main

import (
	"net/url"
	"regexp"
	"strings"
)

const redactedMark = "[redacted]"

// keyValuePassword matches libpq style "password=..." fragments.
var keyValuePassword = regexp.MustCompile(`(?i)password=[^\s&]+`)

// redactURL masks the password of a connection URL. Unparseable input is
// replaced entirely.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return redactedMark
	}
	return u.Redacted()
}

// sanitizeError renders err with every connection string in secrets
// replaced by its redacted form.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	pairs := make([]string, 0, 2*len(secrets))
	for _, s := range secrets {
		if s != "" {
			pairs = append(pairs, s, redactURL(s))
		}
	}
	msg := strings.NewReplacer(pairs...).Replace(err.Error())

	return keyValuePassword.ReplaceAllString(msg, "password="+redactedMark)
}
