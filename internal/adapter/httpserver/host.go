package httpserver

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/idna"
)

var errEmptyHost = errors.New("empty host")

// NormalizeHost turns a Host header into the domain used for rule lookups:
// lower case, without port or trailing dot, internationalized names in
// their ASCII (punycode) form.
func NormalizeHost(hostHeader string) (string, error) {
	host := strings.TrimSpace(hostHeader)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.Trim(host, "[]"), ".")
	if host == "" {
		return "", errEmptyHost
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", hostHeader, err)
	}
	return strings.ToLower(ascii), nil
}
