// Package address validates the host and port a user types before a
// session is attempted.
package address

import (
	"fmt"
	"strconv"
	"strings"
)

// Field error messages.
const (
	ErrHostEmpty   = "host cannot be empty"
	ErrHostInvalid = "invalid host"
	ErrPortEmpty   = "port cannot be empty"
	ErrPortRange   = "port must be between 1 and 65535"
)

// Target is the raw, user-entered connection target. It is never
// normalized in place.
type Target struct {
	Host string
	Port string
}

// Result is the per-field outcome of validating a Target. An empty error
// string means the field is valid.
type Result struct {
	HostError   string `json:"hostError,omitempty"`
	PortError   string `json:"portError,omitempty"`
	Submittable bool   `json:"isSubmittable"`
}

// Validate checks host and port independently. It is pure and safe to call
// on every keystroke.
func Validate(host, port string) Result {
	r := Result{
		HostError: hostError(host),
		PortError: portError(port),
	}
	r.Submittable = r.HostError == "" && r.PortError == ""
	return r
}

// Validate is shorthand for Validate(t.Host, t.Port).
func (t Target) Validate() Result {
	return Validate(t.Host, t.Port)
}

// URL builds the websocket URL for the target. The caller is expected to
// have validated the target first.
func (t Target) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("ws://%s:%s%s", t.Host, t.Port, path)
}

func hostError(host string) string {
	if strings.TrimSpace(host) == "" {
		return ErrHostEmpty
	}
	if !IsIPv4(host) {
		return ErrHostInvalid
	}
	return ""
}

func portError(port string) string {
	if strings.TrimSpace(port) == "" {
		return ErrPortEmpty
	}
	if !isDigits(port) {
		return ErrPortRange
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return ErrPortRange
	}
	return ""
}

// IsIPv4 reports whether s is exactly four dot-separated groups of one to
// three digits, each in [0,255]. Nothing else is accepted: no surrounding
// whitespace, no empty groups, no signs.
func IsIPv4(s string) bool {
	groups := strings.Split(s, ".")
	if len(groups) != 4 {
		return false
	}
	for _, g := range groups {
		if len(g) < 1 || len(g) > 3 || !isDigits(g) {
			return false
		}
		n, _ := strconv.Atoi(g)
		if n > 255 {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
