package config

import (
	"errors"
	"os"
	"strings"
)

// PasswordEnv is the environment variable consulted for the router password
const PasswordEnv = "FRITZ_PASSWORD"

// ErrPasswordRequired is returned when no password source yields a value
var ErrPasswordRequired = errors.New("password required")

// PasswordSource describes where a password may come from, in order of
// precedence: Flag, then the FRITZ_PASSWORD environment variable, then
// Prompt (only when set).
type PasswordSource struct {
	Flag   string
	Prompt func() (string, error)
}

// ResolvePassword returns the first non-empty password from src
func ResolvePassword(src PasswordSource) (string, error) {
	if src.Flag != "" {
		return src.Flag, nil
	}

	if env := os.Getenv(PasswordEnv); env != "" {
		return env, nil
	}

	if src.Prompt != nil {
		pw, err := src.Prompt()
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}

	return "", ErrPasswordRequired
}
