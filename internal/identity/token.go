package identity

import (
	"errors"
	"strings"
)

// ErrNoToken is returned when the Authorization header yields no usable token.
var ErrNoToken = errors.New("no token provided")

// ExtractBearerToken pulls the token out of an Authorization header value.
// The "Bearer" prefix is optional and matched case-insensitively, mirroring
// how permissive clients send it. Returns ErrNoToken when nothing remains
// after trimming.
func ExtractBearerToken(header string) (string, error) {
	token := strings.TrimSpace(header)

	const prefix = "bearer"
	if len(token) >= len(prefix) && strings.EqualFold(token[:len(prefix)], prefix) {
		rest := token[len(prefix):]
		// Require whitespace after the scheme so a token that merely starts
		// with "bearer" is left intact.
		if rest == "" {
			return "", ErrNoToken
		}
		if trimmed := strings.TrimLeft(rest, " \t"); trimmed != rest {
			token = trimmed
		}
	}

	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}
