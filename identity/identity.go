// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package identity validates voter identifiers and phone addresses.
package identity

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/danielhkuo/quickly-vote/apperr"
)

// WhatsAppPrefix marks a phone address that should be reached over WhatsApp.
const WhatsAppPrefix = "whatsapp:"

// Channel hints passed to the remote verify service.
const (
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
)

var (
	voterIDRegex = regexp.MustCompile(`^V\d{5}$`)
	phoneRegex   = regexp.MustCompile(`^(?:whatsapp:)?\+[1-9]\d{1,14}$`)
)

// NormalizeVoterID uppercases a raw voter id without validating it.
// Whitespace is kept, so padded ids fail validation.
func NormalizeVoterID(raw string) string {
	return strings.ToUpper(raw)
}

// ValidateVoterID returns the normalized voter id (e.g. "V12345") or
// apperr.ErrInvalidVoterID.
func ValidateVoterID(raw string) (string, error) {
	id := NormalizeVoterID(raw)
	if !voterIDRegex.MatchString(id) {
		return "", apperr.ErrInvalidVoterID
	}
	return id, nil
}

// ValidatePhone strips all whitespace and checks the E.164 shape, with an
// optional "whatsapp:" prefix.
func ValidatePhone(raw string) (string, error) {
	phone := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if !phoneRegex.MatchString(phone) {
		return "", apperr.ErrInvalidPhone
	}
	return phone, nil
}

// ChannelHint picks the delivery channel implied by a phone address.
func ChannelHint(phone string) string {
	if strings.HasPrefix(phone, WhatsAppPrefix) {
		return ChannelWhatsApp
	}
	return ChannelSMS
}
