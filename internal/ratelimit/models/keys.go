package models

import "strings"

const ipKeyPrefix = "ip:"

// SanitizeKeySegment replaces ':' so an identifier cannot spill into the next
// key segment. IPv6 addresses rely on this.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// NewIPKey returns the bucket key for a client IP.
func NewIPKey(ip string) string {
	if ip == "" {
		ip = "unknown"
	}
	return ipKeyPrefix + SanitizeKeySegment(ip)
}
