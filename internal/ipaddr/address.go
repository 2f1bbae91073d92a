// Package ipaddr parses the address tokens that make up a DHCP pool range.
//
// A token is classified by family before it is judged: callers such as the
// range validator accept only dotted-quad IPv4, but still need to tell a bare
// integer or an IPv6 literal apart from garbage when reporting problems.
package ipaddr

import (
	"strconv"
	"strings"

	"inet.af/netaddr"
)

// Family identifies the notation an address token was written in.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyV4Quads
	FamilyV4Int
	FamilyV6
)

func (f Family) String() string {
	switch f {
	case FamilyV4Quads:
		return "v4-quads"
	case FamilyV4Int:
		return "v4-int"
	case FamilyV6:
		return "v6"
	default:
		return "unknown"
	}
}

// RangeSeparator separates the first and last address of a range string.
const RangeSeparator = " "

// Address is one parsed token. IP is the zero value unless Valid is true.
type Address struct {
	Text   string
	Valid  bool
	Family Family
	IP     netaddr.IP
}

// IsV4Quads reports whether the token is a valid dotted-quad IPv4 address.
func (a Address) IsV4Quads() bool {
	return a.Valid && a.Family == FamilyV4Quads
}

// Parse classifies s and parses it when it is a recognised notation.
// A bare decimal number is an IPv4 address in integer form, anything holding
// a colon is treated as IPv6, and everything else must be a dotted quad.
func Parse(s string) Address {
	addr := Address{Text: s}
	if s == "" {
		return addr
	}

	switch {
	case isDigits(s):
		addr.Family = FamilyV4Int
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return addr
		}
		addr.IP = netaddr.IPv4(uint8(n>>24), uint8(n>>16), uint8(n>>8), uint8(n))
		addr.Valid = true
	case strings.Contains(s, ":"):
		addr.Family = FamilyV6
		ip, err := netaddr.ParseIP(s)
		if err != nil || !ip.Is6() {
			return addr
		}
		addr.IP = ip
		addr.Valid = true
	default:
		addr.Family = FamilyV4Quads
		ip, err := netaddr.ParseIP(s)
		if err != nil || !ip.Is4() {
			return addr
		}
		addr.IP = ip
		addr.Valid = true
	}
	return addr
}

// SplitRange splits a range string on the single-space separator. Repeated
// spaces produce empty tokens, so "a  b" yields three tokens.
func SplitRange(text string) []string {
	return strings.Split(text, RangeSeparator)
}

// ParseRange parses "first last" where both tokens are dotted-quad IPv4
// addresses. ok is false for any other shape. The order of the two
// addresses is not checked.
func ParseRange(text string) (first, last Address, ok bool) {
	parts := SplitRange(text)
	if len(parts) != 2 {
		return Address{}, Address{}, false
	}
	first, last = Parse(parts[0]), Parse(parts[1])
	if !first.IsV4Quads() || !last.IsV4Quads() {
		return first, last, false
	}
	return first, last, true
}

// FormatRange joins two addresses into the canonical range string.
func FormatRange(first, last netaddr.IP) string {
	return first.String() + RangeSeparator + last.String()
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
