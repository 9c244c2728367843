// Package dn decomposes LDAP distinguished names against the fixed
// container patterns used throughout the directory schema (spec.md §4.1).
// Unlike the teacher's directory code, which leans on go-ldap's DN parser
// for everything, this parser is self-contained: spec.md §9 calls out the
// source's ambient-library DN splitting as a design smell to replace with
// an explicit RDN-sequence parser of our own.
package dn

import (
	"strings"

	"github.com/l0p7/hbacd/internal/herr"
)

// Kind identifies which object a DN is expected to name.
type Kind int

const (
	KindUser Kind = iota
	KindHost
	KindService
)

// rdn is a single parsed (attribute, value) component. Multi-valued RDNs
// are rejected at parse time; this type never represents one.
type rdn struct {
	attr string
	val  string
}

// container describes the fixed RDN prefix (nearest-to-leaf first, leaf
// excluded) that classifies a container, plus the attribute of the leaf
// RDN holding the name.
type container struct {
	prefix  []rdn // e.g. {cn=users}, {cn=accounts}
	leafKey string
}

var nameContainers = map[Kind]container{
	KindUser:    {prefix: []rdn{{"cn", "users"}, {"cn", "accounts"}}, leafKey: "uid"},
	KindHost:    {prefix: []rdn{{"cn", "computers"}, {"cn", "accounts"}}, leafKey: "fqdn"},
	KindService: {prefix: []rdn{{"cn", "hbacservices"}, {"cn", "hbac"}}, leafKey: "cn"},
}

var groupContainers = map[Kind]container{
	KindUser:    {prefix: []rdn{{"cn", "groups"}, {"cn", "accounts"}}, leafKey: "cn"},
	KindHost:    {prefix: []rdn{{"cn", "hostgroups"}, {"cn", "accounts"}}, leafKey: "cn"},
	KindService: {prefix: []rdn{{"cn", "hbacservicegroups"}, {"cn", "hbac"}}, leafKey: "cn"},
}

// NameOf verifies dn matches the object-container pattern for kind and
// returns the leaf value. See spec.md §4.1 for the container patterns.
func NameOf(raw string, kind Kind) (string, error) {
	c, ok := nameContainers[kind]
	if !ok {
		return "", herr.Newf(herr.KindInputInvalid, "dn.name_of", raw)
	}
	return decompose(raw, c, "dn.name_of")
}

// GroupNameOf verifies dn matches the group-container pattern for kind and
// returns the leaf value.
func GroupNameOf(raw string, kind Kind) (string, error) {
	c, ok := groupContainers[kind]
	if !ok {
		return "", herr.Newf(herr.KindInputInvalid, "dn.group_name_of", raw)
	}
	return decompose(raw, c, "dn.group_name_of")
}

func decompose(raw string, c container, op string) (string, error) {
	parts, err := parse(raw)
	if err != nil {
		return "", herr.WrapIdent(herr.KindMalformed, op, raw, err)
	}

	prefixLen := len(c.prefix)
	// Too few RDNs to even hold the container prefix: short DN.
	if len(parts) < prefixLen {
		return "", herr.WrapIdent(herr.KindInputInvalid, op, raw, errShort)
	}
	// Exactly the container length (no leaf), or leaf+prefix with no base
	// DN beyond the container: spec.md §8 "a DN of exactly the container
	// length (no leaf) is rejected" as malformed, not short.
	if len(parts) == prefixLen || len(parts) == prefixLen+1 {
		return "", herr.Newf(herr.KindMalformed, op, raw)
	}

	for i, want := range c.prefix {
		got := parts[i+1]
		if !strings.EqualFold(got.attr, want.attr) || got.val != want.val {
			return "", herr.WrapIdent(herr.KindInputInvalid, op, raw, errWrongContainer)
		}
	}

	leaf := parts[0]
	if !strings.EqualFold(leaf.attr, c.leafKey) {
		return "", herr.WrapIdent(herr.KindInputInvalid, op, raw, errWrongContainer)
	}
	if leaf.val == "" {
		return "", herr.Newf(herr.KindMalformed, op, raw)
	}
	return leaf.val, nil
}

// ErrWrongContainer and ErrShort distinguish the two container-mismatch
// reasons named in spec.md §4.1 and exercised by §8's boundary behaviors.
// Both wrap into the returned herr.Error's cause, so callers can tell them
// apart with errors.Is(err, dn.ErrWrongContainer) in addition to reading
// the coarser herr.Kind.
var (
	ErrWrongContainer = wrongContainerErr{}
	ErrShort          = shortErr{}

	errWrongContainer = ErrWrongContainer
	errShort          = ErrShort
)

type wrongContainerErr struct{}

func (wrongContainerErr) Error() string { return "wrong-container" }

type shortErr struct{}

func (shortErr) Error() string { return "short" }

// parse splits a DN into its RDN sequence, leaf first. Multi-valued RDNs
// (containing an unescaped '+') are rejected as malformed, matching
// spec.md §4.1 ("single-valued RDNs only; multi-valued RDNs are rejected
// with malformed").
func parse(raw string) ([]rdn, error) {
	segments, err := splitUnescaped(raw, ',')
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, errMalformedDN
	}

	rdns := make([]rdn, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return nil, errMalformedDN
		}
		if hasUnescaped(seg, '+') {
			return nil, errMalformedDN
		}
		attr, val, ok := splitOnce(seg, '=')
		if !ok {
			return nil, errMalformedDN
		}
		attr = strings.TrimSpace(attr)
		val = strings.TrimSpace(val)
		if attr == "" {
			return nil, errMalformedDN
		}
		rdns = append(rdns, rdn{attr: attr, val: val})
	}
	return rdns, nil
}

var errMalformedDN = malformedDNErr{}

type malformedDNErr struct{}

func (malformedDNErr) Error() string { return "malformed dn" }

// splitUnescaped splits s on sep, honoring backslash-escapes so a DN value
// containing an escaped comma (e.g. "O=Acme\\, Inc.") is not split midway.
func splitUnescaped(s string, sep byte) ([]string, error) {
	var parts []string
	var cur strings.Builder
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			cur.WriteByte(c)
			escaped = false
		case c == '\\':
			cur.WriteByte(c)
			escaped = true
		case c == sep:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if escaped {
		return nil, errMalformedDN
	}
	parts = append(parts, cur.String())
	return parts, nil
}

func hasUnescaped(s string, b byte) bool {
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == b {
			return true
		}
	}
	return false
}

func splitOnce(s string, sep byte) (string, string, bool) {
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == sep {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}
