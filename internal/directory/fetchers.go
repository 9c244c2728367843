package directory

import (
	"fmt"

	"github.com/go-ldap/ldap/v3"

	"github.com/l0p7/hbacd/internal/herr"
)

// Host is the local host's directory entry (spec.md §4.4).
type Host struct {
	DN       string
	FQDN     string
	MemberOf []string
}

// Service is the target service's directory entry (spec.md §4.4).
type Service struct {
	DN       string
	Name     string
	MemberOf []string
}

var hostDescriptor = Descriptor{
	SubBase:        "cn=computers,cn=accounts",
	ObjectClass:    "ipaHost",
	RequestedAttrs: []string{"fqdn", "memberOf"},
}

var serviceDescriptor = Descriptor{
	SubBase:        "cn=hbacservices,cn=hbac",
	ObjectClass:    "ipaHbacService",
	RequestedAttrs: []string{"cn", "memberOf"},
}

// FetchHost looks up the local host's entry by fqdn (spec.md §4.4).
func (c *Client) FetchHost(fqdn string) (Host, error) {
	filter := fmt.Sprintf("(fqdn=%s)", ldap.EscapeFilter(fqdn))
	entries, err := c.Search(hostDescriptor, filter)
	if err != nil {
		return Host{}, err
	}

	entry, err := exactlyOne(entries, "directory.fetch_host", fqdn)
	if err != nil {
		return Host{}, err
	}

	name, ok := singleValued(entry.Attrs, "fqdn")
	if !ok {
		return Host{}, herr.Newf(herr.KindMalformed, "directory.fetch_host", fqdn)
	}
	return Host{DN: entry.DN, FQDN: name, MemberOf: entry.Attrs.Get("memberOf")}, nil
}

// FetchService looks up the target service's entry by name (spec.md §4.4).
func (c *Client) FetchService(name string) (Service, error) {
	filter := fmt.Sprintf("(cn=%s)", ldap.EscapeFilter(name))
	entries, err := c.Search(serviceDescriptor, filter)
	if err != nil {
		return Service{}, err
	}

	entry, err := exactlyOne(entries, "directory.fetch_service", name)
	if err != nil {
		return Service{}, err
	}

	svcName, ok := singleValued(entry.Attrs, "cn")
	if !ok {
		return Service{}, herr.Newf(herr.KindMalformed, "directory.fetch_service", name)
	}
	return Service{DN: entry.DN, Name: svcName, MemberOf: entry.Attrs.Get("memberOf")}, nil
}

func exactlyOne(entries []Entry, op, ident string) (Entry, error) {
	switch len(entries) {
	case 0:
		return Entry{}, herr.Newf(herr.KindNotFound, op, ident)
	case 1:
		return entries[0], nil
	default:
		return Entry{}, herr.Newf(herr.KindAmbiguous, op, ident)
	}
}

func singleValued(bag AttrBag, name string) (string, bool) {
	v := bag.Get(name)
	if len(v) != 1 {
		return "", false
	}
	return v[0], true
}
