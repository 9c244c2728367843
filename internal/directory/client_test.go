package directory

import (
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/require"
)

func newRawEntry(dn string, attrs map[string][]string) *ldap.Entry {
	entry := &ldap.Entry{DN: dn}
	for name, values := range attrs {
		entry.Attributes = append(entry.Attributes, &ldap.EntryAttribute{Name: name, Values: values})
	}
	return entry
}

func TestFilterEntryMatchesObjectClassCaseInsensitively(t *testing.T) {
	raw := newRawEntry("fqdn=client.ipa.test,cn=computers,cn=accounts,dc=ipa,dc=test", map[string][]string{
		"objectClass": {"top", "IPAHOST"},
		"fqdn":        {"client.ipa.test"},
		"memberOf":    {"cn=webservers,cn=hostgroups,cn=accounts,dc=ipa,dc=test"},
	})

	entry, ok := filterEntry(raw, hostDescriptor)
	require.True(t, ok)
	require.Equal(t, []string{"client.ipa.test"}, entry.Attrs.Get("fqdn"))
	require.Len(t, entry.Attrs.Get("memberOf"), 1)
}

func TestFilterEntryRejectsWrongObjectClass(t *testing.T) {
	raw := newRawEntry("cn=sshd,cn=hbacservices,cn=hbac,dc=ipa,dc=test", map[string][]string{
		"objectClass": {"top", "ipaHbacService"},
		"cn":          {"sshd"},
	})

	_, ok := filterEntry(raw, hostDescriptor)
	require.False(t, ok)
}

func TestFilterEntryDiscardsAttributesNotRequested(t *testing.T) {
	raw := newRawEntry("fqdn=client.ipa.test,cn=computers,cn=accounts,dc=ipa,dc=test", map[string][]string{
		"objectClass":  {"ipaHost"},
		"fqdn":         {"client.ipa.test"},
		"description":  {"unwanted"},
	})

	entry, ok := filterEntry(raw, hostDescriptor)
	require.True(t, ok)
	require.Nil(t, entry.Attrs.Get("description"))
}
