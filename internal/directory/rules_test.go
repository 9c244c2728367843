package directory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildRuleFilterIncludesHostCategoryAndGroups(t *testing.T) {
	filter := buildRuleFilter(
		"fqdn=client.ipa.test,cn=computers,cn=accounts,dc=ipa,dc=test",
		[]string{"cn=webservers,cn=hostgroups,cn=accounts,dc=ipa,dc=test"},
	)

	require.Contains(t, filter, "(ipaEnabledFlag=TRUE)")
	require.Contains(t, filter, "(accessRuleType=allow)")
	require.Contains(t, filter, "(hostCategory=all)")
	require.Contains(t, filter, "(memberHost=fqdn=client.ipa.test,cn=computers,cn=accounts,dc=ipa,dc=test)")
	require.Contains(t, filter, "(memberHost=cn=webservers,cn=hostgroups,cn=accounts,dc=ipa,dc=test)")
}

func TestBuildRuleFilterWithNoHostGroups(t *testing.T) {
	filter := buildRuleFilter("fqdn=client.ipa.test,cn=computers,cn=accounts,dc=ipa,dc=test", nil)
	require.Contains(t, filter, "(hostCategory=all)")
	require.NotContains(t, filter, "(memberHost=cn=")
}
