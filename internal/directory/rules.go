package directory

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// RawRule is one ipaHbacRule entry, attributes copied verbatim out of the
// directory response. internal/hbac.Materialize turns this into a Rule;
// directory itself does not interpret member or category values.
type RawRule struct {
	DN string

	Name            []string
	UniqueID        []string
	Enabled         []string
	AccessRuleType  []string
	MemberUser      []string
	UserCategory    []string
	MemberService   []string
	ServiceCategory []string
	MemberHost      []string
	HostCategory    []string
	ExternalHost    []string // fetched but never interpreted, spec.md §9
}

var ruleDescriptor = Descriptor{
	SubBase:     "cn=hbac",
	ObjectClass: "ipaHbacRule",
	RequestedAttrs: []string{
		"cn", "ipaUniqueID", "ipaEnabledFlag", "accessRuleType",
		"memberUser", "userCategory",
		"memberService", "serviceCategory",
		"memberHost", "hostCategory",
		"externalHost",
	},
}

// buildRuleFilter constructs the OR-filter from spec.md §4.5 that selects
// enabled allow-rules applying to hostDN by direct membership, any of
// hostGroups, or hostCategory=all.
func buildRuleFilter(hostDN string, hostGroups []string) string {
	hostClauses := []string{"(hostCategory=all)", fmt.Sprintf("(memberHost=%s)", ldap.EscapeFilter(hostDN))}
	for _, group := range hostGroups {
		hostClauses = append(hostClauses, fmt.Sprintf("(memberHost=%s)", ldap.EscapeFilter(group)))
	}
	return fmt.Sprintf(
		"(&(ipaEnabledFlag=TRUE)(accessRuleType=allow)(|%s))",
		strings.Join(hostClauses, ""),
	)
}

// FetchRules downloads the enabled, allow-type rules that apply to hostDN
// directly or via any of hostGroups (spec.md §4.5).
func (c *Client) FetchRules(hostDN string, hostGroups []string) ([]RawRule, error) {
	entries, err := c.Search(ruleDescriptor, buildRuleFilter(hostDN, hostGroups))
	if err != nil {
		return nil, err
	}

	rules := make([]RawRule, 0, len(entries))
	for _, e := range entries {
		rules = append(rules, RawRule{
			DN:              e.DN,
			Name:            e.Attrs.Get("cn"),
			UniqueID:        e.Attrs.Get("ipaUniqueID"),
			Enabled:         e.Attrs.Get("ipaEnabledFlag"),
			AccessRuleType:  e.Attrs.Get("accessRuleType"),
			MemberUser:      e.Attrs.Get("memberUser"),
			UserCategory:    e.Attrs.Get("userCategory"),
			MemberService:   e.Attrs.Get("memberService"),
			ServiceCategory: e.Attrs.Get("serviceCategory"),
			MemberHost:      e.Attrs.Get("memberHost"),
			HostCategory:    e.Attrs.Get("hostCategory"),
			ExternalHost:    e.Attrs.Get("externalHost"),
		})
	}
	return rules, nil
}
