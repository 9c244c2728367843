package hbac

import (
	"github.com/l0p7/hbacd/internal/directory"
	"github.com/l0p7/hbacd/internal/dn"
	"github.com/l0p7/hbacd/internal/herr"
	"github.com/l0p7/hbacd/internal/identity"
)

// BuildRequest combines the subject, target host, and service into an
// evaluation request (spec.md §2 Request Builder, mirroring the
// source's ph_create_hbac_eval_req).
func BuildRequest(subject identity.Subject, host directory.Host, service directory.Service, requestTime int64) (Request, error) {
	if subject.Name == "" {
		return Request{}, herr.New(herr.KindInputInvalid, "hbac.build_request")
	}

	return Request{
		User: RequestElement{
			Name:   subject.Name,
			Groups: subject.GroupList(),
		},
		Service: RequestElement{
			Name:   service.Name,
			Groups: memberOfGroups(dn.KindService, service.MemberOf),
		},
		TargetHost: RequestElement{
			Name:   host.FQDN,
			Groups: memberOfGroups(dn.KindHost, host.MemberOf),
		},
		RequestTime: requestTime,
	}, nil
}

// memberOfGroups decodes a memberOf attribute's DN values into group
// names, skipping any that are not a well-formed group DN of kind --
// matching the source's entry_to_eval_req_el, which discards unexpected
// DNs rather than failing the whole request.
func memberOfGroups(kind dn.Kind, memberOf []string) []string {
	groups := make([]string, 0, len(memberOf))
	for _, raw := range memberOf {
		if name, err := dn.GroupNameOf(raw, kind); err == nil {
			groups = append(groups, name)
		}
	}
	return groups
}
