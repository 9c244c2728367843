package hbac

import (
	"strings"

	"github.com/l0p7/hbacd/internal/directory"
	"github.com/l0p7/hbacd/internal/dn"
	"github.com/l0p7/hbacd/internal/herr"
	"github.com/l0p7/hbacd/internal/metrics"
)

const unknownRuleName = "unknown rule name"

// Materialize turns one raw directory entry into a Rule (spec.md §4.6). A
// rule with a malformed top-level field (enabled flag, a category value)
// is rejected outright; an individual malformed member DN is dropped and
// counted under the recorder's "malformed-member" reason instead, since that
// can only make the rule stricter. Materialize writes no log line itself.
func Materialize(raw directory.RawRule, recorder *metrics.Recorder) (*Rule, error) {
	name := unknownRuleName
	if len(raw.Name) > 0 && raw.Name[0] != "" {
		name = raw.Name[0]
	}

	enabled, err := parseEnabled(raw.Enabled)
	if err != nil {
		recorder.ObserveRuleRejected("malformed-enabled")
		return nil, herr.WrapIdent(herr.KindMalformed, "hbac.materialize", raw.DN, err)
	}

	users, err := materializeElement(KindUser, raw.UserCategory, raw.MemberUser, recorder)
	if err != nil {
		recorder.ObserveRuleRejected("malformed-category")
		return nil, herr.WrapIdent(herr.KindMalformed, "hbac.materialize", raw.DN, err)
	}
	services, err := materializeElement(KindService, raw.ServiceCategory, raw.MemberService, recorder)
	if err != nil {
		recorder.ObserveRuleRejected("malformed-category")
		return nil, herr.WrapIdent(herr.KindMalformed, "hbac.materialize", raw.DN, err)
	}
	hosts, err := materializeElement(KindHost, raw.HostCategory, raw.MemberHost, recorder)
	if err != nil {
		recorder.ObserveRuleRejected("malformed-category")
		return nil, herr.WrapIdent(herr.KindMalformed, "hbac.materialize", raw.DN, err)
	}

	return &Rule{
		Name:        name,
		Enabled:     enabled,
		Users:       users,
		Services:    services,
		TargetHosts: hosts,
		// Source-host evaluation is deliberately not honored (spec.md §9):
		// every rule gets a synthetic always-match source_hosts element
		// regardless of what the directory actually holds.
		SourceHosts: syntheticSourceHosts(),
	}, nil
}

func parseEnabled(values []string) (bool, error) {
	if len(values) != 1 {
		return false, errMalformed
	}
	switch strings.ToLower(values[0]) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, errMalformed
	}
}

var errMalformed = malformedErr{}

type malformedErr struct{}

func (malformedErr) Error() string { return "malformed" }

// materializeElement reads one element's category attribute and member
// list. A category value other than "all" is rejected as malformed; an
// absent category leaves category_all false.
func materializeElement(kind Kind, category, members []string, recorder *metrics.Recorder) (RuleElement, error) {
	el := newElement(kind)

	if len(category) > 0 {
		if len(category) != 1 || !strings.EqualFold(category[0], "all") {
			return RuleElement{}, errMalformed
		}
		el.CategoryAll = true
	}

	for _, member := range members {
		if name, err := nameOf(kind, member); err == nil {
			el.Names[name] = struct{}{}
			continue
		}
		if group, err := groupNameOf(kind, member); err == nil {
			el.Groups[group] = struct{}{}
			continue
		}
		// Neither a valid name nor group DN: drop this single member and
		// keep the rule (spec.md §4.6, §8 property 2).
		recorder.ObserveRuleRejected("malformed-member")
	}

	return el, nil
}

func nameOf(kind Kind, member string) (string, error) {
	return dn.NameOf(member, dnKind(kind))
}

func groupNameOf(kind Kind, member string) (string, error) {
	return dn.GroupNameOf(member, dnKind(kind))
}

func dnKind(kind Kind) dn.Kind {
	switch kind {
	case KindUser:
		return dn.KindUser
	case KindService:
		return dn.KindService
	default:
		return dn.KindHost
	}
}
