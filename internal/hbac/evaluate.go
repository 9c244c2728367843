package hbac

import "github.com/l0p7/hbacd/internal/herr"

// Evaluate matches req against rules and returns the first decision found
// (spec.md §4.7). Rule order is not significant; evaluation stops at the
// first match.
//
// Source-hosts is intentionally excluded from the match: every Rule
// carries a synthetic always-true SourceHosts element, so including it in
// the conjunction below would be a no-op -- it is omitted here rather than
// ANDed in to keep that fact visible at the call site instead of buried in
// a constant-true term.
func Evaluate(rules []Rule, req Request) Decision {
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		if rule.Users.Match(req.User.Name, req.User.Groups) &&
			rule.Services.Match(req.Service.Name, req.Service.Groups) &&
			rule.TargetHosts.Match(req.TargetHost.Name, req.TargetHost.Groups) {
			return Allow
		}
	}
	return Deny
}

// DecisionToKind maps a non-Allow/Deny Decision to the herr.Kind a caller
// should report. The shim does not use it; it maps decisions to auth-stack
// codes directly.
func DecisionToKind(d Decision) herr.Kind {
	switch d {
	case OutOfMemory:
		return herr.KindExhausted
	case DecisionError:
		return herr.KindInternal
	default:
		return ""
	}
}
