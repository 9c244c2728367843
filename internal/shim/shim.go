// Package shim implements the Decision Shim: the one entry point the
// authentication stack calls, and the only component that maps internal
// decisions and errors to the stack's status vocabulary (spec.md §4.8,
// §6).
package shim

import (
	"context"
	"log/slog"
	"time"

	"github.com/l0p7/hbacd/internal/config"
	"github.com/l0p7/hbacd/internal/directory"
	"github.com/l0p7/hbacd/internal/hbac"
	"github.com/l0p7/hbacd/internal/hbacctx"
	"github.com/l0p7/hbacd/internal/herr"
	"github.com/l0p7/hbacd/internal/identity"
	"github.com/l0p7/hbacd/internal/metrics"
)

// Status is one of the authentication-stack result codes from spec.md §4.8.
type Status string

const (
	StatusSuccess             Status = "success"
	StatusAuthDenied          Status = "auth-denied"
	StatusBufferError         Status = "buffer-error"
	StatusSystemError         Status = "system-error"
	StatusAuthInfoUnavailable Status = "authinfo-unavailable"
	StatusUserUnknown         Status = "user-unknown"
	StatusPermissionDenied    Status = "permission-denied"
)

// Activation is everything check-access reads from the calling context
// (spec.md §6). TTY/RemoteUser/RemoteHost are logged, never evaluated.
type Activation struct {
	User       string
	Service    string
	TTY        string
	RemoteUser string
	RemoteHost string
	Debug      bool
}

// Resolver abstracts the name-service lookup so CheckAccess can be driven
// by a fake in tests without a real host identity database.
type Resolver interface {
	Resolve(name string) (identity.Subject, error)
}

// Dialer abstracts directory connection bring-up, letting tests substitute
// a fake directory without a live LDAP server.
type Dialer func(ctx context.Context, cfg config.Config, recorder *metrics.Recorder) (Directory, error)

// Directory is the subset of *directory.Client that CheckAccess drives.
type Directory interface {
	FetchHost(fqdn string) (directory.Host, error)
	FetchService(name string) (directory.Service, error)
	FetchRules(hostDN string, hostGroups []string) ([]directory.RawRule, error)
	Close()
}

// DialDirectory is the production Dialer, wrapping directory.Dial.
func DialDirectory(ctx context.Context, cfg config.Config, recorder *metrics.Recorder) (Directory, error) {
	return directory.Dial(ctx, cfg, recorder)
}

// Runner wires every pipeline component behind one check-access call.
type Runner struct {
	Config   config.Config
	Logger   *slog.Logger
	Recorder *metrics.Recorder
	Resolver Resolver
	DialFn   Dialer
	Now      func() time.Time
}

// CheckAccess runs the full decision pipeline for one activation (spec.md
// §2 "Control flow"). It always returns a Status; the caller never needs
// to inspect an error. Every exit path releases the activation's
// resources, including the directory connection and the zeroized
// configuration, matching spec.md §4.8's teardown guarantee.
func (r *Runner) CheckAccess(ctx context.Context, act Activation) Status {
	ac, cancel := hbacctx.New(ctx, r.Logger, act.Debug, r.Config.Timeout())
	defer cancel()
	defer r.Config.Release()

	ac.Logger.Info("check-access activation",
		slog.String("user", act.User),
		slog.String("service", act.Service),
		slog.String("tty", act.TTY),
		slog.String("remote_user", act.RemoteUser),
		slog.String("remote_host", act.RemoteHost),
	)

	start := r.now()
	status := r.run(ac, act)
	r.Recorder.ObserveDecision(string(status), r.now().Sub(start))

	if status == StatusSuccess {
		ac.Logger.Info("decision", slog.String("status", string(status)))
	} else {
		ac.Logger.Warn("decision", slog.String("status", string(status)))
	}
	return status
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) run(ac *hbacctx.Context, act Activation) Status {
	// spec.md §6: "the literal root short-circuits to user-unknown
	// without any directory contact".
	if act.User == "root" {
		return StatusUserUnknown
	}

	subject, err := r.Resolver.Resolve(act.User)
	if err != nil {
		return statusFromError(err)
	}

	dirClient, err := r.DialFn(ac, r.Config, r.Recorder)
	if err != nil {
		return statusFromError(err)
	}
	defer dirClient.Close()

	host, err := dirClient.FetchHost(r.Config.Hostname)
	if err != nil {
		return statusFromError(err)
	}

	service, err := dirClient.FetchService(act.Service)
	if err != nil {
		return statusFromError(err)
	}

	rawRules, err := dirClient.FetchRules(host.DN, hostGroupDNs(host))
	if err != nil {
		return statusFromError(err)
	}

	rules := make([]hbac.Rule, 0, len(rawRules))
	for _, raw := range rawRules {
		rule, err := hbac.Materialize(raw, r.Recorder)
		if err != nil {
			ac.Logger.Warn("dropping malformed rule", slog.String("dn", raw.DN), slog.Any("error", err))
			continue
		}
		rules = append(rules, *rule)
	}
	r.Recorder.ObserveRuleFetch(len(rawRules), len(rules))

	req, err := hbac.BuildRequest(subject, host, service, r.now().Unix())
	if err != nil {
		return statusFromError(err)
	}

	decision := hbac.Evaluate(rules, req)
	return statusFromDecision(decision)
}

// hostGroupDNs is a placeholder seam: the host's memberOf DNs are already
// group DNs straight from the directory, so they're passed through as-is
// to FetchRules, which only needs the DN strings for the filter.
func hostGroupDNs(host directory.Host) []string {
	return host.MemberOf
}

func statusFromDecision(d hbac.Decision) Status {
	switch d {
	case hbac.Allow:
		return StatusSuccess
	case hbac.Deny:
		return StatusAuthDenied
	case hbac.OutOfMemory:
		return StatusBufferError
	default:
		return StatusSystemError
	}
}

func statusFromError(err error) Status {
	switch herr.KindOf(err) {
	case herr.KindUnavailable:
		return StatusAuthInfoUnavailable
	case herr.KindUnknownUser:
		return StatusUserUnknown
	case herr.KindNotFound:
		return StatusPermissionDenied
	case herr.KindExhausted:
		return StatusBufferError
	default:
		return StatusSystemError
	}
}
