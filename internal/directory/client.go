// Package directory wraps go-ldap/v3 behind the narrow search/fetch
// surface the decision pipeline needs (spec.md §4.2, §4.4, §4.5). It is
// the one package in the module that speaks LDAP wire protocol; every
// other component works with directory.Entry.
package directory

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/l0p7/hbacd/internal/config"
	"github.com/l0p7/hbacd/internal/herr"
	"github.com/l0p7/hbacd/internal/metrics"
)

// Client issues bounded subtree searches against one directory connection,
// activation-local per spec.md §5 ("the directory connection is
// activation-local").
type Client struct {
	conn       *ldap.Conn
	searchBase string
	timeout    time.Duration
	recorder   *metrics.Recorder
}

// Dial opens the connection, negotiates TLS when cfg.Secure is set, and
// simple-binds with cfg.BindDN/cfg.BindPW (spec.md §4.2 "Connection
// bring-up"). The caller must call Close on all paths, including error
// ones from later operations -- Dial itself never leaves a half-open
// connection behind on failure.
func Dial(ctx context.Context, cfg config.Config, recorder *metrics.Recorder) (*Client, error) {
	start := time.Now()
	conn, err := dial(ctx, cfg)
	if err != nil {
		recorder.ObserveDirectory(metrics.OperationBind, metrics.ResultUnavailable, time.Since(start))
		return nil, herr.Wrap(herr.KindUnavailable, "directory.dial", err)
	}

	if err := conn.Bind(cfg.BindDN, cfg.BindPW.Expose()); err != nil {
		conn.Close()
		recorder.ObserveDirectory(metrics.OperationBind, metrics.ResultUnavailable, time.Since(start))
		return nil, herr.Wrap(herr.KindUnavailable, "directory.bind", err)
	}

	recorder.ObserveDirectory(metrics.OperationBind, metrics.ResultOK, time.Since(start))
	return &Client{
		conn:       conn,
		searchBase: cfg.SearchBase,
		timeout:    cfg.Timeout(),
		recorder:   recorder,
	}, nil
}

func dial(_ context.Context, cfg config.Config) (*ldap.Conn, error) {
	opts := []ldap.DialOpt{ldap.DialWithDialer(&net.Dialer{Timeout: cfg.Timeout()})}
	var tlsConfig *tls.Config
	if cfg.Secure {
		var err error
		tlsConfig, err = tlsConfigFor(cfg.CACert)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ldap.DialWithTLSConfig(tlsConfig))
	}
	conn, err := ldap.DialURL(cfg.URI, opts...)
	if err != nil || tlsConfig == nil || strings.HasPrefix(strings.ToLower(cfg.URI), "ldaps:") {
		return conn, err
	}
	// A non-ldaps URI dials in the clear; upgrade it with StartTLS.
	startTLS := tlsConfig.Clone()
	if u, perr := url.Parse(cfg.URI); perr == nil {
		startTLS.ServerName = u.Hostname()
	}
	if err := conn.StartTLS(startTLS); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func tlsConfigFor(caCertPath string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caCertPath == "" {
		return cfg, nil
	}
	pem, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("read ca_cert: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("ca_cert %s: no certificates parsed", caCertPath)
	}
	cfg.RootCAs = pool
	return cfg, nil
}

// Close tears down the connection. Safe to call multiple times.
func (c *Client) Close() {
	if c == nil || c.conn == nil {
		return
	}
	c.conn.Close()
}

// Search runs one subtree search for d, ANDed with filter when filter is
// non-empty (spec.md §4.2). Referral and result-done messages are not
// entries and are skipped; each returned message is filtered by object
// class and attribute list before being added to the result.
func (c *Client) Search(d Descriptor, filter string) ([]Entry, error) {
	start := time.Now()
	objFilter := fmt.Sprintf("(objectClass=%s)", ldap.EscapeFilter(d.ObjectClass))
	effFilter := objFilter
	if filter != "" {
		effFilter = fmt.Sprintf("(&%s%s)", objFilter, filter)
	}

	base := d.SubBase + "," + c.searchBase
	req := ldap.NewSearchRequest(
		base,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, int(c.timeout.Seconds()), false,
		effFilter,
		d.RequestedAttrs,
		nil,
	)

	res, err := c.conn.Search(req)
	if err != nil {
		c.recorder.ObserveDirectory(metrics.OperationSearch, metrics.ResultIO, time.Since(start))
		return nil, herr.WrapIdent(herr.KindIO, "directory.search", base, err)
	}

	entries := make([]Entry, 0, len(res.Entries))
	for _, raw := range res.Entries {
		entry, ok := filterEntry(raw, d)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	c.recorder.ObserveDirectory(metrics.OperationSearch, metrics.ResultOK, time.Since(start))
	return entries, nil
}

func filterEntry(raw *ldap.Entry, d Descriptor) (Entry, bool) {
	matched := false
	bag := make(AttrBag, len(d.RequestedAttrs))
	for _, attr := range raw.Attributes {
		if strings.EqualFold(attr.Name, "objectClass") {
			for _, v := range attr.Values {
				if strings.EqualFold(v, d.ObjectClass) {
					matched = true
					break
				}
			}
			continue
		}
		for _, wanted := range d.RequestedAttrs {
			if strings.EqualFold(attr.Name, wanted) {
				bag[wanted] = append(bag[wanted], attr.Values...)
				break
			}
		}
	}
	if !matched {
		return Entry{}, false
	}
	return Entry{DN: raw.DN, Attrs: bag}, true
}
