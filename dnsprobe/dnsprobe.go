// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package dnsprobe resolves A, AAAA and MX records of a domain
package dnsprobe

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/DataDog/datadog-netdiag/common"
	"github.com/DataDog/datadog-netdiag/log"
	"github.com/DataDog/datadog-netdiag/result"
	"golang.org/x/net/idna"
)

// Resolver is the subset of *net.Resolver used by the probe
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// RecordTypes are the record types queried, in report order
var RecordTypes = []result.RecordType{result.RecordA, result.RecordAAAA, result.RecordMX}

// Probe queries the system resolver. Nothing is cached between calls.
type Probe struct {
	resolver Resolver
	timeout  time.Duration
}

// New returns a Probe using the default resolver
func New(timeout time.Duration) *Probe {
	return NewWithResolver(net.DefaultResolver, timeout)
}

// NewWithResolver returns a Probe using the given resolver
func NewWithResolver(resolver Resolver, timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = common.DefaultDNSTimeout
	}
	return &Probe{resolver: resolver, timeout: timeout}
}

// Resolve runs the three queries independently. The result always holds one
// entry per record type, carrying either records or an error.
func (p *Probe) Resolve(ctx context.Context, domain string) result.DnsResult {
	res := result.DnsResult{
		Domain:  domain,
		Records: make(map[result.RecordType]result.DnsRecords, len(RecordTypes)),
	}

	name, err := normalize(domain)
	if err != nil {
		probeErr := &result.ProbeError{Code: result.ErrCodeDNS, Message: err.Error()}
		for _, rtype := range RecordTypes {
			res.Records[rtype] = result.DnsRecords{Error: probeErr}
		}
		return res
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, rtype := range RecordTypes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records := p.query(ctx, rtype, name)
			mu.Lock()
			res.Records[rtype] = records
			mu.Unlock()
		}()
	}
	wg.Wait()
	return res
}

func (p *Probe) query(ctx context.Context, rtype result.RecordType, name string) result.DnsRecords {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var records []string
	var err error
	switch rtype {
	case result.RecordA:
		records, err = p.lookupIP(ctx, "ip4", name)
	case result.RecordAAAA:
		records, err = p.lookupIP(ctx, "ip6", name)
	case result.RecordMX:
		records, err = p.lookupMX(ctx, name)
	default:
		err = fmt.Errorf("unsupported record type %s", rtype)
	}
	if err == nil && len(records) == 0 {
		err = &net.DNSError{Err: "no answer", Name: name, IsNotFound: true}
	}
	if err != nil {
		log.Debugf("dns %s %s: %s", rtype, name, err)
		return result.DnsRecords{Error: common.ClassifyError(err)}
	}
	log.Tracef("dns %s %s: %v", rtype, name, records)
	return result.DnsRecords{Records: records}
}

func (p *Probe) lookupIP(ctx context.Context, network, name string) ([]string, error) {
	ips, err := p.resolver.LookupIP(ctx, network, name)
	if err != nil {
		return nil, err
	}
	records := make([]string, 0, len(ips))
	for _, ip := range ips {
		records = append(records, ip.String())
	}
	return records, nil
}

// lookupMX formats each record as "<preference> <host>", the way dig prints it
func (p *Probe) lookupMX(ctx context.Context, name string) ([]string, error) {
	mxs, err := p.resolver.LookupMX(ctx, name)
	if err != nil {
		return nil, err
	}
	records := make([]string, 0, len(mxs))
	for _, mx := range mxs {
		records = append(records, fmt.Sprintf("%d %s", mx.Pref, mx.Host))
	}
	return records, nil
}

// normalize converts an internationalized domain to its ASCII form
func normalize(domain string) (string, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return "", fmt.Errorf("empty domain")
	}
	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return "", fmt.Errorf("invalid domain %q: %w", domain, err)
	}
	return ascii, nil
}
