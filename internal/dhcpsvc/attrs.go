package dhcpsvc

import (
	"strconv"
	"strings"

	"github.com/concave-dev/dhcpool/internal/store"
)

// Statement and option keywords.
const (
	stmtDefaultLeaseTime = "default-lease-time"
	stmtMaxLeaseTime     = "max-lease-time"

	optDomainName        = "domain-name"
	optDomainNameServers = "domain-name-servers"
	optDomainSearch      = "domain-search"
	optRouters           = "routers"
	optSubnetMask        = "subnet-mask"
	optBroadcastAddress  = "broadcast-address"

	permitKnownClients   = "known-clients"
	permitUnknownClients = "unknown-clients"
)

// defaultPermitList is given to every new pool.
var defaultPermitList = []string{"allow unknown-clients", "allow known-clients"}

// lookup returns the value of the first "keyword value" entry in list.
func lookup(list []string, keyword string) (string, bool) {
	prefix := keyword + " "
	for _, entry := range list {
		if strings.HasPrefix(entry, prefix) {
			return entry[len(prefix):], true
		}
	}
	return "", false
}

// upsert replaces the first "keyword ..." entry with "keyword value", or
// appends it when none exists. The input slice is not modified.
func upsert(list []string, keyword, value string) []string {
	out := append([]string(nil), list...)
	entry := keyword + " " + value
	prefix := keyword + " "
	for i, e := range out {
		if strings.HasPrefix(e, prefix) {
			out[i] = entry
			return out
		}
	}
	return append(out, entry)
}

// setPermit drops every "allow|deny <class>" entry and appends the new one.
func setPermit(list []string, class string, allow bool) []string {
	suffix := " " + class
	out := make([]string, 0, len(list)+1)
	for _, p := range list {
		if !strings.HasSuffix(p, suffix) {
			out = append(out, p)
		}
	}
	verb := "deny"
	if allow {
		verb = "allow"
	}
	return append(out, verb+suffix)
}

// permitted reports the allow/deny state for class, or nil if unset.
// "known-clients" does not match "unknown-clients".
func permitted(list []string, class string) *bool {
	var state *bool
	for _, p := range list {
		verb, rest, ok := strings.Cut(p, " ")
		if !ok || rest != class {
			continue
		}
		switch verb {
		case "allow":
			state = boolPtr(true)
		case "deny":
			state = boolPtr(false)
		}
	}
	return state
}

func leaseTime(statements []string, keyword string) *int {
	v, ok := lookup(statements, keyword)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	return &n
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + v + `"`
	}
	return strings.Join(quoted, ", ")
}

func unquoteList(value string) []string {
	return strings.Split(strings.ReplaceAll(value, `"`, ""), ", ")
}

func boolPtr(b bool) *bool { return &b }

// =============================================================================
// Views with virtual attributes
// =============================================================================

// LeaseTimes are the lease statements shown as their own attributes.
type LeaseTimes struct {
	DefaultLeaseTime *int `json:"defaultleasetime,omitempty" yaml:"defaultleasetime,omitempty"`
	MaxLeaseTime     *int `json:"maxleasetime,omitempty" yaml:"maxleasetime,omitempty"`
}

// DomainOptions are the domain options shown as their own attributes.
type DomainOptions struct {
	DomainName        string   `json:"domainname,omitempty" yaml:"domainname,omitempty"`
	DomainNameServers []string `json:"domainnameservers,omitempty" yaml:"domainnameservers,omitempty"`
	DomainSearch      []string `json:"domainsearch,omitempty" yaml:"domainsearch,omitempty"`
}

// ServiceView is the service configuration with virtual attributes.
type ServiceView struct {
	store.ServiceConfig `yaml:",inline"`
	LeaseTimes          `yaml:",inline"`
	DomainOptions       `yaml:",inline"`
}

// SubnetView is a subnet with virtual attributes.
type SubnetView struct {
	store.Subnet `yaml:",inline"`
	Router       string `json:"router,omitempty" yaml:"router,omitempty"`
}

// PoolView is a pool with virtual attributes.
type PoolView struct {
	store.Pool           `yaml:",inline"`
	LeaseTimes           `yaml:",inline"`
	DomainOptions        `yaml:",inline"`
	PermitKnownClients   *bool `json:"permitknownclients,omitempty" yaml:"permitknownclients,omitempty"`
	PermitUnknownClients *bool `json:"permitunknownclients,omitempty" yaml:"permitunknownclients,omitempty"`
}

func leaseTimes(statements []string) LeaseTimes {
	return LeaseTimes{
		DefaultLeaseTime: leaseTime(statements, stmtDefaultLeaseTime),
		MaxLeaseTime:     leaseTime(statements, stmtMaxLeaseTime),
	}
}

func domainOptions(options []string) DomainOptions {
	var d DomainOptions
	if v, ok := lookup(options, optDomainName); ok {
		d.DomainName = strings.ReplaceAll(v, `"`, "")
	}
	if v, ok := lookup(options, optDomainNameServers); ok {
		d.DomainNameServers = strings.Split(v, ", ")
	}
	if v, ok := lookup(options, optDomainSearch); ok {
		d.DomainSearch = unquoteList(v)
	}
	return d
}

func serviceView(cfg *store.ServiceConfig) *ServiceView {
	return &ServiceView{
		ServiceConfig: *cfg,
		LeaseTimes:    leaseTimes(cfg.Statements),
		DomainOptions: domainOptions(cfg.Options),
	}
}

func subnetView(s *store.Subnet) *SubnetView {
	v := &SubnetView{Subnet: *s}
	v.Router, _ = lookup(s.Options, optRouters)
	return v
}

func poolView(p *store.Pool) *PoolView {
	return &PoolView{
		Pool:                 *p,
		LeaseTimes:           leaseTimes(p.Statements),
		DomainOptions:        domainOptions(p.Options),
		PermitKnownClients:   permitted(p.PermitList, permitKnownClients),
		PermitUnknownClients: permitted(p.PermitList, permitUnknownClients),
	}
}

// remove drops every "keyword ..." entry.
func remove(list []string, keyword string) []string {
	prefix := keyword + " "
	out := make([]string, 0, len(list))
	for _, e := range list {
		if !strings.HasPrefix(e, prefix) {
			out = append(out, e)
		}
	}
	return out
}
