package dhcpsvc

import (
	"context"
	"strings"

	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/concave-dev/dhcpool/internal/store"
	"github.com/concave-dev/dhcpool/internal/validate"
)

// HostView is a fixed-address host with its hardware address split out.
type HostView struct {
	store.Host `yaml:",inline"`
	MACAddress string `json:"macaddress" yaml:"macaddress"`
}

func hostView(h *store.Host) *HostView {
	mac, _ := strings.CutPrefix(h.HWAddress, "ethernet ")
	return &HostView{Host: *h, MACAddress: mac}
}

type hostKey struct {
	Hostname string `json:"hostname" validate:"required,fqdn"`
	MAC      string `json:"macaddress" validate:"required,dhcpmac"`
}

// HostCN returns the entry name of a host: the hostname and the upper-case
// hardware address with colons removed.
func HostCN(hostname, mac string) string {
	return hostname + "-" + strings.ReplaceAll(strings.ToUpper(mac), ":", "")
}

func checkHostKey(hostname, mac string) error {
	if err := validate.Struct(&hostKey{Hostname: hostname, MAC: mac}); err != nil {
		field, msg := validate.Describe(err)
		return validationError(field, msg)
	}
	return nil
}

// AddHost creates a fixed-address entry binding mac to hostname.
func (s *Service) AddHost(ctx context.Context, hostname, mac string, opts HostAddOptions) (*HostView, error) {
	if err := checkHostKey(hostname, mac); err != nil {
		return nil, err
	}
	mac = strings.ToUpper(mac)
	host := &store.Host{
		CN:         HostCN(hostname, mac),
		HWAddress:  "ethernet " + mac,
		Statements: []string{"fixed-address " + hostname},
		Options:    []string{`host-name "` + hostname + `"`},
		Comments:   opts.Comments,
	}
	if err := s.store.CreateHost(ctx, host); err != nil {
		return nil, err
	}
	logging.Info("Created DHCP host %s (%s)", hostname, mac)
	return hostView(host), nil
}

// FindHosts lists hosts whose name or hardware address matches criteria.
func (s *Service) FindHosts(ctx context.Context, criteria string) ([]HostView, error) {
	hosts, err := s.store.ListHosts(ctx, criteria)
	if err != nil {
		return nil, err
	}
	views := make([]HostView, len(hosts))
	for i := range hosts {
		views[i] = *hostView(&hosts[i])
	}
	return views, nil
}

// ShowHost returns the host entry cn.
func (s *Service) ShowHost(ctx context.Context, cn string) (*HostView, error) {
	host, err := s.store.GetHost(ctx, cn)
	if err != nil {
		return nil, err
	}
	return hostView(host), nil
}

// DelHost deletes the entry binding mac to hostname and returns its cn.
func (s *Service) DelHost(ctx context.Context, hostname, mac string) (string, error) {
	if err := checkHostKey(hostname, mac); err != nil {
		return "", err
	}
	cn := HostCN(hostname, mac)
	if err := s.store.DeleteHost(ctx, cn); err != nil {
		return "", err
	}
	logging.Info("Deleted DHCP host %s", cn)
	return cn, nil
}
