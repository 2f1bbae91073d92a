package dhcpsvc

import (
	"context"
	"slices"
	"strings"

	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/concave-dev/dhcpool/internal/store"
	"github.com/concave-dev/dhcpool/internal/validate"
)

// ServiceDN is the DN of the single DHCP service entry. Servers are named
// below it.
const ServiceDN = "cn=dhcp"

// ServerDN returns the DN of the server cn.
func ServerDN(cn string) string {
	return "cn=" + cn + "," + ServiceDN
}

// serverCN extracts the server name from a DN built by ServerDN.
func serverCN(dn string) (string, bool) {
	rest, ok := strings.CutPrefix(dn, "cn=")
	if !ok {
		return "", false
	}
	cn, ok := strings.CutSuffix(rest, ","+ServiceDN)
	if !ok || cn == "" || strings.Contains(cn, ",") {
		return "", false
	}
	return cn, true
}

// ServerView is a server with its DN.
type ServerView struct {
	store.Server `yaml:",inline"`
	DN           string `json:"dn" yaml:"dn"`
}

func serverView(s *store.Server) *ServerView {
	return &ServerView{Server: *s, DN: ServerDN(s.CN)}
}

// AddServer registers the server cn and lists it among the service's
// secondary servers.
func (s *Service) AddServer(ctx context.Context, cn string, opts ServerAddOptions) (*ServerView, error) {
	if err := validate.ValidateField(cn, "required,fqdn"); err != nil {
		_, msg := validate.Describe(err)
		return nil, validationError("cn", msg)
	}
	serviceDN := opts.ServiceDN
	if serviceDN == "" {
		serviceDN = ServiceDN
	}
	if serviceDN != ServiceDN {
		return nil, notFound("%s: DHCP service not found", serviceDN)
	}

	server := &store.Server{
		CN:         cn,
		ServiceDN:  serviceDN,
		Statements: nonNil(opts.Statements),
		Options:    nonNil(opts.Options),
		Comments:   opts.Comments,
	}
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateServer(ctx, server); err != nil {
			return err
		}
		cfg, err := tx.GetServiceConfig(ctx)
		if err != nil {
			return err
		}
		dn := ServerDN(cn)
		if slices.Contains(cfg.SecondaryDNs, dn) {
			return nil
		}
		cfg.SecondaryDNs = append(cfg.SecondaryDNs, dn)
		return tx.UpdateServiceConfig(ctx, cfg)
	})
	if err != nil {
		return nil, err
	}
	logging.Info("Created DHCP server %s", cn)
	return serverView(server), nil
}

// FindServers lists servers matching criteria.
func (s *Service) FindServers(ctx context.Context, criteria string) ([]ServerView, error) {
	servers, err := s.store.ListServers(ctx, criteria)
	if err != nil {
		return nil, err
	}
	views := make([]ServerView, len(servers))
	for i := range servers {
		views[i] = *serverView(&servers[i])
	}
	return views, nil
}

// ShowServer returns one server.
func (s *Service) ShowServer(ctx context.Context, cn string) (*ServerView, error) {
	server, err := s.store.GetServer(ctx, cn)
	if err != nil {
		return nil, err
	}
	return serverView(server), nil
}

// ModServer applies opts to the server cn. Lists that are given replace
// the stored ones.
func (s *Service) ModServer(ctx context.Context, cn string, opts ServerModOptions) (*ServerView, error) {
	var view *ServerView
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		server, err := tx.GetServer(ctx, cn)
		if err != nil {
			return err
		}
		if opts.Statements != nil {
			server.Statements = opts.Statements
		}
		if opts.Options != nil {
			server.Options = opts.Options
		}
		if opts.Comments != nil {
			server.Comments = *opts.Comments
		}
		if err := tx.UpdateServer(ctx, server); err != nil {
			return err
		}
		view = serverView(server)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// DelServer deletes the server cn and drops it from the service's server
// references.
func (s *Service) DelServer(ctx context.Context, cn string) error {
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.DeleteServer(ctx, cn); err != nil {
			return err
		}
		cfg, err := tx.GetServiceConfig(ctx)
		if err != nil {
			return err
		}
		dn := ServerDN(cn)
		cfg.SecondaryDNs = slices.DeleteFunc(cfg.SecondaryDNs, func(d string) bool { return d == dn })
		if cfg.PrimaryDN == dn {
			cfg.PrimaryDN = ""
		}
		return tx.UpdateServiceConfig(ctx, cfg)
	})
	if err != nil {
		return err
	}
	logging.Info("Deleted DHCP server %s", cn)
	return nil
}

// setPrimaryServer points cfg at the registered server named by dn. An
// empty dn clears it.
func setPrimaryServer(ctx context.Context, tx store.Store, cfg *store.ServiceConfig, dn string) error {
	if dn == "" {
		cfg.PrimaryDN = ""
		return nil
	}
	cn, ok := serverCN(dn)
	if !ok {
		return validationError("dhcpprimarydn", "must be of the form cn=<server>,"+ServiceDN)
	}
	if _, err := tx.GetServer(ctx, cn); err != nil {
		return err
	}
	cfg.PrimaryDN = dn
	return nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
