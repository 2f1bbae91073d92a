// Package dhcpsvc implements the DHCP configuration commands served over RPC:
// the service entry, subnets, pools, servers, fixed-address hosts and the
// pool range check.
package dhcpsvc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/concave-dev/dhcpool/internal/dhcp"
	"github.com/concave-dev/dhcpool/internal/ipaddr"
	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/concave-dev/dhcpool/internal/store"
	"github.com/concave-dev/dhcpool/internal/validate"
	"golang.org/x/sync/singleflight"
	"inet.af/netaddr"
)

// subnetLookupTimeout bounds the shared subnet lookup behind a range check.
const subnetLookupTimeout = 5 * time.Second

// Service runs DHCP commands against a store.
type Service struct {
	store store.Store

	// subnetLookups collapses concurrent range checks against one subnet.
	// Results are shared between callers and must not be modified.
	subnetLookups singleflight.Group
}

// NewService creates a Service backed by st.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Ping checks that the store answers.
func (s *Service) Ping(ctx context.Context) error {
	_, err := s.store.GetServiceConfig(ctx)
	return err
}

// =============================================================================
// Service configuration
// =============================================================================

// ShowConfig returns the service configuration.
func (s *Service) ShowConfig(ctx context.Context) (*ServiceView, error) {
	cfg, err := s.store.GetServiceConfig(ctx)
	if err != nil {
		return nil, err
	}
	return serviceView(cfg), nil
}

// ModConfig applies opts to the service configuration.
func (s *Service) ModConfig(ctx context.Context, opts ServiceModOptions) (*ServiceView, error) {
	var view *ServiceView
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		cfg, err := tx.GetServiceConfig(ctx)
		if err != nil {
			return err
		}

		cfg.Statements = applyLeaseTimes(cfg.Statements, opts.DefaultLeaseTime, opts.MaxLeaseTime)
		if opts.DomainName != nil {
			cfg.Options = upsert(cfg.Options, optDomainName, `"`+*opts.DomainName+`"`)
		}
		if opts.DomainNameServers != nil {
			cfg.Options = upsert(cfg.Options, optDomainNameServers, strings.Join(opts.DomainNameServers, ", "))
		}
		if opts.DomainSearch != nil {
			cfg.Options = upsert(cfg.Options, optDomainSearch, quoteList(opts.DomainSearch))
		}
		if opts.Comments != nil {
			cfg.Comments = *opts.Comments
		}
		if opts.PrimaryDN != nil {
			if err := setPrimaryServer(ctx, tx, cfg, *opts.PrimaryDN); err != nil {
				return err
			}
		}

		if err := tx.UpdateServiceConfig(ctx, cfg); err != nil {
			return err
		}
		view = serviceView(cfg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func applyLeaseTimes(statements []string, defaultLease, maxLease *int) []string {
	if defaultLease != nil {
		statements = upsert(statements, stmtDefaultLeaseTime, strconv.Itoa(*defaultLease))
	}
	if maxLease != nil {
		statements = upsert(statements, stmtMaxLeaseTime, strconv.Itoa(*maxLease))
	}
	return statements
}

// =============================================================================
// Subnets
// =============================================================================

// AddSubnet creates a subnet with network address cn. The subnet mask and
// broadcast address options are derived from the netmask.
func (s *Service) AddSubnet(ctx context.Context, cn string, opts SubnetAddOptions) (*SubnetView, error) {
	if err := validate.ValidateField(cn, "required,ipv4"); err != nil {
		_, msg := validate.Describe(err)
		return nil, validationError("cn", msg)
	}
	if opts.Netmask == nil {
		return nil, requirementError("dhcpnetmask")
	}
	subnet := &store.Subnet{CN: cn, Netmask: *opts.Netmask, Comments: opts.Comments}
	return s.createSubnet(ctx, subnet, opts.Router)
}

// AddSubnetCIDR creates a subnet from CIDR notation. The stored cn is the
// masked network address.
func (s *Service) AddSubnetCIDR(ctx context.Context, cidr string, opts SubnetCIDROptions) (*SubnetView, error) {
	if err := validate.ValidateField(cidr, "required,cidrv4"); err != nil {
		_, msg := validate.Describe(err)
		return nil, validationError("cidr", msg)
	}
	prefix, err := netaddr.ParseIPPrefix(cidr)
	if err != nil {
		return nil, validationError("cidr", err.Error())
	}
	prefix = prefix.Masked()
	subnet := &store.Subnet{CN: prefix.IP().String(), Netmask: int(prefix.Bits()), Comments: opts.Comments}
	return s.createSubnet(ctx, subnet, opts.Router)
}

func (s *Service) createSubnet(ctx context.Context, subnet *store.Subnet, router string) (*SubnetView, error) {
	prefix, err := subnetPrefix(subnet)
	if err != nil {
		return nil, validationError("cn", err.Error())
	}
	mask := net.IP(prefix.IPNet().Mask).String()
	subnet.Statements = []string{}
	subnet.Options = []string{
		optSubnetMask + " " + mask,
		optBroadcastAddress + " " + prefix.Range().To().String(),
	}
	if router != "" {
		subnet.Options = upsert(subnet.Options, optRouters, router)
	}

	if err := s.store.CreateSubnet(ctx, subnet); err != nil {
		return nil, err
	}
	logging.Info("Created DHCP subnet %s/%d", subnet.CN, subnet.Netmask)
	return subnetView(subnet), nil
}

// FindSubnets lists subnets matching criteria.
func (s *Service) FindSubnets(ctx context.Context, criteria string) ([]SubnetView, error) {
	subnets, err := s.store.ListSubnets(ctx, criteria)
	if err != nil {
		return nil, err
	}
	views := make([]SubnetView, len(subnets))
	for i := range subnets {
		views[i] = *subnetView(&subnets[i])
	}
	return views, nil
}

// ShowSubnet returns one subnet.
func (s *Service) ShowSubnet(ctx context.Context, cn string) (*SubnetView, error) {
	subnet, err := s.store.GetSubnet(ctx, cn)
	if err != nil {
		return nil, err
	}
	return subnetView(subnet), nil
}

// ModSubnet applies opts to the subnet cn.
func (s *Service) ModSubnet(ctx context.Context, cn string, opts SubnetModOptions) (*SubnetView, error) {
	var view *SubnetView
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		subnet, err := tx.GetSubnet(ctx, cn)
		if err != nil {
			return err
		}
		if opts.Router != nil {
			if *opts.Router == "" {
				subnet.Options = remove(subnet.Options, optRouters)
			} else {
				subnet.Options = upsert(subnet.Options, optRouters, *opts.Router)
			}
		}
		if opts.Comments != nil {
			subnet.Comments = *opts.Comments
		}
		if err := tx.UpdateSubnet(ctx, subnet); err != nil {
			return err
		}
		view = subnetView(subnet)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// DelSubnet deletes the subnet cn. A subnet that still has pools is kept.
func (s *Service) DelSubnet(ctx context.Context, cn string) error {
	return s.store.WithTx(ctx, func(tx store.Store) error {
		if _, err := tx.GetSubnet(ctx, cn); err != nil {
			return err
		}
		pools, err := tx.ListPools(ctx, cn, "")
		if err != nil {
			return err
		}
		if len(pools) > 0 {
			return nonLeaf("subnet %s has %d pools; delete them first", cn, len(pools))
		}
		return tx.DeleteSubnet(ctx, cn)
	})
}

// =============================================================================
// Pools
// =============================================================================

// AddPool creates the pool cn in subnetCN. The range must pass the same
// checks as IsValid. New pools get the default permit list.
func (s *Service) AddPool(ctx context.Context, subnetCN, cn string, opts PoolAddOptions) (*PoolView, error) {
	var view *PoolView
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		if err := checkPoolRange(ctx, tx, subnetCN, "", opts.Range); err != nil {
			return err
		}

		cfg, err := tx.GetServiceConfig(ctx)
		if err != nil {
			return err
		}
		defaultLease, maxLease := opts.DefaultLeaseTime, opts.MaxLeaseTime
		if defaultLease == nil {
			defaultLease = leaseTime(cfg.Statements, stmtDefaultLeaseTime)
		}
		if maxLease == nil {
			maxLease = leaseTime(cfg.Statements, stmtMaxLeaseTime)
		}

		pool := &store.Pool{
			SubnetCN:   subnetCN,
			CN:         cn,
			Range:      opts.Range,
			PermitList: append([]string(nil), defaultPermitList...),
			Statements: applyLeaseTimes([]string{}, defaultLease, maxLease),
			Options:    []string{},
			Comments:   opts.Comments,
		}
		if err := tx.CreatePool(ctx, pool); err != nil {
			return err
		}
		view = poolView(pool)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.Info("Created DHCP pool %s in subnet %s (%s)", cn, subnetCN, opts.Range)
	return view, nil
}

// FindPools lists the pools of subnetCN matching criteria.
func (s *Service) FindPools(ctx context.Context, subnetCN, criteria string) ([]PoolView, error) {
	if _, err := s.store.GetSubnet(ctx, subnetCN); err != nil {
		return nil, err
	}
	pools, err := s.store.ListPools(ctx, subnetCN, criteria)
	if err != nil {
		return nil, err
	}
	views := make([]PoolView, len(pools))
	for i := range pools {
		views[i] = *poolView(&pools[i])
	}
	return views, nil
}

// ShowPool returns one pool.
func (s *Service) ShowPool(ctx context.Context, subnetCN, cn string) (*PoolView, error) {
	pool, err := s.store.GetPool(ctx, subnetCN, cn)
	if err != nil {
		return nil, err
	}
	return poolView(pool), nil
}

// ModPool applies opts to a pool. A new range is checked against the
// subnet and the other pools.
func (s *Service) ModPool(ctx context.Context, subnetCN, cn string, opts PoolModOptions) (*PoolView, error) {
	var view *PoolView
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		pool, err := tx.GetPool(ctx, subnetCN, cn)
		if err != nil {
			return err
		}

		if opts.Range != nil && *opts.Range != pool.Range {
			if err := checkPoolRange(ctx, tx, subnetCN, cn, *opts.Range); err != nil {
				return err
			}
			pool.Range = *opts.Range
		}
		pool.Statements = applyLeaseTimes(pool.Statements, opts.DefaultLeaseTime, opts.MaxLeaseTime)
		if opts.PermitKnownClients != nil {
			pool.PermitList = setPermit(pool.PermitList, permitKnownClients, *opts.PermitKnownClients)
		}
		if opts.PermitUnknownClients != nil {
			pool.PermitList = setPermit(pool.PermitList, permitUnknownClients, *opts.PermitUnknownClients)
		}
		if opts.Comments != nil {
			pool.Comments = *opts.Comments
		}

		if err := tx.UpdatePool(ctx, pool); err != nil {
			return err
		}
		view = poolView(pool)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// DelPool deletes a pool.
func (s *Service) DelPool(ctx context.Context, subnetCN, cn string) error {
	return s.store.DeletePool(ctx, subnetCN, cn)
}

// checkPoolRange rejects a range that does not fit subnetCN. The pool named
// self is left out of the overlap check.
func checkPoolRange(ctx context.Context, st store.Store, subnetCN, self, rangeText string) error {
	subnet, err := st.GetSubnet(ctx, subnetCN)
	if err != nil {
		return err
	}
	pools, err := st.ListPools(ctx, subnetCN, "")
	if err != nil {
		return err
	}
	if msg, ok := fitRange(subnet, pools, self, rangeText); !ok {
		return validationError("dhcprange", msg)
	}
	return nil
}

// =============================================================================
// Range check
// =============================================================================

// IsValid checks whether rangeText can be a pool range in subnetCN. Rejections
// are reported in the result, never as an error; the error is reserved for
// storage failures.
func (s *Service) IsValid(ctx context.Context, subnetCN, rangeText string) (dhcp.CheckResult, error) {
	if _, _, ok := ipaddr.ParseRange(rangeText); !ok {
		return dhcp.CheckResult{Result: false, Value: dhcp.RangeShapeMessage}, nil
	}

	// The shared lookup must outlive any one caller: callers that join it
	// give up on their own context, the lookup stops only at its timeout.
	lookupCtx := context.WithoutCancel(ctx)
	ch := s.subnetLookups.DoChan(subnetCN, func() (any, error) {
		ctx, cancel := context.WithTimeout(lookupCtx, subnetLookupTimeout)
		defer cancel()
		subnet, err := s.store.GetSubnet(ctx, subnetCN)
		if err != nil {
			return nil, err
		}
		pools, err := s.store.ListPools(ctx, subnetCN, "")
		if err != nil {
			return nil, err
		}
		return &subnetPools{subnet: subnet, pools: pools}, nil
	})

	var (
		v   any
		err error
	)
	select {
	case <-ctx.Done():
		return dhcp.CheckResult{}, ctx.Err()
	case res := <-ch:
		v, err = res.Val, res.Err
	}
	if errors.Is(err, store.ErrNotFound) {
		return dhcp.CheckResult{Result: false, Value: MsgNoSuchSubnet}, nil
	}
	if err != nil {
		return dhcp.CheckResult{}, fmt.Errorf("look up subnet %s: %w", subnetCN, err)
	}

	sp := v.(*subnetPools)
	msg, ok := fitRange(sp.subnet, sp.pools, "", rangeText)
	return dhcp.CheckResult{Result: ok, Value: msg}, nil
}

type subnetPools struct {
	subnet *store.Subnet
	pools  []store.Pool
}

func fitRange(subnet *store.Subnet, pools []store.Pool, self, rangeText string) (string, bool) {
	first, last, ok := ipaddr.ParseRange(rangeText)
	if !ok {
		return dhcp.RangeShapeMessage, false
	}
	prefix, err := subnetPrefix(subnet)
	if err != nil {
		return err.Error(), false
	}
	siblings := make([]store.Pool, 0, len(pools))
	for _, p := range pools {
		if p.CN != self {
			siblings = append(siblings, p)
		}
	}
	return CheckFit(prefix, first.IP, last.IP, siblings)
}
