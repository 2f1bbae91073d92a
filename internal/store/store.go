// Package store persists the DHCP service configuration, subnets, pools,
// servers and hosts.
//
// Entities keep the attribute names of the DHCP schema they model: a subnet
// is keyed by its network address (cn) and carries a netmask length, a pool
// is keyed by (subnet cn, pool cn) and carries its range as "first last".
// Statement, option and permit lists are stored as JSON arrays.
package store

import (
	"context"
	"time"
)

// ServiceConfig is the singleton DHCP service entry.
type ServiceConfig struct {
	Statements []string  `json:"dhcpstatements" yaml:"dhcpstatements"`
	Options    []string  `json:"dhcpoption" yaml:"dhcpoption"`
	Comments   string    `json:"dhcpcomments,omitempty" yaml:"dhcpcomments,omitempty"`

	// PrimaryDN names the server that serves this configuration;
	// SecondaryDNs lists every registered server.
	PrimaryDN    string   `json:"dhcpprimarydn,omitempty" yaml:"dhcpprimarydn,omitempty"`
	SecondaryDNs []string `json:"dhcpsecondarydn" yaml:"dhcpsecondarydn"`

	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Subnet is a DHCP subnet. CN is the network address.
type Subnet struct {
	CN         string    `json:"cn" yaml:"cn"`
	Netmask    int       `json:"dhcpnetmask" yaml:"dhcpnetmask"`
	Statements []string  `json:"dhcpstatements" yaml:"dhcpstatements"`
	Options    []string  `json:"dhcpoption" yaml:"dhcpoption"`
	Comments   string    `json:"dhcpcomments,omitempty" yaml:"dhcpcomments,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}

// Pool is an address pool inside a subnet.
type Pool struct {
	SubnetCN   string    `json:"subnet" yaml:"subnet"`
	CN         string    `json:"cn" yaml:"cn"`
	Range      string    `json:"dhcprange" yaml:"dhcprange"`
	PermitList []string  `json:"dhcppermitlist" yaml:"dhcppermitlist"`
	Statements []string  `json:"dhcpstatements" yaml:"dhcpstatements"`
	Options    []string  `json:"dhcpoption" yaml:"dhcpoption"`
	Comments   string    `json:"dhcpcomments,omitempty" yaml:"dhcpcomments,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}

// Server is a DHCP server entry. CN is the server's hostname and ServiceDN
// points at the service entry it serves.
type Server struct {
	CN         string    `json:"cn" yaml:"cn"`
	ServiceDN  string    `json:"dhcpservicedn" yaml:"dhcpservicedn"`
	Statements []string  `json:"dhcpstatements" yaml:"dhcpstatements"`
	Options    []string  `json:"dhcpoption" yaml:"dhcpoption"`
	Comments   string    `json:"dhcpcomments,omitempty" yaml:"dhcpcomments,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}

// Host is a fixed-address host entry keyed by hostname and hardware address.
type Host struct {
	CN         string    `json:"cn" yaml:"cn"`
	HWAddress  string    `json:"dhcphwaddress" yaml:"dhcphwaddress"`
	Statements []string  `json:"dhcpstatements" yaml:"dhcpstatements"`
	Options    []string  `json:"dhcpoption" yaml:"dhcpoption"`
	Comments   string    `json:"dhcpcomments,omitempty" yaml:"dhcpcomments,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}

// Store defines the persistence interface for DHCP entities.
type Store interface {
	GetServiceConfig(ctx context.Context) (*ServiceConfig, error)
	UpdateServiceConfig(ctx context.Context, cfg *ServiceConfig) error

	CreateSubnet(ctx context.Context, subnet *Subnet) error
	GetSubnet(ctx context.Context, cn string) (*Subnet, error)
	UpdateSubnet(ctx context.Context, subnet *Subnet) error
	DeleteSubnet(ctx context.Context, cn string) error
	ListSubnets(ctx context.Context, criteria string) ([]Subnet, error)

	CreatePool(ctx context.Context, pool *Pool) error
	GetPool(ctx context.Context, subnetCN, cn string) (*Pool, error)
	UpdatePool(ctx context.Context, pool *Pool) error
	DeletePool(ctx context.Context, subnetCN, cn string) error
	ListPools(ctx context.Context, subnetCN, criteria string) ([]Pool, error)

	CreateServer(ctx context.Context, server *Server) error
	GetServer(ctx context.Context, cn string) (*Server, error)
	UpdateServer(ctx context.Context, server *Server) error
	DeleteServer(ctx context.Context, cn string) error
	ListServers(ctx context.Context, criteria string) ([]Server, error)

	CreateHost(ctx context.Context, host *Host) error
	GetHost(ctx context.Context, cn string) (*Host, error)
	DeleteHost(ctx context.Context, cn string) error
	ListHosts(ctx context.Context, criteria string) ([]Host, error)

	// WithTx runs fn against a Store bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(Store) error) error

	Close() error
}
