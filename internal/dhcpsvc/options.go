package dhcpsvc

// Option structs decode the named options of each command. Validation tags
// use JSON names so failures point at the option the client sent.

// ServiceModOptions are the options of dhcpservice_mod.
type ServiceModOptions struct {
	DefaultLeaseTime  *int     `json:"defaultleasetime" validate:"omitempty,min=0"`
	MaxLeaseTime      *int     `json:"maxleasetime" validate:"omitempty,min=0"`
	DomainName        *string  `json:"domainname" validate:"omitempty,fqdn"`
	DomainNameServers []string `json:"domainnameservers" validate:"omitempty,dive,ipv4"`
	DomainSearch      []string `json:"domainsearch" validate:"omitempty,dive,fqdn"`
	Comments          *string  `json:"dhcpcomments"`
	PrimaryDN         *string  `json:"dhcpprimarydn"`
}

// SubnetAddOptions are the options of dhcpsubnet_add.
type SubnetAddOptions struct {
	Netmask  *int   `json:"dhcpnetmask" validate:"required,min=0,max=32"`
	Router   string `json:"router" validate:"omitempty,ipv4"`
	Comments string `json:"dhcpcomments"`
}

// SubnetCIDROptions are the options of dhcpsubnet_add_cidr.
type SubnetCIDROptions struct {
	Router   string `json:"router" validate:"omitempty,ipv4"`
	Comments string `json:"dhcpcomments"`
}

// SubnetModOptions are the options of dhcpsubnet_mod. An empty router
// removes the routers option.
type SubnetModOptions struct {
	Router   *string `json:"router" validate:"omitempty,ipv4"`
	Comments *string `json:"dhcpcomments"`
}

// PoolAddOptions are the options of dhcppool_add. Lease times that are not
// given are inherited from the service configuration.
type PoolAddOptions struct {
	Range            string `json:"dhcprange" validate:"required,dhcprange"`
	DefaultLeaseTime *int   `json:"defaultleasetime" validate:"omitempty,min=0"`
	MaxLeaseTime     *int   `json:"maxleasetime" validate:"omitempty,min=0"`
	Comments         string `json:"dhcpcomments"`
}

// PoolModOptions are the options of dhcppool_mod.
type PoolModOptions struct {
	Range                *string `json:"dhcprange" validate:"omitempty,dhcprange"`
	DefaultLeaseTime     *int    `json:"defaultleasetime" validate:"omitempty,min=0"`
	MaxLeaseTime         *int    `json:"maxleasetime" validate:"omitempty,min=0"`
	PermitKnownClients   *bool   `json:"permitknownclients"`
	PermitUnknownClients *bool   `json:"permitunknownclients"`
	Comments             *string `json:"dhcpcomments"`
}

// ServerAddOptions are the options of dhcpserver_add. The service DN
// defaults to the one service entry.
type ServerAddOptions struct {
	ServiceDN  string   `json:"dhcpservicedn"`
	Statements []string `json:"dhcpstatements"`
	Options    []string `json:"dhcpoption"`
	Comments   string   `json:"dhcpcomments"`
}

// ServerModOptions are the options of dhcpserver_mod.
type ServerModOptions struct {
	Statements []string `json:"dhcpstatements"`
	Options    []string `json:"dhcpoption"`
	Comments   *string  `json:"dhcpcomments"`
}

// HostAddOptions are the options of dhcphost_add.
type HostAddOptions struct {
	Comments string `json:"dhcpcomments"`
}

// FindOptions are the options of the find commands.
type FindOptions struct {
	Criteria string `json:"criteria"`
}

