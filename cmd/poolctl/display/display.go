// Package display provides output formatting and display functions for poolctl.
//
// Every display function honours --output: "table" prints text/tabwriter
// tables or key/value blocks, "json" prints indented JSON and "yaml" prints
// YAML. Structured formats print the same values the API returned, so they
// can be fed back into scripts.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/concave-dev/dhcpool/cmd/poolctl/client"
	"github.com/concave-dev/dhcpool/cmd/poolctl/config"
	"github.com/concave-dev/dhcpool/cmd/poolctl/utils"
	"github.com/concave-dev/dhcpool/internal/dhcp"
	"github.com/concave-dev/dhcpool/internal/dhcpsvc"
	"github.com/concave-dev/dhcpool/internal/logging"
	"gopkg.in/yaml.v3"
)

// Out is where all display output goes.
var Out io.Writer = os.Stdout

// structured prints v as JSON or YAML when one of those was asked for and
// reports whether it did.
func structured(v any) bool {
	switch config.Global.Output {
	case "json":
		encoder := json.NewEncoder(Out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			logging.Error("Failed to encode JSON: %v", err)
			fmt.Fprintln(Out, "Error encoding JSON output")
		}
		return true
	case "yaml":
		encoder := yaml.NewEncoder(Out)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			logging.Error("Failed to encode YAML: %v", err)
			fmt.Fprintln(Out, "Error encoding YAML output")
		}
		encoder.Close()
		return true
	}
	return false
}

// DisplayHealth shows the daemon's health and version.
func DisplayHealth(apiAddr string, health *client.HealthResponse) {
	if structured(health) {
		return
	}

	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "API:\t%s\n", apiAddr)
	fmt.Fprintf(w, "Status:\t%s\n", health.Status)
	fmt.Fprintf(w, "Version:\t%s\n", health.Version)
	fmt.Fprintf(w, "Uptime:\t%s\n", health.Uptime)
	fmt.Fprintf(w, "Database:\t%s\n", health.Database)
	if health.Error != "" {
		fmt.Fprintf(w, "Error:\t%s\n", health.Error)
	}
}

// DisplayServiceConfig shows the DHCP service configuration.
func DisplayServiceConfig(view *dhcpsvc.ServiceView) {
	if structured(view) {
		return
	}

	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Default lease time:\t%s\n", utils.FormatSeconds(view.DefaultLeaseTime))
	fmt.Fprintf(w, "Max lease time:\t%s\n", utils.FormatSeconds(view.MaxLeaseTime))
	writeDomainOptions(w, view.DomainOptions)
	fmt.Fprintf(w, "Primary server:\t%s\n", orDash(view.PrimaryDN))
	fmt.Fprintf(w, "Servers:\t%s\n", utils.JoinOrDash(view.SecondaryDNs))
	if config.Global.Verbose {
		fmt.Fprintf(w, "Statements:\t%s\n", utils.JoinOrDash(view.Statements))
		fmt.Fprintf(w, "Options:\t%s\n", utils.JoinOrDash(view.Options))
	}
	if view.Comments != "" {
		fmt.Fprintf(w, "Comments:\t%s\n", view.Comments)
	}
	fmt.Fprintf(w, "Updated:\t%s\n", utils.FormatAge(view.UpdatedAt))
}

// DisplaySubnets shows subnets as a table.
func DisplaySubnets(subnets []dhcpsvc.SubnetView) {
	if len(subnets) == 0 {
		switch config.Global.Output {
		case "json", "yaml":
			fmt.Fprintln(Out, "[]")
		default:
			fmt.Fprintln(Out, "No DHCP subnets found")
		}
		return
	}
	if structured(subnets) {
		return
	}

	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	if config.Global.Verbose {
		fmt.Fprintln(w, "SUBNET\tROUTER\tOPTIONS\tCOMMENTS\tCREATED")
	} else {
		fmt.Fprintln(w, "SUBNET\tROUTER\tCREATED")
	}
	for _, s := range subnets {
		network := fmt.Sprintf("%s/%d", s.CN, s.Netmask)
		router := s.Router
		if router == "" {
			router = "-"
		}
		if config.Global.Verbose {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", network, router,
				utils.JoinOrDash(s.Options), s.Comments, utils.FormatAge(s.CreatedAt))
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\n", network, router, utils.FormatAge(s.CreatedAt))
		}
	}
}

// DisplaySubnet shows one subnet in detail.
func DisplaySubnet(subnet *dhcpsvc.SubnetView) {
	if structured(subnet) {
		return
	}

	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Subnet:\t%s/%d\n", subnet.CN, subnet.Netmask)
	fmt.Fprintf(w, "Router:\t%s\n", orDash(subnet.Router))
	fmt.Fprintf(w, "Options:\t%s\n", utils.JoinOrDash(subnet.Options))
	if config.Global.Verbose {
		fmt.Fprintf(w, "Statements:\t%s\n", utils.JoinOrDash(subnet.Statements))
	}
	if subnet.Comments != "" {
		fmt.Fprintf(w, "Comments:\t%s\n", subnet.Comments)
	}
	fmt.Fprintf(w, "Created:\t%s\n", utils.FormatAge(subnet.CreatedAt))
	fmt.Fprintf(w, "Updated:\t%s\n", utils.FormatAge(subnet.UpdatedAt))
}

// DisplayPools shows the pools of a subnet as a table.
func DisplayPools(pools []dhcpsvc.PoolView) {
	if len(pools) == 0 {
		switch config.Global.Output {
		case "json", "yaml":
			fmt.Fprintln(Out, "[]")
		default:
			fmt.Fprintln(Out, "No DHCP pools found")
		}
		return
	}
	if structured(pools) {
		return
	}

	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	if config.Global.Verbose {
		fmt.Fprintln(w, "NAME\tRANGE\tLEASE\tMAX LEASE\tKNOWN\tUNKNOWN\tCREATED")
	} else {
		fmt.Fprintln(w, "NAME\tRANGE\tCREATED")
	}
	for _, p := range pools {
		rng := strings.ReplaceAll(p.Range, " ", " - ")
		if config.Global.Verbose {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", p.CN, rng,
				utils.FormatSeconds(p.DefaultLeaseTime), utils.FormatSeconds(p.MaxLeaseTime),
				utils.FormatPermit(p.PermitKnownClients), utils.FormatPermit(p.PermitUnknownClients),
				utils.FormatAge(p.CreatedAt))
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.CN, rng, utils.FormatAge(p.CreatedAt))
		}
	}
}

// DisplayPool shows one pool in detail.
func DisplayPool(pool *dhcpsvc.PoolView) {
	if structured(pool) {
		return
	}

	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Pool:\t%s\n", pool.CN)
	fmt.Fprintf(w, "Subnet:\t%s\n", pool.SubnetCN)
	fmt.Fprintf(w, "Range:\t%s\n", pool.Range)
	fmt.Fprintf(w, "Default lease time:\t%s\n", utils.FormatSeconds(pool.DefaultLeaseTime))
	fmt.Fprintf(w, "Max lease time:\t%s\n", utils.FormatSeconds(pool.MaxLeaseTime))
	fmt.Fprintf(w, "Known clients:\t%s\n", utils.FormatPermit(pool.PermitKnownClients))
	fmt.Fprintf(w, "Unknown clients:\t%s\n", utils.FormatPermit(pool.PermitUnknownClients))
	writeDomainOptions(w, pool.DomainOptions)
	if config.Global.Verbose {
		fmt.Fprintf(w, "Permit list:\t%s\n", utils.JoinOrDash(pool.PermitList))
		fmt.Fprintf(w, "Statements:\t%s\n", utils.JoinOrDash(pool.Statements))
		fmt.Fprintf(w, "Options:\t%s\n", utils.JoinOrDash(pool.Options))
	}
	if pool.Comments != "" {
		fmt.Fprintf(w, "Comments:\t%s\n", pool.Comments)
	}
	fmt.Fprintf(w, "Created:\t%s\n", utils.FormatAge(pool.CreatedAt))
}

// DisplayServers shows servers as a table.
func DisplayServers(servers []dhcpsvc.ServerView) {
	if len(servers) == 0 {
		switch config.Global.Output {
		case "json", "yaml":
			fmt.Fprintln(Out, "[]")
		default:
			fmt.Fprintln(Out, "No DHCP servers found")
		}
		return
	}
	if structured(servers) {
		return
	}

	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "SERVER\tSERVICE\tSTATEMENTS\tCREATED")
	for _, s := range servers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.CN, s.ServiceDN,
			utils.JoinOrDash(s.Statements), utils.FormatAge(s.CreatedAt))
	}
}

// DisplayServer shows one server in detail.
func DisplayServer(server *dhcpsvc.ServerView) {
	if structured(server) {
		return
	}

	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Server:\t%s\n", server.CN)
	fmt.Fprintf(w, "DN:\t%s\n", server.DN)
	fmt.Fprintf(w, "Service:\t%s\n", server.ServiceDN)
	fmt.Fprintf(w, "Statements:\t%s\n", utils.JoinOrDash(server.Statements))
	fmt.Fprintf(w, "Options:\t%s\n", utils.JoinOrDash(server.Options))
	if server.Comments != "" {
		fmt.Fprintf(w, "Comments:\t%s\n", server.Comments)
	}
	fmt.Fprintf(w, "Created:\t%s\n", utils.FormatAge(server.CreatedAt))
}

// DisplayHosts shows fixed-address hosts as a table.
func DisplayHosts(hosts []dhcpsvc.HostView) {
	if len(hosts) == 0 {
		switch config.Global.Output {
		case "json", "yaml":
			fmt.Fprintln(Out, "[]")
		default:
			fmt.Fprintln(Out, "No DHCP hosts found")
		}
		return
	}
	if structured(hosts) {
		return
	}

	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "NAME\tMAC\tCREATED")
	for _, h := range hosts {
		fmt.Fprintf(w, "%s\t%s\t%s\n", h.CN, h.MACAddress, utils.FormatAge(h.CreatedAt))
	}
}

// DisplayHost shows one host entry in detail.
func DisplayHost(host *dhcpsvc.HostView) {
	if structured(host) {
		return
	}

	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Host:\t%s\n", host.CN)
	fmt.Fprintf(w, "Hardware address:\t%s\n", host.HWAddress)
	fmt.Fprintf(w, "Statements:\t%s\n", utils.JoinOrDash(host.Statements))
	fmt.Fprintf(w, "Options:\t%s\n", utils.JoinOrDash(host.Options))
	if host.Comments != "" {
		fmt.Fprintf(w, "Comments:\t%s\n", host.Comments)
	}
	fmt.Fprintf(w, "Created:\t%s\n", utils.FormatAge(host.CreatedAt))
}

// RangeCheck is the structured form of a pool check.
type RangeCheck struct {
	Subnet        string `json:"subnet" yaml:"subnet"`
	Range         string `json:"dhcprange" yaml:"dhcprange"`
	Valid         bool   `json:"valid" yaml:"valid"`
	Message       string `json:"message" yaml:"message"`
	SuggestedName string `json:"suggested_name,omitempty" yaml:"suggested_name,omitempty"`
}

// DisplayRangeCheck shows the verdict the pool dialog reached for a range.
func DisplayRangeCheck(subnet, rangeText string, verdict dhcp.Verdict, suggestedName string) {
	check := RangeCheck{
		Subnet:        subnet,
		Range:         rangeText,
		Valid:         verdict.IsValid,
		Message:       verdict.Message,
		SuggestedName: suggestedName,
	}
	if structured(check) {
		return
	}

	mark := "✗"
	if verdict.IsValid {
		mark = "✓"
	}
	fmt.Fprintf(Out, "%s %s\n", mark, verdict.Message)
	if verdict.IsValid && suggestedName != "" && config.Global.Verbose {
		fmt.Fprintf(Out, "  Suggested name: %s\n", suggestedName)
	}
}

// DisplaySummary prints a mutation's summary line in table mode. Structured
// modes print the resulting entry, or the summary alone when there is none.
func DisplaySummary(summary string, entry any) {
	if entry == nil {
		entry = map[string]string{"summary": summary}
	}
	if structured(entry) {
		return
	}
	if summary != "" {
		fmt.Fprintln(Out, summary)
	}
}

func writeDomainOptions(w io.Writer, opts dhcpsvc.DomainOptions) {
	fmt.Fprintf(w, "Domain name:\t%s\n", orDash(opts.DomainName))
	fmt.Fprintf(w, "Name servers:\t%s\n", utils.JoinOrDash(opts.DomainNameServers))
	fmt.Fprintf(w, "Search domains:\t%s\n", utils.JoinOrDash(opts.DomainSearch))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
