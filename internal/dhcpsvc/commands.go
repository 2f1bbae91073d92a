package dhcpsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/concave-dev/dhcpool/internal/validate"
)

// Result is the response body of a command that returns one entry.
type Result struct {
	Result  any    `json:"result"`
	Value   string `json:"value"`
	Summary string `json:"summary,omitempty"`
}

// FindResult is the response body of a find command.
type FindResult struct {
	Result    any    `json:"result"`
	Count     int    `json:"count"`
	Truncated bool   `json:"truncated"`
	Summary   string `json:"summary"`
}

type commandFunc func(ctx context.Context, s *Service, args []string, options json.RawMessage) (any, error)

// command is one RPC method. Args names the positional arguments in order.
type command struct {
	args []string
	run  commandFunc
}

var commands = map[string]command{
	"dhcpservice_show": {run: serviceShow},
	"dhcpservice_mod":  {run: serviceMod},

	"dhcpsubnet_add":      {args: []string{"cn"}, run: subnetAdd},
	"dhcpsubnet_add_cidr": {args: []string{"cidr"}, run: subnetAddCIDR},
	"dhcpsubnet_find":     {run: subnetFind},
	"dhcpsubnet_show":     {args: []string{"cn"}, run: subnetShow},
	"dhcpsubnet_mod":      {args: []string{"cn"}, run: subnetMod},
	"dhcpsubnet_del":      {args: []string{"cn"}, run: subnetDel},

	"dhcppool_add":      {args: []string{"subnet", "cn"}, run: poolAdd},
	"dhcppool_find":     {args: []string{"subnet"}, run: poolFind},
	"dhcppool_show":     {args: []string{"subnet", "cn"}, run: poolShow},
	"dhcppool_mod":      {args: []string{"subnet", "cn"}, run: poolMod},
	"dhcppool_del":      {args: []string{"subnet", "cn"}, run: poolDel},
	"dhcppool_is_valid": {args: []string{"subnet", "dhcprange"}, run: poolIsValid},

	"dhcpserver_add":  {args: []string{"cn"}, run: serverAdd},
	"dhcpserver_find": {run: serverFind},
	"dhcpserver_show": {args: []string{"cn"}, run: serverShow},
	"dhcpserver_mod":  {args: []string{"cn"}, run: serverMod},
	"dhcpserver_del":  {args: []string{"cn"}, run: serverDel},

	"dhcphost_add":  {args: []string{"hostname", "macaddress"}, run: hostAdd},
	"dhcphost_find": {run: hostFind},
	"dhcphost_show": {args: []string{"cn"}, run: hostShow},
	"dhcphost_del":  {args: []string{"hostname", "macaddress"}, run: hostDel},
}

// Methods returns the names of all commands, sorted.
func Methods() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasMethod reports whether method is a known command.
func HasMethod(method string) bool {
	_, ok := commands[method]
	return ok
}

// Execute runs method with positional args and JSON-encoded options. Any
// failure comes back as a *CommandError.
func (s *Service) Execute(ctx context.Context, method string, args []string, options json.RawMessage) (any, error) {
	cmd, ok := commands[method]
	if !ok {
		return nil, &CommandError{Code: CodeNotFound, Name: "CommandError", Message: fmt.Sprintf("unknown command '%s'", method)}
	}
	if len(args) < len(cmd.args) {
		return nil, requirementError(cmd.args[len(args)])
	}
	if len(args) > len(cmd.args) {
		return nil, validationError("args", fmt.Sprintf("takes at most %d arguments", len(cmd.args)))
	}
	for i, a := range args {
		if a == "" {
			return nil, requirementError(cmd.args[i])
		}
	}

	result, err := cmd.run(ctx, s, args, options)
	if err != nil {
		return nil, AsCommandError(err)
	}
	return result, nil
}

// decodeOptions strictly decodes options into dst and validates it.
func decodeOptions(options json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(options)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(dst); err != nil {
			return validationError("options", err.Error())
		}
	}

	if err := validate.Struct(dst); err != nil {
		field, msg := validate.Describe(err)
		if msg == "Required field" {
			return requirementError(field)
		}
		return validationError(field, msg)
	}
	return nil
}

// =============================================================================
// Service
// =============================================================================

func serviceShow(ctx context.Context, s *Service, _ []string, _ json.RawMessage) (any, error) {
	view, err := s.ShowConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Result: view}, nil
}

func serviceMod(ctx context.Context, s *Service, _ []string, options json.RawMessage) (any, error) {
	var opts ServiceModOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	view, err := s.ModConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Result{Result: view, Summary: "Modified the DHCP configuration."}, nil
}

// =============================================================================
// Subnets
// =============================================================================

func subnetAdd(ctx context.Context, s *Service, args []string, options json.RawMessage) (any, error) {
	var opts SubnetAddOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	view, err := s.AddSubnet(ctx, args[0], opts)
	if err != nil {
		return nil, err
	}
	return &Result{Result: view, Value: view.CN, Summary: fmt.Sprintf("Created DHCP subnet \"%s\"", view.CN)}, nil
}

func subnetAddCIDR(ctx context.Context, s *Service, args []string, options json.RawMessage) (any, error) {
	var opts SubnetCIDROptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	view, err := s.AddSubnetCIDR(ctx, args[0], opts)
	if err != nil {
		return nil, err
	}
	return &Result{Result: view, Value: view.CN, Summary: fmt.Sprintf("Created DHCP subnet \"%s\"", view.CN)}, nil
}

func subnetFind(ctx context.Context, s *Service, _ []string, options json.RawMessage) (any, error) {
	var opts FindOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	views, err := s.FindSubnets(ctx, opts.Criteria)
	if err != nil {
		return nil, err
	}
	return &FindResult{Result: views, Count: len(views), Summary: matched(len(views), "subnet")}, nil
}

func subnetShow(ctx context.Context, s *Service, args []string, _ json.RawMessage) (any, error) {
	view, err := s.ShowSubnet(ctx, args[0])
	if err != nil {
		return nil, err
	}
	return &Result{Result: view, Value: view.CN}, nil
}

func subnetMod(ctx context.Context, s *Service, args []string, options json.RawMessage) (any, error) {
	var opts SubnetModOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	view, err := s.ModSubnet(ctx, args[0], opts)
	if err != nil {
		return nil, err
	}
	return &Result{Result: view, Value: view.CN, Summary: "Modified a DHCP subnet."}, nil
}

func subnetDel(ctx context.Context, s *Service, args []string, _ json.RawMessage) (any, error) {
	if err := s.DelSubnet(ctx, args[0]); err != nil {
		return nil, err
	}
	return &Result{Result: true, Value: args[0], Summary: fmt.Sprintf("Deleted DHCP subnet \"%s\"", args[0])}, nil
}

// =============================================================================
// Pools
// =============================================================================

func poolAdd(ctx context.Context, s *Service, args []string, options json.RawMessage) (any, error) {
	var opts PoolAddOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	view, err := s.AddPool(ctx, args[0], args[1], opts)
	if err != nil {
		return nil, err
	}
	return &Result{Result: view, Value: view.CN, Summary: fmt.Sprintf("Created DHCP pool \"%s\"", view.CN)}, nil
}

func poolFind(ctx context.Context, s *Service, args []string, options json.RawMessage) (any, error) {
	var opts FindOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	views, err := s.FindPools(ctx, args[0], opts.Criteria)
	if err != nil {
		return nil, err
	}
	return &FindResult{Result: views, Count: len(views), Summary: matched(len(views), "pool")}, nil
}

func poolShow(ctx context.Context, s *Service, args []string, _ json.RawMessage) (any, error) {
	view, err := s.ShowPool(ctx, args[0], args[1])
	if err != nil {
		return nil, err
	}
	return &Result{Result: view, Value: view.CN}, nil
}

func poolMod(ctx context.Context, s *Service, args []string, options json.RawMessage) (any, error) {
	var opts PoolModOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	view, err := s.ModPool(ctx, args[0], args[1], opts)
	if err != nil {
		return nil, err
	}
	return &Result{Result: view, Value: view.CN, Summary: "Modified a DHCP pool."}, nil
}

func poolDel(ctx context.Context, s *Service, args []string, _ json.RawMessage) (any, error) {
	if err := s.DelPool(ctx, args[0], args[1]); err != nil {
		return nil, err
	}
	return &Result{Result: true, Value: args[1], Summary: fmt.Sprintf("Deleted DHCP pool \"%s\"", args[1])}, nil
}

func poolIsValid(ctx context.Context, s *Service, args []string, _ json.RawMessage) (any, error) {
	return s.IsValid(ctx, args[0], args[1])
}

// =============================================================================
// Servers
// =============================================================================

func serverAdd(ctx context.Context, s *Service, args []string, options json.RawMessage) (any, error) {
	var opts ServerAddOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	view, err := s.AddServer(ctx, args[0], opts)
	if err != nil {
		return nil, err
	}
	return &Result{Result: view, Value: view.CN, Summary: fmt.Sprintf("Created DHCP server \"%s\"", view.CN)}, nil
}

func serverFind(ctx context.Context, s *Service, _ []string, options json.RawMessage) (any, error) {
	var opts FindOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	views, err := s.FindServers(ctx, opts.Criteria)
	if err != nil {
		return nil, err
	}
	return &FindResult{Result: views, Count: len(views), Summary: matched(len(views), "server")}, nil
}

func serverShow(ctx context.Context, s *Service, args []string, _ json.RawMessage) (any, error) {
	view, err := s.ShowServer(ctx, args[0])
	if err != nil {
		return nil, err
	}
	return &Result{Result: view, Value: view.CN}, nil
}

func serverMod(ctx context.Context, s *Service, args []string, options json.RawMessage) (any, error) {
	var opts ServerModOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	view, err := s.ModServer(ctx, args[0], opts)
	if err != nil {
		return nil, err
	}
	return &Result{Result: view, Value: view.CN, Summary: "Modified a DHCP server."}, nil
}

func serverDel(ctx context.Context, s *Service, args []string, _ json.RawMessage) (any, error) {
	if err := s.DelServer(ctx, args[0]); err != nil {
		return nil, err
	}
	return &Result{Result: true, Value: args[0], Summary: fmt.Sprintf("Deleted DHCP server \"%s\"", args[0])}, nil
}

// =============================================================================
// Hosts
// =============================================================================

func hostAdd(ctx context.Context, s *Service, args []string, options json.RawMessage) (any, error) {
	var opts HostAddOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	view, err := s.AddHost(ctx, args[0], args[1], opts)
	if err != nil {
		return nil, err
	}
	return &Result{Result: view, Value: view.CN, Summary: fmt.Sprintf("Created DHCP host \"%s\"", view.CN)}, nil
}

func hostFind(ctx context.Context, s *Service, _ []string, options json.RawMessage) (any, error) {
	var opts FindOptions
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	views, err := s.FindHosts(ctx, opts.Criteria)
	if err != nil {
		return nil, err
	}
	return &FindResult{Result: views, Count: len(views), Summary: matched(len(views), "host")}, nil
}

func hostShow(ctx context.Context, s *Service, args []string, _ json.RawMessage) (any, error) {
	view, err := s.ShowHost(ctx, args[0])
	if err != nil {
		return nil, err
	}
	return &Result{Result: view, Value: view.CN}, nil
}

func hostDel(ctx context.Context, s *Service, args []string, _ json.RawMessage) (any, error) {
	cn, err := s.DelHost(ctx, args[0], args[1])
	if err != nil {
		return nil, err
	}
	return &Result{Result: true, Value: cn, Summary: fmt.Sprintf("Deleted DHCP host \"%s\"", cn)}, nil
}

func matched(n int, entity string) string {
	if n == 1 {
		return fmt.Sprintf("1 DHCP %s matched", entity)
	}
	return fmt.Sprintf("%d DHCP %ss matched", n, entity)
}
