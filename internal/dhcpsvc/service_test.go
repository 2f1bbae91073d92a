package dhcpsvc

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/concave-dev/dhcpool/internal/dhcp"
	"github.com/concave-dev/dhcpool/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		st.Close()
	})
	return NewService(st)
}

func execute(t *testing.T, s *Service, method string, args []string, options string) (any, *CommandError) {
	t.Helper()
	result, err := s.Execute(context.Background(), method, args, json.RawMessage(options))
	if err != nil {
		var ce *CommandError
		require.ErrorAs(t, err, &ce)
		return nil, ce
	}
	return result, nil
}

func mustExecute(t *testing.T, s *Service, method string, args []string, options string) any {
	t.Helper()
	result, cerr := execute(t, s, method, args, options)
	require.Nil(t, cerr, "%s failed: %v", method, cerr)
	return result
}

func addTestSubnet(t *testing.T, s *Service) {
	t.Helper()
	mustExecute(t, s, "dhcpsubnet_add", []string{"192.168.1.0"}, `{"dhcpnetmask": 24}`)
}

// =============================================================================
// Service configuration
// =============================================================================

func TestServiceMod(t *testing.T) {
	s := setupTestService(t)

	result := mustExecute(t, s, "dhcpservice_mod", nil,
		`{"defaultleasetime": 3600, "maxleasetime": 7200, "domainname": "example.com",
		  "domainnameservers": ["10.0.0.1", "10.0.0.2"], "domainsearch": ["example.com"]}`)

	res := result.(*Result)
	assert.Equal(t, "Modified the DHCP configuration.", res.Summary)
	view := res.Result.(*ServiceView)
	assert.Equal(t, []string{"default-lease-time 3600", "max-lease-time 7200"}, view.Statements)
	assert.Equal(t, []string{
		`domain-name "example.com"`,
		"domain-name-servers 10.0.0.1, 10.0.0.2",
		`domain-search "example.com"`,
	}, view.Options)

	shown, err := s.ShowConfig(context.Background())
	require.NoError(t, err)
	require.NotNil(t, shown.DefaultLeaseTime)
	assert.Equal(t, 3600, *shown.DefaultLeaseTime)
	assert.Equal(t, "example.com", shown.DomainName)
}

func TestServiceModRejectsBadOptions(t *testing.T) {
	s := setupTestService(t)

	_, cerr := execute(t, s, "dhcpservice_mod", nil, `{"domainnameservers": ["10.0.0.1", "nope"]}`)
	require.NotNil(t, cerr)
	assert.Equal(t, CodeValidation, cerr.Code)
	assert.Contains(t, cerr.Message, "domainnameservers[1]")

	_, cerr = execute(t, s, "dhcpservice_mod", nil, `{"leasetime": 1}`)
	require.NotNil(t, cerr)
	assert.Equal(t, CodeValidation, cerr.Code)
}

// =============================================================================
// Subnets
// =============================================================================

func TestSubnetAdd(t *testing.T) {
	s := setupTestService(t)

	result := mustExecute(t, s, "dhcpsubnet_add", []string{"192.168.1.0"}, `{"dhcpnetmask": 24, "router": "192.168.1.1"}`)
	res := result.(*Result)
	assert.Equal(t, `Created DHCP subnet "192.168.1.0"`, res.Summary)

	view := res.Result.(*SubnetView)
	assert.Equal(t, 24, view.Netmask)
	assert.Equal(t, "192.168.1.1", view.Router)
	assert.Equal(t, []string{
		"subnet-mask 255.255.255.0",
		"broadcast-address 192.168.1.255",
		"routers 192.168.1.1",
	}, view.Options)
}

func TestSubnetAddErrors(t *testing.T) {
	s := setupTestService(t)
	addTestSubnet(t, s)

	tests := []struct {
		name     string
		args     []string
		options  string
		wantCode int
	}{
		{name: "duplicate", args: []string{"192.168.1.0"}, options: `{"dhcpnetmask": 24}`, wantCode: CodeDuplicate},
		{name: "missing netmask", args: []string{"10.0.0.0"}, options: `{}`, wantCode: CodeRequirement},
		{name: "netmask too long", args: []string{"10.0.0.0"}, options: `{"dhcpnetmask": 33}`, wantCode: CodeValidation},
		{name: "not an address", args: []string{"office"}, options: `{"dhcpnetmask": 24}`, wantCode: CodeValidation},
		{name: "missing cn", args: nil, options: `{"dhcpnetmask": 24}`, wantCode: CodeRequirement},
		{name: "empty cn", args: []string{""}, options: `{"dhcpnetmask": 24}`, wantCode: CodeRequirement},
		{name: "extra argument", args: []string{"10.0.0.0", "x"}, options: `{"dhcpnetmask": 8}`, wantCode: CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cerr := execute(t, s, "dhcpsubnet_add", tt.args, tt.options)
			require.NotNil(t, cerr)
			assert.Equal(t, tt.wantCode, cerr.Code, cerr.Message)
		})
	}
}

func TestSubnetAddCIDR(t *testing.T) {
	s := setupTestService(t)

	result := mustExecute(t, s, "dhcpsubnet_add_cidr", []string{"10.20.30.40/16"}, "")
	view := result.(*Result).Result.(*SubnetView)
	assert.Equal(t, "10.20.0.0", view.CN)
	assert.Equal(t, 16, view.Netmask)
	assert.Contains(t, view.Options, "broadcast-address 10.20.255.255")

	_, cerr := execute(t, s, "dhcpsubnet_add_cidr", []string{"10.20.0.0"}, "")
	require.NotNil(t, cerr)
	assert.Equal(t, CodeValidation, cerr.Code)
}

func TestSubnetFindAndMod(t *testing.T) {
	s := setupTestService(t)
	addTestSubnet(t, s)
	mustExecute(t, s, "dhcpsubnet_add", []string{"10.0.0.0"}, `{"dhcpnetmask": 8, "dhcpcomments": "lab"}`)

	result := mustExecute(t, s, "dhcpsubnet_find", nil, `{"criteria": "lab"}`)
	found := result.(*FindResult)
	assert.Equal(t, 1, found.Count)
	assert.Equal(t, "1 DHCP subnet matched", found.Summary)

	result = mustExecute(t, s, "dhcpsubnet_find", nil, "")
	assert.Equal(t, "2 DHCP subnets matched", result.(*FindResult).Summary)

	result = mustExecute(t, s, "dhcpsubnet_mod", []string{"10.0.0.0"}, `{"router": "10.0.0.1"}`)
	assert.Equal(t, "10.0.0.1", result.(*Result).Result.(*SubnetView).Router)

	result = mustExecute(t, s, "dhcpsubnet_mod", []string{"10.0.0.0"}, `{"router": ""}`)
	view := result.(*Result).Result.(*SubnetView)
	assert.Empty(t, view.Router)
	assert.NotContains(t, view.Options, "routers 10.0.0.1")

	_, cerr := execute(t, s, "dhcpsubnet_show", []string{"172.16.0.0"}, "")
	require.NotNil(t, cerr)
	assert.Equal(t, CodeNotFound, cerr.Code)
}

func TestSubnetDelRefusedWithPools(t *testing.T) {
	s := setupTestService(t)
	addTestSubnet(t, s)
	mustExecute(t, s, "dhcppool_add", []string{"192.168.1.0", "office"}, `{"dhcprange": "192.168.1.10 192.168.1.50"}`)

	_, cerr := execute(t, s, "dhcpsubnet_del", []string{"192.168.1.0"}, "")
	require.NotNil(t, cerr)
	assert.Equal(t, CodeNonLeaf, cerr.Code)

	mustExecute(t, s, "dhcppool_del", []string{"192.168.1.0", "office"}, "")
	result := mustExecute(t, s, "dhcpsubnet_del", []string{"192.168.1.0"}, "")
	assert.Equal(t, `Deleted DHCP subnet "192.168.1.0"`, result.(*Result).Summary)
}

// =============================================================================
// Pools
// =============================================================================

func TestPoolAddDefaults(t *testing.T) {
	s := setupTestService(t)
	addTestSubnet(t, s)
	mustExecute(t, s, "dhcpservice_mod", nil, `{"defaultleasetime": 3600, "maxleasetime": 7200}`)

	result := mustExecute(t, s, "dhcppool_add", []string{"192.168.1.0", "office"},
		`{"dhcprange": "192.168.1.10 192.168.1.50", "maxleasetime": 600}`)
	res := result.(*Result)
	assert.Equal(t, `Created DHCP pool "office"`, res.Summary)

	view := res.Result.(*PoolView)
	assert.Equal(t, []string{"allow unknown-clients", "allow known-clients"}, view.PermitList)
	assert.Equal(t, []string{"default-lease-time 3600", "max-lease-time 600"}, view.Statements)
	require.NotNil(t, view.PermitKnownClients)
	assert.True(t, *view.PermitKnownClients)
}

func TestPoolAddRejectsBadRanges(t *testing.T) {
	s := setupTestService(t)
	addTestSubnet(t, s)
	mustExecute(t, s, "dhcppool_add", []string{"192.168.1.0", "office"}, `{"dhcprange": "192.168.1.10 192.168.1.50"}`)

	tests := []struct {
		name     string
		args     []string
		options  string
		wantCode int
		wantMsg  string
	}{
		{
			name: "missing range", args: []string{"192.168.1.0", "lab"}, options: `{}`,
			wantCode: CodeRequirement, wantMsg: "'dhcprange' is required",
		},
		{
			name: "malformed range", args: []string{"192.168.1.0", "lab"}, options: `{"dhcprange": "192.168.1.10"}`,
			wantCode: CodeValidation, wantMsg: "must be of the form x.x.x.x y.y.y.y",
		},
		{
			name: "reversed range", args: []string{"192.168.1.0", "lab"}, options: `{"dhcprange": "192.168.1.90 192.168.1.60"}`,
			wantCode: CodeValidation, wantMsg: MsgOrder,
		},
		{
			name: "overlapping range", args: []string{"192.168.1.0", "lab"}, options: `{"dhcprange": "192.168.1.40 192.168.1.60"}`,
			wantCode: CodeValidation, wantMsg: "Range overlaps pool office",
		},
		{
			name: "missing subnet", args: []string{"10.9.9.0", "lab"}, options: `{"dhcprange": "10.9.9.10 10.9.9.20"}`,
			wantCode: CodeNotFound,
		},
		{
			name: "duplicate name", args: []string{"192.168.1.0", "office"}, options: `{"dhcprange": "192.168.1.100 192.168.1.120"}`,
			wantCode: CodeDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cerr := execute(t, s, "dhcppool_add", tt.args, tt.options)
			require.NotNil(t, cerr)
			assert.Equal(t, tt.wantCode, cerr.Code, cerr.Message)
			if tt.wantMsg != "" {
				assert.Contains(t, cerr.Message, tt.wantMsg)
			}
		})
	}
}

func TestPoolMod(t *testing.T) {
	s := setupTestService(t)
	addTestSubnet(t, s)
	mustExecute(t, s, "dhcppool_add", []string{"192.168.1.0", "office"}, `{"dhcprange": "192.168.1.10 192.168.1.50"}`)
	mustExecute(t, s, "dhcppool_add", []string{"192.168.1.0", "lab"}, `{"dhcprange": "192.168.1.100 192.168.1.150"}`)

	result := mustExecute(t, s, "dhcppool_mod", []string{"192.168.1.0", "office"},
		`{"dhcprange": "192.168.1.10 192.168.1.60", "permitunknownclients": false, "defaultleasetime": 900}`)
	view := result.(*Result).Result.(*PoolView)
	assert.Equal(t, "192.168.1.10 192.168.1.60", view.Range)
	assert.Equal(t, []string{"allow known-clients", "deny unknown-clients"}, view.PermitList)
	require.NotNil(t, view.PermitUnknownClients)
	assert.False(t, *view.PermitUnknownClients)
	require.NotNil(t, view.DefaultLeaseTime)
	assert.Equal(t, 900, *view.DefaultLeaseTime)

	_, cerr := execute(t, s, "dhcppool_mod", []string{"192.168.1.0", "office"}, `{"dhcprange": "192.168.1.10 192.168.1.120"}`)
	require.NotNil(t, cerr)
	assert.Contains(t, cerr.Message, "Range overlaps pool lab")

	result = mustExecute(t, s, "dhcppool_find", []string{"192.168.1.0"}, "")
	assert.Equal(t, 2, result.(*FindResult).Count)
}

// =============================================================================
// Range check
// =============================================================================

func TestPoolIsValid(t *testing.T) {
	s := setupTestService(t)
	addTestSubnet(t, s)
	mustExecute(t, s, "dhcppool_add", []string{"192.168.1.0", "office"}, `{"dhcprange": "192.168.1.10 192.168.1.50"}`)

	tests := []struct {
		name   string
		subnet string
		rng    string
		want   dhcp.CheckResult
	}{
		{
			name: "valid", subnet: "192.168.1.0", rng: "192.168.1.60 192.168.1.90",
			want: dhcp.CheckResult{Result: true, Value: MsgValidRange},
		},
		{
			name: "malformed", subnet: "192.168.1.0", rng: "192.168.1.60",
			want: dhcp.CheckResult{Value: dhcp.RangeShapeMessage},
		},
		{
			name: "no subnet", subnet: "10.0.0.0", rng: "10.0.0.1 10.0.0.2",
			want: dhcp.CheckResult{Value: MsgNoSuchSubnet},
		},
		{
			name: "reversed", subnet: "192.168.1.0", rng: "192.168.1.90 192.168.1.60",
			want: dhcp.CheckResult{Value: MsgOrder},
		},
		{
			name: "outside", subnet: "192.168.1.0", rng: "192.168.1.60 192.168.2.10",
			want: dhcp.CheckResult{Value: "192.168.2.10 is outside parent subnet 192.168.1.0/24. Addresses in this pool must come from the range 192.168.1.0-192.168.1.255."},
		},
		{
			name: "overlap", subnet: "192.168.1.0", rng: "192.168.1.50 192.168.1.90",
			want: dhcp.CheckResult{Value: "Range overlaps pool office"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mustExecute(t, s, "dhcppool_is_valid", []string{tt.subnet, tt.rng}, "")
			assert.Equal(t, tt.want, result)
		})
	}
}

func TestExecuteUnknownMethod(t *testing.T) {
	s := setupTestService(t)

	_, cerr := execute(t, s, "dhcphost_mod", nil, "")
	require.NotNil(t, cerr)
	assert.Equal(t, CodeNotFound, cerr.Code)
	assert.False(t, HasMethod("dhcphost_mod"))
	assert.Contains(t, Methods(), "dhcppool_is_valid")
	assert.Contains(t, Methods(), "dhcpserver_add")
	assert.Contains(t, Methods(), "dhcphost_add")
}

// gateStore blocks GetSubnet until release is closed.
type gateStore struct {
	store.Store
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (g *gateStore) GetSubnet(ctx context.Context, cn string) (*store.Subnet, error) {
	g.calls.Add(1)
	g.entered <- struct{}{}
	<-g.release
	return g.Store.GetSubnet(ctx, cn)
}

func TestPoolIsValidSharedLookupSurvivesCancel(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	addTestSubnet(t, NewService(st))

	gate := &gateStore{Store: st, entered: make(chan struct{}, 2), release: make(chan struct{})}
	s := NewService(gate)

	type outcome struct {
		res dhcp.CheckResult
		err error
	}
	ctxA, cancelA := context.WithCancel(context.Background())
	doneA := make(chan outcome, 1)
	go func() {
		res, err := s.IsValid(ctxA, "192.168.1.0", "192.168.1.10 192.168.1.20")
		doneA <- outcome{res, err}
	}()
	<-gate.entered

	doneB := make(chan outcome, 1)
	go func() {
		res, err := s.IsValid(context.Background(), "192.168.1.0", "192.168.1.10 192.168.1.20")
		doneB <- outcome{res, err}
	}()
	// Give B time to join the lookup A started
	time.Sleep(50 * time.Millisecond)

	cancelA()
	a := <-doneA
	assert.ErrorIs(t, a.err, context.Canceled)

	close(gate.release)
	select {
	case b := <-doneB:
		require.NoError(t, b.err)
		assert.Equal(t, dhcp.CheckResult{Result: true, Value: MsgValidRange}, b.res)
	case <-time.After(5 * time.Second):
		t.Fatal("second caller never returned")
	}
	assert.Equal(t, int32(1), gate.calls.Load(), "concurrent checks should share one lookup")
}
