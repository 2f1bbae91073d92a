package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/concave-dev/dhcpool/cmd/poolctl/client"
	"github.com/concave-dev/dhcpool/cmd/poolctl/config"
	"github.com/concave-dev/dhcpool/cmd/poolctl/display"
	"github.com/concave-dev/dhcpool/internal/api"
	"github.com/concave-dev/dhcpool/internal/dhcpsvc"
	"github.com/concave-dev/dhcpool/internal/logging"
	"github.com/concave-dev/dhcpool/internal/store"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestAPI points the handlers at a real API server over an in-memory
// store and captures display output.
func setupTestAPI(t *testing.T) *bytes.Buffer {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := api.DefaultConfig()
	cfg.Version = "test"
	cfg.Service = dhcpsvc.NewService(st)
	cfg.RateLimit.Enabled = false

	srv := httptest.NewServer(api.NewServer(cfg).Handler())
	t.Cleanup(srv.Close)

	return pointHandlersAt(t, strings.TrimPrefix(srv.URL, "http://"))
}

func pointHandlersAt(t *testing.T, addr string) *bytes.Buffer {
	t.Helper()
	prevClient, prevOut := newClient, display.Out
	newClient = func() *client.PoolAPIClient {
		return client.NewPoolAPIClient(addr, 5*time.Second)
	}
	buf := &bytes.Buffer{}
	display.Out = buf

	config.Global.APIAddr = addr
	config.Global.LogLevel = "ERROR"
	config.Global.Output = "table"
	config.Global.Verbose = false
	config.Subnet.Netmask, config.Subnet.Router, config.Subnet.Comments, config.Subnet.Criteria = 0, "", "", ""
	config.Pool.Name, config.Pool.Comments, config.Pool.Range, config.Pool.Criteria = "", "", "", ""
	config.Pool.DefaultLeaseTime, config.Pool.MaxLeaseTime = 0, 0
	config.Pool.KnownClients, config.Pool.UnknownClients = "", ""
	config.Service.PrimaryServer = ""
	config.Server.Statements, config.Server.Options = nil, nil
	config.Server.Comments, config.Server.Criteria = "", ""
	config.Host.Comments, config.Host.Criteria = "", ""

	t.Cleanup(func() {
		newClient, display.Out = prevClient, prevOut
		logging.RestoreOutput()
	})
	return buf
}

func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.SetContext(context.Background())
	return cmd
}

func addSubnet(t *testing.T, cidr string) {
	t.Helper()
	require.NoError(t, HandleSubnetAdd(newTestCmd(), []string{cidr}))
}

func TestSubnetAddAndList(t *testing.T) {
	buf := setupTestAPI(t)

	config.Subnet.Router = "10.0.0.1"
	addSubnet(t, "10.0.0.0/24")
	assert.NotEmpty(t, buf.String(), "subnet add should print a summary")

	buf.Reset()
	require.NoError(t, HandleSubnetList(newTestCmd(), nil))
	out := buf.String()
	assert.Contains(t, out, "SUBNET")
	assert.Contains(t, out, "10.0.0.0/24")
	assert.Contains(t, out, "10.0.0.1")
}

func TestSubnetAddWithNetmask(t *testing.T) {
	buf := setupTestAPI(t)

	cmd := newTestCmd()
	cmd.Flags().IntVar(&config.Subnet.Netmask, "netmask", 0, "")
	require.NoError(t, cmd.Flags().Set("netmask", "16"))
	require.NoError(t, HandleSubnetAdd(cmd, []string{"10.1.0.0"}))

	buf.Reset()
	require.NoError(t, HandleSubnetInfo(newTestCmd(), []string{"10.1.0.0"}))
	assert.Contains(t, buf.String(), "10.1.0.0/16")
}

func TestSubnetAddRejected(t *testing.T) {
	setupTestAPI(t)
	addSubnet(t, "10.0.0.0/24")

	// Host bits are cleared, so this is the same subnet again
	err := HandleSubnetAdd(newTestCmd(), []string{"10.0.0.5/24"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add subnet")

	err = HandleSubnetAdd(newTestCmd(), []string{"10.2.0.0"})
	require.Error(t, err, "a bare network address needs --netmask")
	assert.Contains(t, err.Error(), "failed to add subnet")
}

func TestPoolAdd(t *testing.T) {
	buf := setupTestAPI(t)
	addSubnet(t, "10.0.0.0/24")

	buf.Reset()
	require.NoError(t, HandlePoolAdd(newTestCmd(), []string{"10.0.0.0", "10.0.0.10", "10.0.0.50"}))

	buf.Reset()
	require.NoError(t, HandlePoolList(newTestCmd(), []string{"10.0.0.0"}))
	assert.Contains(t, buf.String(), "10.0.0.10 - 10.0.0.50")

	// The pool is named after its range when no name was given
	buf.Reset()
	require.NoError(t, HandlePoolInfo(newTestCmd(), []string{"10.0.0.0", "10.0.0.10 10.0.0.50"}))
	assert.Contains(t, buf.String(), "10.0.0.10 10.0.0.50")
}

func TestPoolAddExplicitName(t *testing.T) {
	buf := setupTestAPI(t)
	addSubnet(t, "10.0.0.0/24")

	config.Pool.Name = "guests"
	config.Pool.Comments = "visitor laptops"
	require.NoError(t, HandlePoolAdd(newTestCmd(), []string{"10.0.0.0", "10.0.0.100", "10.0.0.150"}))

	buf.Reset()
	require.NoError(t, HandlePoolInfo(newTestCmd(), []string{"10.0.0.0", "guests"}))
	assert.Contains(t, buf.String(), "10.0.0.100 10.0.0.150")
	assert.Contains(t, buf.String(), "visitor laptops")
}

func TestPoolAddRejected(t *testing.T) {
	setupTestAPI(t)
	addSubnet(t, "10.0.0.0/24")
	require.NoError(t, HandlePoolAdd(newTestCmd(), []string{"10.0.0.0", "10.0.0.10", "10.0.0.50"}))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "overlapping pool",
			args:    []string{"10.0.0.0", "10.0.0.40", "10.0.0.60"},
			wantErr: "overlaps pool",
		},
		{
			name:    "outside subnet",
			args:    []string{"10.0.0.0", "10.0.1.10", "10.0.1.20"},
			wantErr: "outside parent subnet",
		},
		{
			name:    "reversed range",
			args:    []string{"10.0.0.0", "10.0.0.90", "10.0.0.80"},
			wantErr: dhcpsvc.MsgOrder,
		},
		{
			name:    "malformed address",
			args:    []string{"10.0.0.0", "10.0.0.10", "bogus"},
			wantErr: "Range must be of the form",
		},
		{
			name:    "unknown subnet",
			args:    []string{"172.16.0.0", "172.16.0.10", "172.16.0.20"},
			wantErr: dhcpsvc.MsgNoSuchSubnet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HandlePoolAdd(newTestCmd(), tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "cannot add pool")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	pools, err := newClient().FindPools(context.Background(), "10.0.0.0", "")
	require.NoError(t, err)
	assert.Len(t, pools, 1, "rejected ranges must not be written")
}

func TestPoolCheck(t *testing.T) {
	buf := setupTestAPI(t)
	addSubnet(t, "10.0.0.0/24")
	require.NoError(t, HandlePoolAdd(newTestCmd(), []string{"10.0.0.0", "10.0.0.10", "10.0.0.50"}))

	buf.Reset()
	require.NoError(t, HandlePoolCheck(newTestCmd(), []string{"10.0.0.0", "10.0.0.60", "10.0.0.80"}))
	assert.Contains(t, buf.String(), "✓ "+dhcpsvc.MsgValidRange)

	buf.Reset()
	err := HandlePoolCheck(newTestCmd(), []string{"10.0.0.0", "10.0.0.20", "10.0.0.30"})
	require.Error(t, err)
	assert.Contains(t, buf.String(), "✗ Range overlaps pool")
}

func TestPoolCheckJSON(t *testing.T) {
	buf := setupTestAPI(t)
	addSubnet(t, "10.0.0.0/24")

	config.Global.Output = "json"
	buf.Reset()
	require.NoError(t, HandlePoolCheck(newTestCmd(), []string{"10.0.0.0", "10.0.0.60", "10.0.0.80"}))

	var check display.RangeCheck
	require.NoError(t, json.Unmarshal(buf.Bytes(), &check))
	assert.True(t, check.Valid)
	assert.Equal(t, "10.0.0.0", check.Subnet)
	assert.Equal(t, "10.0.0.60 10.0.0.80", check.SuggestedName)
}

func TestPoolMod(t *testing.T) {
	buf := setupTestAPI(t)
	addSubnet(t, "10.0.0.0/24")
	config.Pool.Name = "guests"
	require.NoError(t, HandlePoolAdd(newTestCmd(), []string{"10.0.0.0", "10.0.0.10", "10.0.0.50"}))

	cmd := newTestCmd()
	cmd.Flags().StringVar(&config.Pool.Range, "range", "", "")
	require.NoError(t, cmd.Flags().Set("range", "10.0.0.20 10.0.0.60"))
	config.Pool.KnownClients = "allow"
	require.NoError(t, HandlePoolMod(cmd, []string{"10.0.0.0", "guests"}))

	buf.Reset()
	require.NoError(t, HandlePoolInfo(newTestCmd(), []string{"10.0.0.0", "guests"}))
	assert.Contains(t, buf.String(), "10.0.0.20 10.0.0.60")

	config.Pool.KnownClients = "sometimes"
	err := HandlePoolMod(newTestCmd(), []string{"10.0.0.0", "guests"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "known-clients")
}

func TestSubnetDeleteWithPools(t *testing.T) {
	setupTestAPI(t)
	addSubnet(t, "10.0.0.0/24")
	config.Pool.Name = "guests"
	require.NoError(t, HandlePoolAdd(newTestCmd(), []string{"10.0.0.0", "10.0.0.10", "10.0.0.50"}))

	err := HandleSubnetDelete(newTestCmd(), []string{"10.0.0.0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete subnet")

	require.NoError(t, HandlePoolDelete(newTestCmd(), []string{"10.0.0.0", "guests"}))
	require.NoError(t, HandleSubnetDelete(newTestCmd(), []string{"10.0.0.0"}))
}

func TestInfo(t *testing.T) {
	buf := setupTestAPI(t)

	require.NoError(t, HandleInfo(newTestCmd(), nil))
	assert.Contains(t, buf.String(), "healthy")
	assert.Contains(t, buf.String(), "test")
}

func TestConnectionRefused(t *testing.T) {
	// Grab a free port and release it so nothing listens there
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	pointHandlersAt(t, addr)
	newClient = func() *client.PoolAPIClient {
		return client.NewPoolAPIClient(addr, time.Second)
	}

	err = HandleSubnetList(newTestCmd(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list subnets")
}

func TestServerAddAndPrimary(t *testing.T) {
	buf := setupTestAPI(t)

	config.Server.Statements = []string{"authoritative"}
	require.NoError(t, HandleServerAdd(newTestCmd(), []string{"ns1.example.com"}))
	assert.Contains(t, buf.String(), `Created DHCP server "ns1.example.com"`)

	cmd := newTestCmd()
	cmd.Flags().StringVar(&config.Service.PrimaryServer, "primary-server", "", "")
	require.NoError(t, cmd.Flags().Set("primary-server", "ns1.example.com"))
	require.NoError(t, HandleConfigMod(cmd, nil))

	buf.Reset()
	require.NoError(t, HandleConfigShow(newTestCmd(), nil))
	out := buf.String()
	assert.Contains(t, out, "Primary server:")
	assert.Contains(t, out, "cn=ns1.example.com,cn=dhcp")

	buf.Reset()
	require.NoError(t, HandleServerInfo(newTestCmd(), []string{"ns1.example.com"}))
	assert.Contains(t, buf.String(), "authoritative")

	require.NoError(t, HandleServerDelete(newTestCmd(), []string{"ns1.example.com"}))
	buf.Reset()
	require.NoError(t, HandleServerList(newTestCmd(), nil))
	assert.Contains(t, buf.String(), "No DHCP servers found")
}

func TestServerModReplacesOptions(t *testing.T) {
	buf := setupTestAPI(t)
	require.NoError(t, HandleServerAdd(newTestCmd(), []string{"ns1.example.com"}))

	cmd := newTestCmd()
	cmd.Flags().StringArrayVar(&config.Server.Options, "option", nil, "")
	require.NoError(t, cmd.Flags().Set("option", `domain-name "example.com"`))
	require.NoError(t, HandleServerMod(cmd, []string{"ns1.example.com"}))

	buf.Reset()
	require.NoError(t, HandleServerInfo(newTestCmd(), []string{"ns1.example.com"}))
	assert.Contains(t, buf.String(), `domain-name "example.com"`)
}

func TestHostAddListDelete(t *testing.T) {
	buf := setupTestAPI(t)

	require.NoError(t, HandleHostAdd(newTestCmd(), []string{"web1.example.com", "00:11:22:33:44:aa"}))
	assert.Contains(t, buf.String(), "web1.example.com-0011223344AA")

	err := HandleHostAdd(newTestCmd(), []string{"web2.example.com", "not-a-mac"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add host")

	buf.Reset()
	require.NoError(t, HandleHostList(newTestCmd(), nil))
	out := buf.String()
	assert.Contains(t, out, "MAC")
	assert.Contains(t, out, "00:11:22:33:44:AA")

	require.NoError(t, HandleHostDelete(newTestCmd(), []string{"web1.example.com", "00:11:22:33:44:AA"}))
	buf.Reset()
	require.NoError(t, HandleHostList(newTestCmd(), nil))
	assert.Contains(t, buf.String(), "No DHCP hosts found")
}
