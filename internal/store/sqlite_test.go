package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func createTestSubnet(t *testing.T, s Store, cn string) *Subnet {
	t.Helper()
	subnet := &Subnet{
		CN:      cn,
		Netmask: 24,
		Options: []string{"subnet-mask 255.255.255.0", "broadcast-address 192.168.1.255"},
	}
	require.NoError(t, s.CreateSubnet(context.Background(), subnet))
	return subnet
}

func createTestPool(t *testing.T, s Store, subnetCN, cn, rng string) *Pool {
	t.Helper()
	pool := &Pool{
		SubnetCN:   subnetCN,
		CN:         cn,
		Range:      rng,
		PermitList: []string{"allow unknown-clients", "allow known-clients"},
	}
	require.NoError(t, s.CreatePool(context.Background(), pool))
	return pool
}

// =============================================================================
// Service Config Tests
// =============================================================================

func TestServiceConfig_SeededAndUpdated(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	cfg, err := s.GetServiceConfig(ctx)
	require.NoError(t, err)
	assert.Empty(t, cfg.Statements)
	assert.Empty(t, cfg.Options)

	cfg.Statements = []string{"default-lease-time 43200", "max-lease-time 86400"}
	cfg.Options = []string{`domain-name "example.com"`}
	require.NoError(t, s.UpdateServiceConfig(ctx, cfg))

	got, err := s.GetServiceConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg.Statements, got.Statements)
	assert.Equal(t, cfg.Options, got.Options)
	assert.False(t, got.UpdatedAt.IsZero())
}

// =============================================================================
// Subnet Tests
// =============================================================================

func TestSubnet_CRUD(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created := createTestSubnet(t, s, "192.168.1.0")
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetSubnet(ctx, "192.168.1.0")
	require.NoError(t, err)
	assert.Equal(t, 24, got.Netmask)
	assert.Equal(t, created.Options, got.Options)
	assert.Empty(t, got.Statements)

	got.Comments = "office"
	got.Options = append(got.Options, "routers 192.168.1.1")
	require.NoError(t, s.UpdateSubnet(ctx, got))

	updated, err := s.GetSubnet(ctx, "192.168.1.0")
	require.NoError(t, err)
	assert.Equal(t, "office", updated.Comments)
	assert.Contains(t, updated.Options, "routers 192.168.1.1")

	require.NoError(t, s.DeleteSubnet(ctx, "192.168.1.0"))
	_, err = s.GetSubnet(ctx, "192.168.1.0")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSubnet_Duplicate(t *testing.T) {
	s := setupTestStore(t)
	createTestSubnet(t, s, "10.0.0.0")

	err := s.CreateSubnet(context.Background(), &Subnet{CN: "10.0.0.0", Netmask: 8})
	assert.True(t, errors.Is(err, ErrDuplicateID), "got %v", err)
}

func TestSubnet_NotFound(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.GetSubnet(ctx, "172.16.0.0")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.UpdateSubnet(ctx, &Subnet{CN: "172.16.0.0", Netmask: 12})
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.DeleteSubnet(ctx, "172.16.0.0")
	assert.True(t, errors.Is(err, ErrNotFound))

	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "DeleteSubnet", storeErr.Op)
	assert.Equal(t, "172.16.0.0", storeErr.ID)
}

func TestSubnet_DeleteWithPoolsRefused(t *testing.T) {
	s := setupTestStore(t)
	createTestSubnet(t, s, "192.168.1.0")
	createTestPool(t, s, "192.168.1.0", "main", "192.168.1.10 192.168.1.50")

	err := s.DeleteSubnet(context.Background(), "192.168.1.0")
	assert.True(t, errors.Is(err, ErrForeignKey), "got %v", err)
}

func TestSubnet_List(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	createTestSubnet(t, s, "192.168.1.0")
	createTestSubnet(t, s, "192.168.2.0")
	other := &Subnet{CN: "10.0.0.0", Netmask: 8, Comments: "datacenter"}
	require.NoError(t, s.CreateSubnet(ctx, other))

	all, err := s.ListSubnets(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	matched, err := s.ListSubnets(ctx, "192.168")
	require.NoError(t, err)
	assert.Len(t, matched, 2)

	byComment, err := s.ListSubnets(ctx, "datacenter")
	require.NoError(t, err)
	require.Len(t, byComment, 1)
	assert.Equal(t, "10.0.0.0", byComment[0].CN)
}

// =============================================================================
// Pool Tests
// =============================================================================

func TestPool_CRUD(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	createTestSubnet(t, s, "192.168.1.0")
	createTestPool(t, s, "192.168.1.0", "main", "192.168.1.10 192.168.1.50")

	got, err := s.GetPool(ctx, "192.168.1.0", "main")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.10 192.168.1.50", got.Range)
	assert.Equal(t, []string{"allow unknown-clients", "allow known-clients"}, got.PermitList)

	got.Statements = []string{"default-lease-time 600"}
	got.PermitList = []string{"deny unknown-clients", "allow known-clients"}
	require.NoError(t, s.UpdatePool(ctx, got))

	updated, err := s.GetPool(ctx, "192.168.1.0", "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"default-lease-time 600"}, updated.Statements)
	assert.Equal(t, "deny unknown-clients", updated.PermitList[0])

	require.NoError(t, s.DeletePool(ctx, "192.168.1.0", "main"))
	_, err = s.GetPool(ctx, "192.168.1.0", "main")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPool_MissingSubnet(t *testing.T) {
	s := setupTestStore(t)

	err := s.CreatePool(context.Background(), &Pool{SubnetCN: "10.9.9.0", CN: "p", Range: "10.9.9.1 10.9.9.2"})
	assert.True(t, errors.Is(err, ErrForeignKey), "got %v", err)
}

func TestPool_DuplicateWithinSubnetOnly(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	createTestSubnet(t, s, "192.168.1.0")
	createTestSubnet(t, s, "192.168.2.0")
	createTestPool(t, s, "192.168.1.0", "main", "192.168.1.10 192.168.1.50")

	err := s.CreatePool(ctx, &Pool{SubnetCN: "192.168.1.0", CN: "main", Range: "192.168.1.60 192.168.1.70"})
	assert.True(t, errors.Is(err, ErrDuplicateID), "got %v", err)

	// The same name in another subnet is a different pool.
	createTestPool(t, s, "192.168.2.0", "main", "192.168.2.10 192.168.2.50")
}

func TestPool_ListScopedToSubnet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	createTestSubnet(t, s, "192.168.1.0")
	createTestSubnet(t, s, "192.168.2.0")
	createTestPool(t, s, "192.168.1.0", "a", "192.168.1.10 192.168.1.20")
	createTestPool(t, s, "192.168.1.0", "b", "192.168.1.30 192.168.1.40")
	createTestPool(t, s, "192.168.2.0", "c", "192.168.2.10 192.168.2.20")

	pools, err := s.ListPools(ctx, "192.168.1.0", "")
	require.NoError(t, err)
	require.Len(t, pools, 2)
	assert.Equal(t, "a", pools[0].CN)
	assert.Equal(t, "b", pools[1].CN)

	matched, err := s.ListPools(ctx, "192.168.1.0", "192.168.1.3")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "b", matched[0].CN)
}

// =============================================================================
// Server Tests
// =============================================================================

func TestServiceConfig_ServerDNs(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	cfg, err := s.GetServiceConfig(ctx)
	require.NoError(t, err)
	assert.Empty(t, cfg.PrimaryDN)
	assert.Empty(t, cfg.SecondaryDNs)

	cfg.PrimaryDN = "cn=ns1.example.com,cn=dhcp"
	cfg.SecondaryDNs = []string{"cn=ns1.example.com,cn=dhcp", "cn=ns2.example.com,cn=dhcp"}
	require.NoError(t, s.UpdateServiceConfig(ctx, cfg))

	got, err := s.GetServiceConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg.PrimaryDN, got.PrimaryDN)
	assert.Equal(t, cfg.SecondaryDNs, got.SecondaryDNs)
}

func TestServer_CRUD(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	server := &Server{CN: "ns1.example.com", ServiceDN: "cn=dhcp", Statements: []string{"authoritative"}}
	require.NoError(t, s.CreateServer(ctx, server))
	assert.False(t, server.CreatedAt.IsZero())

	err := s.CreateServer(ctx, &Server{CN: "ns1.example.com", ServiceDN: "cn=dhcp"})
	assert.True(t, errors.Is(err, ErrDuplicateID), "got %v", err)

	got, err := s.GetServer(ctx, "ns1.example.com")
	require.NoError(t, err)
	assert.Equal(t, "cn=dhcp", got.ServiceDN)
	assert.Equal(t, []string{"authoritative"}, got.Statements)
	assert.Empty(t, got.Options)

	got.Comments = "primary"
	require.NoError(t, s.UpdateServer(ctx, got))

	require.NoError(t, s.CreateServer(ctx, &Server{CN: "ns2.example.com", ServiceDN: "cn=dhcp"}))
	all, err := s.ListServers(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "primary", all[0].Comments)

	matched, err := s.ListServers(ctx, "ns2")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "ns2.example.com", matched[0].CN)

	require.NoError(t, s.DeleteServer(ctx, "ns1.example.com"))
	assert.True(t, errors.Is(s.DeleteServer(ctx, "ns1.example.com"), ErrNotFound))
	assert.True(t, errors.Is(s.UpdateServer(ctx, got), ErrNotFound))
}

// =============================================================================
// Host Tests
// =============================================================================

func TestHost_CRUD(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	host := &Host{
		CN:         "web1.example.com-0011223344AA",
		HWAddress:  "ethernet 00:11:22:33:44:AA",
		Statements: []string{"fixed-address web1.example.com"},
		Options:    []string{`host-name "web1.example.com"`},
	}
	require.NoError(t, s.CreateHost(ctx, host))
	err := s.CreateHost(ctx, &Host{CN: host.CN, HWAddress: host.HWAddress})
	assert.True(t, errors.Is(err, ErrDuplicateID), "got %v", err)

	got, err := s.GetHost(ctx, host.CN)
	require.NoError(t, err)
	assert.Equal(t, host.HWAddress, got.HWAddress)
	assert.Equal(t, host.Options, got.Options)

	matched, err := s.ListHosts(ctx, "44:AA")
	require.NoError(t, err)
	require.Len(t, matched, 1)

	none, err := s.ListHosts(ctx, "db1")
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, s.DeleteHost(ctx, host.CN))
	_, err = s.GetHost(ctx, host.CN)
	assert.True(t, errors.Is(err, ErrNotFound))
}

// =============================================================================
// Transaction Tests
// =============================================================================

func TestWithTx_RollbackOnError(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	createTestSubnet(t, s, "192.168.1.0")

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx Store) error {
		require.NoError(t, tx.CreatePool(ctx, &Pool{SubnetCN: "192.168.1.0", CN: "tmp", Range: "192.168.1.1 192.168.1.2"}))
		return boom
	})
	assert.True(t, errors.Is(err, boom))

	_, err = s.GetPool(ctx, "192.168.1.0", "tmp")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestWithTx_Commit(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	createTestSubnet(t, s, "192.168.1.0")

	err := s.WithTx(ctx, func(tx Store) error {
		return tx.CreatePool(ctx, &Pool{SubnetCN: "192.168.1.0", CN: "kept", Range: "192.168.1.1 192.168.1.2"})
	})
	require.NoError(t, err)

	_, err = s.GetPool(ctx, "192.168.1.0", "kept")
	assert.NoError(t, err)
}
