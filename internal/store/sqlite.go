package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	gosqlite3 "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// executor abstracts the operations shared by a connection and a transaction.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens dsn, enables foreign keys and runs migrations.
// ":memory:" gives a private in-memory database.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	db, err := sqlx.Open("sqlite3", dsn+sep+"_foreign_keys=on")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}
	// One connection keeps an in-memory database alive across calls and
	// serialises writers on file databases.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations applies the embedded SQL migrations.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetServiceConfig(ctx context.Context) (*ServiceConfig, error) {
	return getServiceConfig(ctx, s.db)
}

func (s *SQLiteStore) UpdateServiceConfig(ctx context.Context, cfg *ServiceConfig) error {
	return updateServiceConfig(ctx, s.db, cfg)
}

func (s *SQLiteStore) CreateSubnet(ctx context.Context, subnet *Subnet) error {
	return createSubnet(ctx, s.db, subnet)
}

func (s *SQLiteStore) GetSubnet(ctx context.Context, cn string) (*Subnet, error) {
	return getSubnet(ctx, s.db, cn)
}

func (s *SQLiteStore) UpdateSubnet(ctx context.Context, subnet *Subnet) error {
	return updateSubnet(ctx, s.db, subnet)
}

func (s *SQLiteStore) DeleteSubnet(ctx context.Context, cn string) error {
	return deleteSubnet(ctx, s.db, cn)
}

func (s *SQLiteStore) ListSubnets(ctx context.Context, criteria string) ([]Subnet, error) {
	return listSubnets(ctx, s.db, criteria)
}

func (s *SQLiteStore) CreatePool(ctx context.Context, pool *Pool) error {
	return createPool(ctx, s.db, pool)
}

func (s *SQLiteStore) GetPool(ctx context.Context, subnetCN, cn string) (*Pool, error) {
	return getPool(ctx, s.db, subnetCN, cn)
}

func (s *SQLiteStore) UpdatePool(ctx context.Context, pool *Pool) error {
	return updatePool(ctx, s.db, pool)
}

func (s *SQLiteStore) DeletePool(ctx context.Context, subnetCN, cn string) error {
	return deletePool(ctx, s.db, subnetCN, cn)
}

func (s *SQLiteStore) ListPools(ctx context.Context, subnetCN, criteria string) ([]Pool, error) {
	return listPools(ctx, s.db, subnetCN, criteria)
}

func (s *SQLiteStore) CreateServer(ctx context.Context, server *Server) error {
	return createServer(ctx, s.db, server)
}

func (s *SQLiteStore) GetServer(ctx context.Context, cn string) (*Server, error) {
	return getServer(ctx, s.db, cn)
}

func (s *SQLiteStore) UpdateServer(ctx context.Context, server *Server) error {
	return updateServer(ctx, s.db, server)
}

func (s *SQLiteStore) DeleteServer(ctx context.Context, cn string) error {
	return deleteServer(ctx, s.db, cn)
}

func (s *SQLiteStore) ListServers(ctx context.Context, criteria string) ([]Server, error) {
	return listServers(ctx, s.db, criteria)
}

func (s *SQLiteStore) CreateHost(ctx context.Context, host *Host) error {
	return createHost(ctx, s.db, host)
}

func (s *SQLiteStore) GetHost(ctx context.Context, cn string) (*Host, error) {
	return getHost(ctx, s.db, cn)
}

func (s *SQLiteStore) DeleteHost(ctx context.Context, cn string) error {
	return deleteHost(ctx, s.db, cn)
}

func (s *SQLiteStore) ListHosts(ctx context.Context, criteria string) ([]Host, error) {
	return listHosts(ctx, s.db, criteria)
}

// =============================================================================
// Transaction Support
// =============================================================================

func (s *SQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return NewStoreError("WithTx", "", "", "failed to begin transaction", ErrTxFailed)
	}

	if err := fn(&txSQLiteStore{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewStoreError("WithTx", "", "", fmt.Sprintf("rollback failed after error: %v", err), ErrTxFailed)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewStoreError("WithTx", "", "", "failed to commit transaction", ErrTxFailed)
	}
	return nil
}

// txSQLiteStore implements Store within a transaction.
type txSQLiteStore struct {
	tx *sqlx.Tx
}

func (s *txSQLiteStore) GetServiceConfig(ctx context.Context) (*ServiceConfig, error) {
	return getServiceConfig(ctx, s.tx)
}

func (s *txSQLiteStore) UpdateServiceConfig(ctx context.Context, cfg *ServiceConfig) error {
	return updateServiceConfig(ctx, s.tx, cfg)
}

func (s *txSQLiteStore) CreateSubnet(ctx context.Context, subnet *Subnet) error {
	return createSubnet(ctx, s.tx, subnet)
}

func (s *txSQLiteStore) GetSubnet(ctx context.Context, cn string) (*Subnet, error) {
	return getSubnet(ctx, s.tx, cn)
}

func (s *txSQLiteStore) UpdateSubnet(ctx context.Context, subnet *Subnet) error {
	return updateSubnet(ctx, s.tx, subnet)
}

func (s *txSQLiteStore) DeleteSubnet(ctx context.Context, cn string) error {
	return deleteSubnet(ctx, s.tx, cn)
}

func (s *txSQLiteStore) ListSubnets(ctx context.Context, criteria string) ([]Subnet, error) {
	return listSubnets(ctx, s.tx, criteria)
}

func (s *txSQLiteStore) CreatePool(ctx context.Context, pool *Pool) error {
	return createPool(ctx, s.tx, pool)
}

func (s *txSQLiteStore) GetPool(ctx context.Context, subnetCN, cn string) (*Pool, error) {
	return getPool(ctx, s.tx, subnetCN, cn)
}

func (s *txSQLiteStore) UpdatePool(ctx context.Context, pool *Pool) error {
	return updatePool(ctx, s.tx, pool)
}

func (s *txSQLiteStore) DeletePool(ctx context.Context, subnetCN, cn string) error {
	return deletePool(ctx, s.tx, subnetCN, cn)
}

func (s *txSQLiteStore) ListPools(ctx context.Context, subnetCN, criteria string) ([]Pool, error) {
	return listPools(ctx, s.tx, subnetCN, criteria)
}

func (s *txSQLiteStore) CreateServer(ctx context.Context, server *Server) error {
	return createServer(ctx, s.tx, server)
}

func (s *txSQLiteStore) GetServer(ctx context.Context, cn string) (*Server, error) {
	return getServer(ctx, s.tx, cn)
}

func (s *txSQLiteStore) UpdateServer(ctx context.Context, server *Server) error {
	return updateServer(ctx, s.tx, server)
}

func (s *txSQLiteStore) DeleteServer(ctx context.Context, cn string) error {
	return deleteServer(ctx, s.tx, cn)
}

func (s *txSQLiteStore) ListServers(ctx context.Context, criteria string) ([]Server, error) {
	return listServers(ctx, s.tx, criteria)
}

func (s *txSQLiteStore) CreateHost(ctx context.Context, host *Host) error {
	return createHost(ctx, s.tx, host)
}

func (s *txSQLiteStore) GetHost(ctx context.Context, cn string) (*Host, error) {
	return getHost(ctx, s.tx, cn)
}

func (s *txSQLiteStore) DeleteHost(ctx context.Context, cn string) error {
	return deleteHost(ctx, s.tx, cn)
}

func (s *txSQLiteStore) ListHosts(ctx context.Context, criteria string) ([]Host, error) {
	return listHosts(ctx, s.tx, criteria)
}

// WithTx reuses the open transaction; nested calls do not commit on their own.
func (s *txSQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	return fn(s)
}

func (s *txSQLiteStore) Close() error {
	return nil
}

// =============================================================================
// Rows
// =============================================================================

type serviceConfigRow struct {
	ID           int    `db:"id"`
	Statements   string `db:"statements"`
	Options      string `db:"options"`
	Comments     string `db:"comments"`
	UpdatedAt    string `db:"updated_at"`
	PrimaryDN    string `db:"primary_dn"`
	SecondaryDNs string `db:"secondary_dns"`
}

type subnetRow struct {
	CN         string `db:"cn"`
	Netmask    int    `db:"netmask"`
	Statements string `db:"statements"`
	Options    string `db:"options"`
	Comments   string `db:"comments"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

type poolRow struct {
	SubnetCN   string `db:"subnet_cn"`
	CN         string `db:"cn"`
	Range      string `db:"range_text"`
	PermitList string `db:"permit_list"`
	Statements string `db:"statements"`
	Options    string `db:"options"`
	Comments   string `db:"comments"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

type serverRow struct {
	CN         string `db:"cn"`
	ServiceDN  string `db:"service_dn"`
	Statements string `db:"statements"`
	Options    string `db:"options"`
	Comments   string `db:"comments"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

type hostRow struct {
	CN         string `db:"cn"`
	HWAddress  string `db:"hw_address"`
	Statements string `db:"statements"`
	Options    string `db:"options"`
	Comments   string `db:"comments"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

// =============================================================================
// Service Config
// =============================================================================

func getServiceConfig(ctx context.Context, exec executor) (*ServiceConfig, error) {
	var row serviceConfigRow
	if err := exec.GetContext(ctx, &row, `SELECT * FROM service_config WHERE id = 1`); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetServiceConfig", "service", "", "service config not found", ErrNotFound)
		}
		return nil, NewStoreError("GetServiceConfig", "service", "", err.Error(), err)
	}

	cfg := &ServiceConfig{
		Comments:  row.Comments,
		PrimaryDN: row.PrimaryDN,
		UpdatedAt: parseTime(row.UpdatedAt),
	}
	if err := decodeList(row.Statements, &cfg.Statements); err != nil {
		return nil, NewStoreError("GetServiceConfig", "service", "", "failed to decode statements", ErrInvalidData)
	}
	if err := decodeList(row.Options, &cfg.Options); err != nil {
		return nil, NewStoreError("GetServiceConfig", "service", "", "failed to decode options", ErrInvalidData)
	}
	if err := decodeList(row.SecondaryDNs, &cfg.SecondaryDNs); err != nil {
		return nil, NewStoreError("GetServiceConfig", "service", "", "failed to decode secondary servers", ErrInvalidData)
	}
	return cfg, nil
}

func updateServiceConfig(ctx context.Context, exec executor, cfg *ServiceConfig) error {
	statements, err := encodeList(cfg.Statements)
	if err != nil {
		return NewStoreError("UpdateServiceConfig", "service", "", "failed to encode statements", ErrInvalidData)
	}
	options, err := encodeList(cfg.Options)
	if err != nil {
		return NewStoreError("UpdateServiceConfig", "service", "", "failed to encode options", ErrInvalidData)
	}
	secondaries, err := encodeList(cfg.SecondaryDNs)
	if err != nil {
		return NewStoreError("UpdateServiceConfig", "service", "", "failed to encode secondary servers", ErrInvalidData)
	}

	cfg.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE service_config
		SET statements = :statements, options = :options, comments = :comments,
			primary_dn = :primary_dn, secondary_dns = :secondary_dns, updated_at = :updated_at
		WHERE id = 1`

	_, err = exec.NamedExecContext(ctx, query, map[string]any{
		"statements":    statements,
		"options":       options,
		"comments":      cfg.Comments,
		"primary_dn":    cfg.PrimaryDN,
		"secondary_dns": secondaries,
		"updated_at":    formatTime(cfg.UpdatedAt),
	})
	if err != nil {
		return NewStoreError("UpdateServiceConfig", "service", "", err.Error(), err)
	}
	return nil
}

// =============================================================================
// Subnets
// =============================================================================

func createSubnet(ctx context.Context, exec executor, subnet *Subnet) error {
	row, err := subnetToRow(subnet)
	if err != nil {
		return NewStoreError("CreateSubnet", "subnet", subnet.CN, err.Error(), ErrInvalidData)
	}
	now := time.Now().UTC()
	subnet.CreatedAt, subnet.UpdatedAt = now, now
	row.CreatedAt, row.UpdatedAt = formatTime(now), formatTime(now)

	query := `
		INSERT INTO subnets (cn, netmask, statements, options, comments, created_at, updated_at)
		VALUES (:cn, :netmask, :statements, :options, :comments, :created_at, :updated_at)`

	if _, err := exec.NamedExecContext(ctx, query, row); err != nil {
		if errors.Is(constraintError(err), ErrDuplicateID) {
			return NewStoreError("CreateSubnet", "subnet", subnet.CN, "subnet already exists", ErrDuplicateID)
		}
		return NewStoreError("CreateSubnet", "subnet", subnet.CN, err.Error(), err)
	}
	return nil
}

func getSubnet(ctx context.Context, exec executor, cn string) (*Subnet, error) {
	var row subnetRow
	if err := exec.GetContext(ctx, &row, `SELECT * FROM subnets WHERE cn = ?`, cn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetSubnet", "subnet", cn, "subnet not found", ErrNotFound)
		}
		return nil, NewStoreError("GetSubnet", "subnet", cn, err.Error(), err)
	}
	return rowToSubnet(&row)
}

func updateSubnet(ctx context.Context, exec executor, subnet *Subnet) error {
	row, err := subnetToRow(subnet)
	if err != nil {
		return NewStoreError("UpdateSubnet", "subnet", subnet.CN, err.Error(), ErrInvalidData)
	}
	subnet.UpdatedAt = time.Now().UTC()
	row.UpdatedAt = formatTime(subnet.UpdatedAt)

	query := `
		UPDATE subnets
		SET netmask = :netmask, statements = :statements, options = :options,
			comments = :comments, updated_at = :updated_at
		WHERE cn = :cn`

	result, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		return NewStoreError("UpdateSubnet", "subnet", subnet.CN, err.Error(), err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return NewStoreError("UpdateSubnet", "subnet", subnet.CN, "subnet not found", ErrNotFound)
	}
	return nil
}

func deleteSubnet(ctx context.Context, exec executor, cn string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM subnets WHERE cn = ?`, cn)
	if err != nil {
		if errors.Is(constraintError(err), ErrForeignKey) {
			return NewStoreError("DeleteSubnet", "subnet", cn, "subnet still has pools", ErrForeignKey)
		}
		return NewStoreError("DeleteSubnet", "subnet", cn, err.Error(), err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return NewStoreError("DeleteSubnet", "subnet", cn, "subnet not found", ErrNotFound)
	}
	return nil
}

func listSubnets(ctx context.Context, exec executor, criteria string) ([]Subnet, error) {
	var rows []subnetRow
	query := `
		SELECT * FROM subnets
		WHERE ? = '' OR cn LIKE ? OR comments LIKE ?
		ORDER BY cn`
	pattern := likePattern(criteria)
	if err := exec.SelectContext(ctx, &rows, query, criteria, pattern, pattern); err != nil {
		return nil, NewStoreError("ListSubnets", "subnet", "", err.Error(), err)
	}

	subnets := make([]Subnet, 0, len(rows))
	for i := range rows {
		s, err := rowToSubnet(&rows[i])
		if err != nil {
			return nil, err
		}
		subnets = append(subnets, *s)
	}
	return subnets, nil
}

// =============================================================================
// Pools
// =============================================================================

func createPool(ctx context.Context, exec executor, pool *Pool) error {
	row, err := poolToRow(pool)
	if err != nil {
		return NewStoreError("CreatePool", "pool", pool.CN, err.Error(), ErrInvalidData)
	}
	now := time.Now().UTC()
	pool.CreatedAt, pool.UpdatedAt = now, now
	row.CreatedAt, row.UpdatedAt = formatTime(now), formatTime(now)

	query := `
		INSERT INTO pools (
			subnet_cn, cn, range_text, permit_list, statements, options, comments,
			created_at, updated_at
		) VALUES (
			:subnet_cn, :cn, :range_text, :permit_list, :statements, :options, :comments,
			:created_at, :updated_at
		)`

	if _, err := exec.NamedExecContext(ctx, query, row); err != nil {
		switch cerr := constraintError(err); {
		case errors.Is(cerr, ErrDuplicateID):
			return NewStoreError("CreatePool", "pool", pool.CN, "pool already exists", ErrDuplicateID)
		case errors.Is(cerr, ErrForeignKey):
			return NewStoreError("CreatePool", "pool", pool.CN, "parent subnet does not exist", ErrForeignKey)
		}
		return NewStoreError("CreatePool", "pool", pool.CN, err.Error(), err)
	}
	return nil
}

func getPool(ctx context.Context, exec executor, subnetCN, cn string) (*Pool, error) {
	var row poolRow
	query := `SELECT * FROM pools WHERE subnet_cn = ? AND cn = ?`
	if err := exec.GetContext(ctx, &row, query, subnetCN, cn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetPool", "pool", cn, "pool not found", ErrNotFound)
		}
		return nil, NewStoreError("GetPool", "pool", cn, err.Error(), err)
	}
	return rowToPool(&row)
}

func updatePool(ctx context.Context, exec executor, pool *Pool) error {
	row, err := poolToRow(pool)
	if err != nil {
		return NewStoreError("UpdatePool", "pool", pool.CN, err.Error(), ErrInvalidData)
	}
	pool.UpdatedAt = time.Now().UTC()
	row.UpdatedAt = formatTime(pool.UpdatedAt)

	query := `
		UPDATE pools
		SET range_text = :range_text, permit_list = :permit_list, statements = :statements,
			options = :options, comments = :comments, updated_at = :updated_at
		WHERE subnet_cn = :subnet_cn AND cn = :cn`

	result, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		return NewStoreError("UpdatePool", "pool", pool.CN, err.Error(), err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return NewStoreError("UpdatePool", "pool", pool.CN, "pool not found", ErrNotFound)
	}
	return nil
}

func deletePool(ctx context.Context, exec executor, subnetCN, cn string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM pools WHERE subnet_cn = ? AND cn = ?`, subnetCN, cn)
	if err != nil {
		return NewStoreError("DeletePool", "pool", cn, err.Error(), err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return NewStoreError("DeletePool", "pool", cn, "pool not found", ErrNotFound)
	}
	return nil
}

func listPools(ctx context.Context, exec executor, subnetCN, criteria string) ([]Pool, error) {
	var rows []poolRow
	query := `
		SELECT * FROM pools
		WHERE subnet_cn = ? AND (? = '' OR cn LIKE ? OR range_text LIKE ? OR comments LIKE ?)
		ORDER BY cn`
	pattern := likePattern(criteria)
	if err := exec.SelectContext(ctx, &rows, query, subnetCN, criteria, pattern, pattern, pattern); err != nil {
		return nil, NewStoreError("ListPools", "pool", "", err.Error(), err)
	}

	pools := make([]Pool, 0, len(rows))
	for i := range rows {
		p, err := rowToPool(&rows[i])
		if err != nil {
			return nil, err
		}
		pools = append(pools, *p)
	}
	return pools, nil
}

// =============================================================================
// Servers
// =============================================================================

func createServer(ctx context.Context, exec executor, server *Server) error {
	row, err := serverToRow(server)
	if err != nil {
		return NewStoreError("CreateServer", "server", server.CN, err.Error(), ErrInvalidData)
	}
	now := time.Now().UTC()
	server.CreatedAt, server.UpdatedAt = now, now
	row.CreatedAt, row.UpdatedAt = formatTime(now), formatTime(now)

	query := `
		INSERT INTO servers (cn, service_dn, statements, options, comments, created_at, updated_at)
		VALUES (:cn, :service_dn, :statements, :options, :comments, :created_at, :updated_at)`

	if _, err := exec.NamedExecContext(ctx, query, row); err != nil {
		if errors.Is(constraintError(err), ErrDuplicateID) {
			return NewStoreError("CreateServer", "server", server.CN, "server already exists", ErrDuplicateID)
		}
		return NewStoreError("CreateServer", "server", server.CN, err.Error(), err)
	}
	return nil
}

func getServer(ctx context.Context, exec executor, cn string) (*Server, error) {
	var row serverRow
	if err := exec.GetContext(ctx, &row, `SELECT * FROM servers WHERE cn = ?`, cn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetServer", "server", cn, "server not found", ErrNotFound)
		}
		return nil, NewStoreError("GetServer", "server", cn, err.Error(), err)
	}
	return rowToServer(&row)
}

func updateServer(ctx context.Context, exec executor, server *Server) error {
	row, err := serverToRow(server)
	if err != nil {
		return NewStoreError("UpdateServer", "server", server.CN, err.Error(), ErrInvalidData)
	}
	server.UpdatedAt = time.Now().UTC()
	row.UpdatedAt = formatTime(server.UpdatedAt)

	query := `
		UPDATE servers
		SET service_dn = :service_dn, statements = :statements, options = :options,
			comments = :comments, updated_at = :updated_at
		WHERE cn = :cn`

	result, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		return NewStoreError("UpdateServer", "server", server.CN, err.Error(), err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return NewStoreError("UpdateServer", "server", server.CN, "server not found", ErrNotFound)
	}
	return nil
}

func deleteServer(ctx context.Context, exec executor, cn string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM servers WHERE cn = ?`, cn)
	if err != nil {
		return NewStoreError("DeleteServer", "server", cn, err.Error(), err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return NewStoreError("DeleteServer", "server", cn, "server not found", ErrNotFound)
	}
	return nil
}

func listServers(ctx context.Context, exec executor, criteria string) ([]Server, error) {
	var rows []serverRow
	query := `
		SELECT * FROM servers
		WHERE ? = '' OR cn LIKE ? OR service_dn LIKE ?
		ORDER BY cn`
	pattern := likePattern(criteria)
	if err := exec.SelectContext(ctx, &rows, query, criteria, pattern, pattern); err != nil {
		return nil, NewStoreError("ListServers", "server", "", err.Error(), err)
	}

	servers := make([]Server, 0, len(rows))
	for i := range rows {
		srv, err := rowToServer(&rows[i])
		if err != nil {
			return nil, err
		}
		servers = append(servers, *srv)
	}
	return servers, nil
}

// =============================================================================
// Hosts
// =============================================================================

func createHost(ctx context.Context, exec executor, host *Host) error {
	row, err := hostToRow(host)
	if err != nil {
		return NewStoreError("CreateHost", "host", host.CN, err.Error(), ErrInvalidData)
	}
	now := time.Now().UTC()
	host.CreatedAt, host.UpdatedAt = now, now
	row.CreatedAt, row.UpdatedAt = formatTime(now), formatTime(now)

	query := `
		INSERT INTO hosts (cn, hw_address, statements, options, comments, created_at, updated_at)
		VALUES (:cn, :hw_address, :statements, :options, :comments, :created_at, :updated_at)`

	if _, err := exec.NamedExecContext(ctx, query, row); err != nil {
		if errors.Is(constraintError(err), ErrDuplicateID) {
			return NewStoreError("CreateHost", "host", host.CN, "host already exists", ErrDuplicateID)
		}
		return NewStoreError("CreateHost", "host", host.CN, err.Error(), err)
	}
	return nil
}

func getHost(ctx context.Context, exec executor, cn string) (*Host, error) {
	var row hostRow
	if err := exec.GetContext(ctx, &row, `SELECT * FROM hosts WHERE cn = ?`, cn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetHost", "host", cn, "host not found", ErrNotFound)
		}
		return nil, NewStoreError("GetHost", "host", cn, err.Error(), err)
	}
	return rowToHost(&row)
}

func deleteHost(ctx context.Context, exec executor, cn string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM hosts WHERE cn = ?`, cn)
	if err != nil {
		return NewStoreError("DeleteHost", "host", cn, err.Error(), err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return NewStoreError("DeleteHost", "host", cn, "host not found", ErrNotFound)
	}
	return nil
}

func listHosts(ctx context.Context, exec executor, criteria string) ([]Host, error) {
	var rows []hostRow
	query := `
		SELECT * FROM hosts
		WHERE ? = '' OR cn LIKE ? OR hw_address LIKE ?
		ORDER BY cn`
	pattern := likePattern(criteria)
	if err := exec.SelectContext(ctx, &rows, query, criteria, pattern, pattern); err != nil {
		return nil, NewStoreError("ListHosts", "host", "", err.Error(), err)
	}

	hosts := make([]Host, 0, len(rows))
	for i := range rows {
		h, err := rowToHost(&rows[i])
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, *h)
	}
	return hosts, nil
}

// =============================================================================
// Conversion Helpers
// =============================================================================

func serverToRow(s *Server) (*serverRow, error) {
	statements, err := encodeList(s.Statements)
	if err != nil {
		return nil, fmt.Errorf("failed to encode statements: %w", err)
	}
	options, err := encodeList(s.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	return &serverRow{
		CN:         s.CN,
		ServiceDN:  s.ServiceDN,
		Statements: statements,
		Options:    options,
		Comments:   s.Comments,
		CreatedAt:  formatTime(s.CreatedAt),
		UpdatedAt:  formatTime(s.UpdatedAt),
	}, nil
}

func rowToServer(row *serverRow) (*Server, error) {
	s := &Server{
		CN:        row.CN,
		ServiceDN: row.ServiceDN,
		Comments:  row.Comments,
		CreatedAt: parseTime(row.CreatedAt),
		UpdatedAt: parseTime(row.UpdatedAt),
	}
	if err := decodeList(row.Statements, &s.Statements); err != nil {
		return nil, NewStoreError("rowToServer", "server", row.CN, "failed to decode statements", ErrInvalidData)
	}
	if err := decodeList(row.Options, &s.Options); err != nil {
		return nil, NewStoreError("rowToServer", "server", row.CN, "failed to decode options", ErrInvalidData)
	}
	return s, nil
}

func hostToRow(h *Host) (*hostRow, error) {
	statements, err := encodeList(h.Statements)
	if err != nil {
		return nil, fmt.Errorf("failed to encode statements: %w", err)
	}
	options, err := encodeList(h.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	return &hostRow{
		CN:         h.CN,
		HWAddress:  h.HWAddress,
		Statements: statements,
		Options:    options,
		Comments:   h.Comments,
		CreatedAt:  formatTime(h.CreatedAt),
		UpdatedAt:  formatTime(h.UpdatedAt),
	}, nil
}

func rowToHost(row *hostRow) (*Host, error) {
	h := &Host{
		CN:        row.CN,
		HWAddress: row.HWAddress,
		Comments:  row.Comments,
		CreatedAt: parseTime(row.CreatedAt),
		UpdatedAt: parseTime(row.UpdatedAt),
	}
	if err := decodeList(row.Statements, &h.Statements); err != nil {
		return nil, NewStoreError("rowToHost", "host", row.CN, "failed to decode statements", ErrInvalidData)
	}
	if err := decodeList(row.Options, &h.Options); err != nil {
		return nil, NewStoreError("rowToHost", "host", row.CN, "failed to decode options", ErrInvalidData)
	}
	return h, nil
}

func subnetToRow(s *Subnet) (*subnetRow, error) {
	statements, err := encodeList(s.Statements)
	if err != nil {
		return nil, fmt.Errorf("failed to encode statements: %w", err)
	}
	options, err := encodeList(s.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	return &subnetRow{
		CN:         s.CN,
		Netmask:    s.Netmask,
		Statements: statements,
		Options:    options,
		Comments:   s.Comments,
		CreatedAt:  formatTime(s.CreatedAt),
		UpdatedAt:  formatTime(s.UpdatedAt),
	}, nil
}

func rowToSubnet(row *subnetRow) (*Subnet, error) {
	s := &Subnet{
		CN:        row.CN,
		Netmask:   row.Netmask,
		Comments:  row.Comments,
		CreatedAt: parseTime(row.CreatedAt),
		UpdatedAt: parseTime(row.UpdatedAt),
	}
	if err := decodeList(row.Statements, &s.Statements); err != nil {
		return nil, NewStoreError("rowToSubnet", "subnet", row.CN, "failed to decode statements", ErrInvalidData)
	}
	if err := decodeList(row.Options, &s.Options); err != nil {
		return nil, NewStoreError("rowToSubnet", "subnet", row.CN, "failed to decode options", ErrInvalidData)
	}
	return s, nil
}

func poolToRow(p *Pool) (*poolRow, error) {
	permits, err := encodeList(p.PermitList)
	if err != nil {
		return nil, fmt.Errorf("failed to encode permit list: %w", err)
	}
	statements, err := encodeList(p.Statements)
	if err != nil {
		return nil, fmt.Errorf("failed to encode statements: %w", err)
	}
	options, err := encodeList(p.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	return &poolRow{
		SubnetCN:   p.SubnetCN,
		CN:         p.CN,
		Range:      p.Range,
		PermitList: permits,
		Statements: statements,
		Options:    options,
		Comments:   p.Comments,
		CreatedAt:  formatTime(p.CreatedAt),
		UpdatedAt:  formatTime(p.UpdatedAt),
	}, nil
}

func rowToPool(row *poolRow) (*Pool, error) {
	p := &Pool{
		SubnetCN:  row.SubnetCN,
		CN:        row.CN,
		Range:     row.Range,
		Comments:  row.Comments,
		CreatedAt: parseTime(row.CreatedAt),
		UpdatedAt: parseTime(row.UpdatedAt),
	}
	if err := decodeList(row.PermitList, &p.PermitList); err != nil {
		return nil, NewStoreError("rowToPool", "pool", row.CN, "failed to decode permit list", ErrInvalidData)
	}
	if err := decodeList(row.Statements, &p.Statements); err != nil {
		return nil, NewStoreError("rowToPool", "pool", row.CN, "failed to decode statements", ErrInvalidData)
	}
	if err := decodeList(row.Options, &p.Options); err != nil {
		return nil, NewStoreError("rowToPool", "pool", row.CN, "failed to decode options", ErrInvalidData)
	}
	return p, nil
}

// encodeList stores nil and empty lists as "[]".
func encodeList(list []string) (string, error) {
	if len(list) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeList(text string, dest *[]string) error {
	if text == "" {
		*dest = []string{}
		return nil
	}
	if err := json.Unmarshal([]byte(text), dest); err != nil {
		return err
	}
	if *dest == nil {
		*dest = []string{}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// likePattern turns free-text search criteria into a LIKE pattern.
func likePattern(criteria string) string {
	return "%" + criteria + "%"
}

// constraintError maps SQLite constraint violations to store sentinels.
// It returns nil for any other error.
func constraintError(err error) error {
	var se gosqlite3.Error
	if !errors.As(err, &se) || se.Code != gosqlite3.ErrConstraint {
		return nil
	}
	switch se.ExtendedCode {
	case gosqlite3.ErrConstraintPrimaryKey, gosqlite3.ErrConstraintUnique:
		return ErrDuplicateID
	case gosqlite3.ErrConstraintForeignKey:
		return ErrForeignKey
	}
	return nil
}
