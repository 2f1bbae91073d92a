package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/concave-dev/dhcpool/internal/dhcpsvc"
)

// One typed helper per RPC command. Mutating helpers also return the
// server's summary line for display.

// ShowConfig runs dhcpservice_show.
func (api *PoolAPIClient) ShowConfig(ctx context.Context) (*dhcpsvc.ServiceView, error) {
	var view dhcpsvc.ServiceView
	if err := api.callEntry(ctx, "dhcpservice_show", nil, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ModConfig runs dhcpservice_mod.
func (api *PoolAPIClient) ModConfig(ctx context.Context, opts dhcpsvc.ServiceModOptions) (*dhcpsvc.ServiceView, string, error) {
	var view dhcpsvc.ServiceView
	summary, err := api.callEntrySummary(ctx, "dhcpservice_mod", nil, opts, &view)
	if err != nil {
		return nil, "", err
	}
	return &view, summary, nil
}

// AddSubnet runs dhcpsubnet_add.
func (api *PoolAPIClient) AddSubnet(ctx context.Context, cn string, opts dhcpsvc.SubnetAddOptions) (*dhcpsvc.SubnetView, string, error) {
	var view dhcpsvc.SubnetView
	summary, err := api.callEntrySummary(ctx, "dhcpsubnet_add", []string{cn}, opts, &view)
	if err != nil {
		return nil, "", err
	}
	return &view, summary, nil
}

// AddSubnetCIDR runs dhcpsubnet_add_cidr.
func (api *PoolAPIClient) AddSubnetCIDR(ctx context.Context, cidr string, opts dhcpsvc.SubnetCIDROptions) (*dhcpsvc.SubnetView, string, error) {
	var view dhcpsvc.SubnetView
	summary, err := api.callEntrySummary(ctx, "dhcpsubnet_add_cidr", []string{cidr}, opts, &view)
	if err != nil {
		return nil, "", err
	}
	return &view, summary, nil
}

// FindSubnets runs dhcpsubnet_find.
func (api *PoolAPIClient) FindSubnets(ctx context.Context, criteria string) ([]dhcpsvc.SubnetView, error) {
	var views []dhcpsvc.SubnetView
	if err := api.callFind(ctx, "dhcpsubnet_find", nil, criteria, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// ShowSubnet runs dhcpsubnet_show.
func (api *PoolAPIClient) ShowSubnet(ctx context.Context, cn string) (*dhcpsvc.SubnetView, error) {
	var view dhcpsvc.SubnetView
	if err := api.callEntry(ctx, "dhcpsubnet_show", []string{cn}, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ModSubnet runs dhcpsubnet_mod.
func (api *PoolAPIClient) ModSubnet(ctx context.Context, cn string, opts dhcpsvc.SubnetModOptions) (*dhcpsvc.SubnetView, string, error) {
	var view dhcpsvc.SubnetView
	summary, err := api.callEntrySummary(ctx, "dhcpsubnet_mod", []string{cn}, opts, &view)
	if err != nil {
		return nil, "", err
	}
	return &view, summary, nil
}

// DelSubnet runs dhcpsubnet_del.
func (api *PoolAPIClient) DelSubnet(ctx context.Context, cn string) (string, error) {
	return api.callEntrySummary(ctx, "dhcpsubnet_del", []string{cn}, nil, nil)
}

// AddPool runs dhcppool_add.
func (api *PoolAPIClient) AddPool(ctx context.Context, subnet, cn string, opts dhcpsvc.PoolAddOptions) (*dhcpsvc.PoolView, string, error) {
	var view dhcpsvc.PoolView
	summary, err := api.callEntrySummary(ctx, "dhcppool_add", []string{subnet, cn}, opts, &view)
	if err != nil {
		return nil, "", err
	}
	return &view, summary, nil
}

// FindPools runs dhcppool_find.
func (api *PoolAPIClient) FindPools(ctx context.Context, subnet, criteria string) ([]dhcpsvc.PoolView, error) {
	var views []dhcpsvc.PoolView
	if err := api.callFind(ctx, "dhcppool_find", []string{subnet}, criteria, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// ShowPool runs dhcppool_show.
func (api *PoolAPIClient) ShowPool(ctx context.Context, subnet, cn string) (*dhcpsvc.PoolView, error) {
	var view dhcpsvc.PoolView
	if err := api.callEntry(ctx, "dhcppool_show", []string{subnet, cn}, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ModPool runs dhcppool_mod.
func (api *PoolAPIClient) ModPool(ctx context.Context, subnet, cn string, opts dhcpsvc.PoolModOptions) (*dhcpsvc.PoolView, string, error) {
	var view dhcpsvc.PoolView
	summary, err := api.callEntrySummary(ctx, "dhcppool_mod", []string{subnet, cn}, opts, &view)
	if err != nil {
		return nil, "", err
	}
	return &view, summary, nil
}

// DelPool runs dhcppool_del.
func (api *PoolAPIClient) DelPool(ctx context.Context, subnet, cn string) (string, error) {
	return api.callEntrySummary(ctx, "dhcppool_del", []string{subnet, cn}, nil, nil)
}

// AddServer runs dhcpserver_add.
func (api *PoolAPIClient) AddServer(ctx context.Context, cn string, opts dhcpsvc.ServerAddOptions) (*dhcpsvc.ServerView, string, error) {
	var view dhcpsvc.ServerView
	summary, err := api.callEntrySummary(ctx, "dhcpserver_add", []string{cn}, opts, &view)
	if err != nil {
		return nil, "", err
	}
	return &view, summary, nil
}

// FindServers runs dhcpserver_find.
func (api *PoolAPIClient) FindServers(ctx context.Context, criteria string) ([]dhcpsvc.ServerView, error) {
	var views []dhcpsvc.ServerView
	if err := api.callFind(ctx, "dhcpserver_find", nil, criteria, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// ShowServer runs dhcpserver_show.
func (api *PoolAPIClient) ShowServer(ctx context.Context, cn string) (*dhcpsvc.ServerView, error) {
	var view dhcpsvc.ServerView
	if err := api.callEntry(ctx, "dhcpserver_show", []string{cn}, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ModServer runs dhcpserver_mod.
func (api *PoolAPIClient) ModServer(ctx context.Context, cn string, opts dhcpsvc.ServerModOptions) (*dhcpsvc.ServerView, string, error) {
	var view dhcpsvc.ServerView
	summary, err := api.callEntrySummary(ctx, "dhcpserver_mod", []string{cn}, opts, &view)
	if err != nil {
		return nil, "", err
	}
	return &view, summary, nil
}

// DelServer runs dhcpserver_del.
func (api *PoolAPIClient) DelServer(ctx context.Context, cn string) (string, error) {
	return api.callEntrySummary(ctx, "dhcpserver_del", []string{cn}, nil, nil)
}

// AddHost runs dhcphost_add.
func (api *PoolAPIClient) AddHost(ctx context.Context, hostname, mac string, opts dhcpsvc.HostAddOptions) (*dhcpsvc.HostView, string, error) {
	var view dhcpsvc.HostView
	summary, err := api.callEntrySummary(ctx, "dhcphost_add", []string{hostname, mac}, opts, &view)
	if err != nil {
		return nil, "", err
	}
	return &view, summary, nil
}

// FindHosts runs dhcphost_find.
func (api *PoolAPIClient) FindHosts(ctx context.Context, criteria string) ([]dhcpsvc.HostView, error) {
	var views []dhcpsvc.HostView
	if err := api.callFind(ctx, "dhcphost_find", nil, criteria, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// ShowHost runs dhcphost_show.
func (api *PoolAPIClient) ShowHost(ctx context.Context, cn string) (*dhcpsvc.HostView, error) {
	var view dhcpsvc.HostView
	if err := api.callEntry(ctx, "dhcphost_show", []string{cn}, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// DelHost runs dhcphost_del.
func (api *PoolAPIClient) DelHost(ctx context.Context, hostname, mac string) (string, error) {
	return api.callEntrySummary(ctx, "dhcphost_del", []string{hostname, mac}, nil, nil)
}

func (api *PoolAPIClient) callEntry(ctx context.Context, method string, args []string, options any, out any) error {
	_, err := api.callEntrySummary(ctx, method, args, options, out)
	return err
}

func (api *PoolAPIClient) callEntrySummary(ctx context.Context, method string, args []string, options any, out any) (string, error) {
	var res Result
	if err := api.Call(ctx, method, args, options, &res); err != nil {
		return "", err
	}
	if out != nil {
		if err := json.Unmarshal(res.Result, out); err != nil {
			return "", fmt.Errorf("unexpected response format for %s: %w", method, err)
		}
	}
	return res.Summary, nil
}

func (api *PoolAPIClient) callFind(ctx context.Context, method string, args []string, criteria string, out any) error {
	var res FindResult
	if err := api.Call(ctx, method, args, dhcpsvc.FindOptions{Criteria: criteria}, &res); err != nil {
		return err
	}
	if err := json.Unmarshal(res.Result, out); err != nil {
		return fmt.Errorf("unexpected response format for %s: %w", method, err)
	}
	return nil
}
