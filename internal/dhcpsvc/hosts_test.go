package dhcpsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostAdd(t *testing.T) {
	s := setupTestService(t)

	res := mustExecute(t, s, "dhcphost_add", []string{"web1.example.com", "00:11:22:33:44:aa"}, "").(*Result)
	assert.Equal(t, `Created DHCP host "web1.example.com-0011223344AA"`, res.Summary)

	view := res.Result.(*HostView)
	assert.Equal(t, "web1.example.com-0011223344AA", view.CN)
	assert.Equal(t, "ethernet 00:11:22:33:44:AA", view.HWAddress)
	assert.Equal(t, "00:11:22:33:44:AA", view.MACAddress)
	assert.Equal(t, []string{"fixed-address web1.example.com"}, view.Statements)
	assert.Equal(t, []string{`host-name "web1.example.com"`}, view.Options)

	_, cerr := execute(t, s, "dhcphost_add", []string{"web1.example.com", "00:11:22:33:44:AA"}, "")
	require.NotNil(t, cerr)
	assert.Equal(t, CodeDuplicate, cerr.Code)
}

func TestHostAddErrors(t *testing.T) {
	s := setupTestService(t)

	tests := []struct {
		name    string
		args    []string
		code    int
		message string
	}{
		{
			name:    "short mac",
			args:    []string{"web1.example.com", "00:11:22:33:44"},
			code:    CodeValidation,
			message: "invalid 'macaddress': must be of the form HH:HH:HH:HH:HH:HH, where each H is a hexadecimal character",
		},
		{
			name:    "bad hostname",
			args:    []string{"web 1", "00:11:22:33:44:55"},
			code:    CodeValidation,
			message: "invalid 'hostname': must be a fully qualified domain name",
		},
		{
			name:    "missing mac",
			args:    []string{"web1.example.com"},
			code:    CodeRequirement,
			message: "'macaddress' is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cerr := execute(t, s, "dhcphost_add", tt.args, "")
			require.NotNil(t, cerr)
			assert.Equal(t, tt.code, cerr.Code)
			assert.Equal(t, tt.message, cerr.Message)
		})
	}
}

func TestHostFindShowDel(t *testing.T) {
	s := setupTestService(t)
	mustExecute(t, s, "dhcphost_add", []string{"web1.example.com", "00:11:22:33:44:aa"}, "")
	mustExecute(t, s, "dhcphost_add", []string{"web2.example.com", "00-11-22-33-44-bb"}, `{"dhcpcomments": "rack 2"}`)

	found := mustExecute(t, s, "dhcphost_find", nil, `{"criteria": "web2"}`).(*FindResult)
	assert.Equal(t, 1, found.Count)
	views := found.Result.([]HostView)
	assert.Equal(t, "web2.example.com-00-11-22-33-44-BB", views[0].CN)
	assert.Equal(t, "rack 2", views[0].Comments)

	shown := mustExecute(t, s, "dhcphost_show", []string{"web1.example.com-0011223344AA"}, "").(*Result)
	assert.Equal(t, "web1.example.com-0011223344AA", shown.Value)

	// Lower-case input names the same entry
	del := mustExecute(t, s, "dhcphost_del", []string{"web1.example.com", "00:11:22:33:44:aa"}, "").(*Result)
	assert.Equal(t, `Deleted DHCP host "web1.example.com-0011223344AA"`, del.Summary)

	_, cerr := execute(t, s, "dhcphost_del", []string{"web1.example.com", "00:11:22:33:44:aa"}, "")
	require.NotNil(t, cerr)
	assert.Equal(t, CodeNotFound, cerr.Code)

	all := mustExecute(t, s, "dhcphost_find", nil, "").(*FindResult)
	assert.Equal(t, "1 DHCP host matched", all.Summary)
}
