package dhcpsvc

import (
	"fmt"

	"github.com/concave-dev/dhcpool/internal/ipaddr"
	"github.com/concave-dev/dhcpool/internal/store"
	"inet.af/netaddr"
)

// Range check messages returned by dhcppool_is_valid.
const (
	MsgNoSuchSubnet = "No such subnet."
	MsgOrder        = "First IP must come before last IP!"
	MsgValidRange   = "Valid IP range."
)

// subnetPrefix builds the network of s. Host bits in the cn are masked off.
func subnetPrefix(s *store.Subnet) (netaddr.IPPrefix, error) {
	ip, err := netaddr.ParseIP(s.CN)
	if err != nil || !ip.Is4() {
		return netaddr.IPPrefix{}, fmt.Errorf("subnet %q has no IPv4 network address", s.CN)
	}
	if s.Netmask < 0 || s.Netmask > 32 {
		return netaddr.IPPrefix{}, fmt.Errorf("subnet %q has netmask /%d", s.CN, s.Netmask)
	}
	return netaddr.IPPrefixFrom(ip, uint8(s.Netmask)).Masked(), nil
}

// CheckFit reports whether first..last can be a pool range in subnet. When
// it cannot, the returned message says why. Siblings are the other pools of
// the subnet; entries whose range does not parse are ignored.
func CheckFit(subnet netaddr.IPPrefix, first, last netaddr.IP, siblings []store.Pool) (string, bool) {
	if last.Less(first) {
		return MsgOrder, false
	}

	bounds := subnet.Range()
	for _, ip := range []netaddr.IP{first, last} {
		if !subnet.Contains(ip) {
			return fmt.Sprintf(
				"%s is outside parent subnet %s. Addresses in this pool must come from the range %s-%s.",
				ip, subnet, bounds.From(), bounds.To()), false
		}
	}

	r := netaddr.IPRangeFrom(first, last)
	for _, p := range siblings {
		from, to, ok := ipaddr.ParseRange(p.Range)
		if !ok {
			continue
		}
		other := netaddr.IPRangeFrom(from.IP, to.IP)
		if !other.IsValid() {
			other = netaddr.IPRangeFrom(to.IP, from.IP)
		}
		if r.Overlaps(other) {
			return fmt.Sprintf("Range overlaps pool %s", p.CN), false
		}
	}
	return MsgValidRange, true
}
