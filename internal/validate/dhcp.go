package validate

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/concave-dev/dhcpool/internal/ipaddr"
	"github.com/go-playground/validator/v10"
)

// RangeTag is the struct tag that checks a DHCP range string.
const RangeTag = "dhcprange"

// MACTag is the struct tag that checks a host's hardware address. Octets may
// be separated by ':', '-' or nothing.
const MACTag = "dhcpmac"

var macPattern = regexp.MustCompile(`^([a-fA-F0-9]{2}[:|\-]?){5}[a-fA-F0-9]{2}$`)

// RegisterRangeTag registers the dhcprange tag on v. The package validator
// registers it at init; the API server calls this for gin's binding engine.
func RegisterRangeTag(v *validator.Validate) error {
	return v.RegisterValidation(RangeTag, isDHCPRange)
}

// RegisterMACTag registers the dhcpmac tag on v.
func RegisterMACTag(v *validator.Validate) error {
	return v.RegisterValidation(MACTag, isDHCPMAC)
}

func isDHCPMAC(fl validator.FieldLevel) bool {
	return macPattern.MatchString(fl.Field().String())
}

func isDHCPRange(fl validator.FieldLevel) bool {
	_, _, ok := ipaddr.ParseRange(fl.Field().String())
	return ok
}

// Describe returns the failing field and a readable message for the first
// error in err. Errors that are not validation errors come back whole.
func Describe(err error) (field, message string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "", err.Error()
	}

	fe := verrs[0]
	field = fe.Field()
	switch fe.Tag() {
	case "required":
		message = "Required field"
	case RangeTag:
		message = "must be of the form x.x.x.x y.y.y.y"
	case MACTag:
		message = "must be of the form HH:HH:HH:HH:HH:HH, where each H is a hexadecimal character"
	case "hostname_rfc1123":
		message = "must be a valid hostname"
	case "ipv4":
		message = "must be an IPv4 address"
	case "cidrv4":
		message = "must be an IPv4 network in CIDR notation"
	case "fqdn":
		message = "must be a fully qualified domain name"
	case "min":
		message = fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		message = fmt.Sprintf("must be at most %s", fe.Param())
	default:
		message = fmt.Sprintf("failed the '%s' check", fe.Tag())
	}
	return field, message
}
