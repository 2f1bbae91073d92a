// Package validate wraps go-playground/validator for dhcpool: address and
// port checks for daemon configuration, and struct validation for RPC
// command options.
//
// VALIDATION FEATURES:
//   - IP Address: IPv4 and IPv6 format validation for bind addresses
//   - Port Range: Valid port numbers (0-65535)
//   - DHCP Range: the custom "dhcprange" tag ("x.x.x.x y.y.y.y")
//   - Hardware address: the custom "dhcpmac" tag
//   - Field names: struct errors report the JSON name of the failing field
package validate

import (
	"fmt"
	"net"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// Global validator instance using built-in validations
	validate *validator.Validate
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	if err := RegisterRangeTag(validate); err != nil {
		panic(fmt.Sprintf("validate: register dhcprange: %v", err))
	}
	if err := RegisterMACTag(validate); err != nil {
		panic(fmt.Sprintf("validate: register dhcpmac: %v", err))
	}
}

// jsonFieldName reports struct fields by their JSON name so errors match the
// option names clients send.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// NetworkAddress is a validated "host:port" endpoint such as the daemon's
// bind address.
type NetworkAddress struct {
	Host string `validate:"required,ip"`              // Built-in IP validator
	Port int    `validate:"required,min=0,max=65535"` // Built-in range validator
}

// String returns the address in "host:port" form.
func (na NetworkAddress) String() string {
	return fmt.Sprintf("%s:%d", na.Host, na.Port)
}

// ParseBindAddress parses and validates a "host:port" address string. The host
// must be an IP literal.
func ParseBindAddress(addr string) (*NetworkAddress, error) {
	if addr == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address format '%s': %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port '%s': %w", portStr, err)
	}

	netAddr := &NetworkAddress{
		Host: host,
		Port: port,
	}

	// Validate using struct tags
	if err := validate.Struct(netAddr); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return netAddr, nil
}

// ValidateField validates a single value against a tag expression.
//
// Example: ValidateField("192.168.1.10 192.168.1.50", "required,dhcprange")
func ValidateField(value any, tag string) error {
	return validate.Var(value, tag)
}

// Struct validates s against its `validate` struct tags.
func Struct(s any) error {
	return validate.Struct(s)
}
