// Package dhcp implements the client side of adding a DHCP address pool: the
// range validators, the remote range-check session and the pool adder dialog.
//
// A pool range is two dotted-quad addresses separated by one space. Its shape
// is checked locally on every edit. Whether it fits the parent subnet and
// avoids sibling pools is only known to the server, so the dialog asks over
// dhcppool_is_valid and caches the answer in a Session. The Subnet-Fit
// validator then reads that cached verdict synchronously.
package dhcp

import (
	"github.com/concave-dev/dhcpool/internal/form"
	"github.com/concave-dev/dhcpool/internal/ipaddr"
)

// Registered names.
const (
	ValidatorRange       = "dhcprange"
	ValidatorRangeSubnet = "dhcprange_subnet"
	DialogPoolAdder      = "dhcppool_adder_dialog"
)

const (
	// RangeShapeMessage is reported for any range that is not two dotted quads.
	RangeShapeMessage = "Range must be of the form x.x.x.x y.y.y.y, where x.x.x.x is the first IP address in the pool and y.y.y.y is the last IP address in the pool."

	// DefaultInvalidRangeMessage is the verdict message before any server answer.
	DefaultInvalidRangeMessage = "Invalid IP range."
)

// RangeValidator checks the shape of a range string. It does not compare
// the two addresses; ordering is enforced by the server.
type RangeValidator struct {
	Message string
}

// Validate implements form.Validator.
func (v *RangeValidator) Validate(value string, _ form.Context) form.Result {
	if value == "" {
		return form.Pass()
	}
	if _, _, ok := ipaddr.ParseRange(value); !ok {
		return form.Fail(v.message())
	}
	return form.Pass()
}

func (v *RangeValidator) message() string {
	if v.Message != "" {
		return v.Message
	}
	return RangeShapeMessage
}

// VerdictSource is the part of a dialog the Subnet-Fit validator needs.
type VerdictSource interface {
	CurrentVerdict() Verdict
}

// SubnetFitValidator reports the server's cached verdict for the range.
// Message replaces the fallback used when the context has no VerdictSource.
type SubnetFitValidator struct {
	Message string
}

// Validate implements form.Validator.
func (v *SubnetFitValidator) Validate(value string, ctx form.Context) form.Result {
	if value == "" {
		return form.Pass()
	}
	src, ok := ctx.Container.(VerdictSource)
	if !ok {
		if v.Message != "" {
			return form.Fail(v.Message)
		}
		return form.Fail(DefaultInvalidRangeMessage)
	}
	verdict := src.CurrentVerdict()
	if verdict.IsValid {
		return form.Pass()
	}
	return form.Fail(verdict.Message)
}

// SuggestName returns the pool name to show after the range changes from
// prevRange to newRange. A name the user typed is kept; an empty name, or one
// still equal to the previous range, follows the range.
func SuggestName(prevRange, currentName, newRange string) string {
	if currentName == "" || currentName == prevRange {
		return newRange
	}
	return currentName
}
