// Package utils contains utility functions for the dhcpool daemon.
package utils

import (
	"fmt"
)

// DisplayLogo prints the dhcpool ASCII logo with version information
func DisplayLogo(version string) {
	fmt.Println()
	fmt.Println(` ░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░
 ░█▀▄░█░█░█▀▀░█▀█░█▀█░█▀█░█░░░
 ░█░█░█▀█░█░░░█▀▀░█░█░█░█░█░░░
 ░▀▀░░▀░▀░▀▀▀░▀░░░▀▀▀░▀▀▀░▀▀▀░
 ░░░░░░░░░░░░░░░░░░░░░░░░░░░░░░`)
	fmt.Printf("\n dhcpool v%s - DHCP subnet and pool manager\n", version)
	fmt.Println()
}
