// ABOUTME: Version information for resonate-play
// ABOUTME: Product and build identifiers shown in the TUI and logs
package version

const (
	Version      = "0.1.0"
	Product      = "Resonate Play"
	Manufacturer = "Resonate"
)
