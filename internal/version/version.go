package version

import "fmt"

var (
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
)

const product = "http_relay"

func GetVersion() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s)", product, Version, Commit, BuildDate)
}

func GetShortVersion() string {
	return Version
}
