package version

import (
	"fmt"
	"runtime"
)

var (
	// Name of the application
	AppName = "MediaVault"

	// Version of the application
	Version = "0.3.0-dev"

	// Git commit hash of the application
	Revision = "HEAD"

	// Build date of the application
	BuildDate = ""
)

func Detailed() string {
	return fmt.Sprintf("%s (%s; %s/%s)", Version, Revision, runtime.GOOS, runtime.GOARCH)
}

func DetailedWithApp() string {
	return fmt.Sprintf("%s %s", AppName, Detailed())
}
