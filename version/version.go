package version

import (
	"fmt"
	"runtime"
)

// Set with -ldflags "-X github.com/jschwinger233/dwarfctags/version.VERSION=..."
var (
	VERSION  = "unknown"
	REVISION = "HEAD"
	BUILTAT  = "now"
)

// String show version thing
func String() string {
	version := "dwarfctags\n"
	version += fmt.Sprintf("Version:        %s\n", VERSION)
	version += fmt.Sprintf("Git hash:       %s\n", REVISION)
	version += fmt.Sprintf("Built:          %s\n", BUILTAT)
	version += fmt.Sprintf("Golang version: %s\n", runtime.Version())
	version += fmt.Sprintf("OS/Arch:        %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return version
}
