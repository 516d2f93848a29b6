package minit

import (
	"log"
	"runtime"

	"github.com/memoio/vana-wallet/build"
)

func PrintVersion() {
	v := build.UserVersion()
	log.Printf("Vana wallet version: %s", v)
	log.Printf("System version: %s", runtime.GOARCH+"/"+runtime.GOOS)
	log.Printf("Golang version: %s", runtime.Version())
}
