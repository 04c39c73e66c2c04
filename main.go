// main is the entry point for the starsview CLI.
package main

import (
	"github.com/huangsam/starsview/cmd"
	"github.com/huangsam/starsview/internal/contract"
	"github.com/huangsam/starsview/internal/iocache"
)

func main() {
	cmd.SetStoreManager(iocache.Manager)
	defer iocache.CloseStores()

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		iocache.CloseStores()
		contract.LogFatal("Command failed", err)
	}
}
