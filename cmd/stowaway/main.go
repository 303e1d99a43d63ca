package main

import (
	"os"

	"github.com/zoobzio/stowaway/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Logger{}.Errorf("%v", err)
		os.Exit(1)
	}
}
