/*
main.go

Copyright © 2025 Code Monkey Cybersecurity
Contact: git@cybermonkey.net.au
*/
package main

import (
	"os"

	"github.com/CodeMonkeyCybersecurity/tokenfetch/cmd"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/telemetry"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/tf_err"
	"github.com/CodeMonkeyCybersecurity/tokenfetch/pkg/tf_io"
)

func main() {
	logger.InitializeWithFallback()

	// No core dumps: a crash must not write secret material to disk.
	tf_io.DisableCoreDumps()

	if err := telemetry.Init("tokenfetch"); err != nil {
		logger.GetLogger().Warn("Telemetry disabled: " + err.Error())
	}

	err := cmd.Execute()
	tf_err.PrintDiagnostic(err)
	logger.SafeSync()
	os.Exit(tf_err.GetExitCode(err))
}
