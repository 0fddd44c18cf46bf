// FilePath: cmd/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	tm "github.com/buger/goterm"
	"github.com/itsatony/roomwatch/internal/config"
	"github.com/itsatony/roomwatch/internal/server"
	nuts "github.com/vaudience/go-nuts"
)

// @title Roomwatch API
// @version 1.0
// @description Bathroom sensor dashboard: session state, health and event metrics
// @BasePath /api/v1
// @securityDefinitions.apikey CookieAuth
// @in header
// @name Cookie
func main() {
	// Clear console and draw logo
	ClearConsole()
	DrawLogo()
	// Initialize version info
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting Roomwatch Dashboard v%s", nuts.GetVersion())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	nuts.SetLoglevel(strings.ToUpper(cfg.Monitoring.LogLevel), "roomwatch", false, "logs/")
	nuts.L.Infof("[Main] Backend %s, push transport %s on event %q", cfg.Backend.URL, cfg.Push.Transport, cfg.Push.Event)

	// Create and start server
	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// ClearConsole clears the console screen
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"   ___                                 __       __ ",
		"  / _ \\___  ___  __ _ _    _____ _____/ /______/ / ",
		" / , _/ _ \\/ _ \\/  ' \\ |/|/ / _ `/ __/ __/ __/ _ \\",
		"/_/|_|\\___/\\___/_/_/_/__,__/\\_,_/\\__/\\__/\\__/_//_/",
		"...................................................  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
