package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deskroster/deskroster/internal/directory"
	"github.com/deskroster/deskroster/internal/web"
)

// handleWeb serves the roster over HTTP until interrupted.
func handleWeb(args []string) {
	addr, args, _ := parseFlagValue(args, "-a", "--addr")
	token, args, _ := parseFlagValue(args, "-k", "--token")
	readOnly, args := hasFlag(args, "--read-only")
	pushFlag, args := hasFlag(args, "--push")
	_ = args

	cfg, err := directory.LoadUserConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}

	webCfg := web.Config{
		ListenAddr:  cfg.Web.ListenAddr,
		Token:       cfg.Web.Token,
		ReadOnly:    readOnly,
		PushEnabled: cfg.Web.PushEnabled || pushFlag,
		PushSubject: cfg.Web.PushSubject,
	}
	if addr != "" {
		webCfg.ListenAddr = addr
	}
	if token != "" {
		webCfg.Token = token
	}

	initLogging()

	db := mustOpenDB()
	defer db.Close()

	server := web.NewServer(webCfg, db)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	fmt.Printf("Serving roster on http://%s\n", server.Addr())
	if webCfg.Token != "" {
		fmt.Println("Token required (Authorization: Bearer <token> or ?token=)")
	}
	if webCfg.ReadOnly {
		fmt.Println("Read-only mode: mutations are rejected")
	}

	if err := server.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
