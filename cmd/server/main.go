package main

import (
	"fmt"
	"os"

	"github.com/TableAdmin-lab/productloaderV2/internal/config"
	"github.com/TableAdmin-lab/productloaderV2/internal/server"
	"github.com/TableAdmin-lab/productloaderV2/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	srv, err := server.New(db, cfg)
	must(err)

	fmt.Printf("listening on %s\n", cfg.ServerAddr)
	must(srv.Run())
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
