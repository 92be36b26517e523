package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/coffersTech/nanots/internal/dispatch"
	"github.com/coffersTech/nanots/internal/server"
	"github.com/coffersTech/nanots/internal/store"
)

func main() {
	port := flag.Int("port", 6380, "TCP port the command server listens on")
	dataDir := flag.String("data", "./data", "directory for the WAL and snapshot files")
	flag.Parse()

	if err := os.MkdirAll(*dataDir, 0755); err != nil {
		log.Fatalf("failed to create data dir: %v", err)
	}

	snapshotPath := filepath.Join(*dataDir, "snapshot.nts")
	mem, err := store.LoadSnapshot(snapshotPath)
	if err != nil {
		log.Fatalf("failed to load snapshot: %v", err)
	}
	log.Printf("Snapshot loaded from %s", snapshotPath)

	walPath := filepath.Join(*dataDir, "wal.log")
	wal, err := store.OpenWAL(walPath)
	if err != nil {
		log.Fatalf("failed to open WAL: %v", err)
	}
	if err := wal.Replay(mem); err != nil {
		log.Fatalf("WAL replay failed: %v", err)
	}
	log.Printf("WAL replayed from %s", walPath)

	durable := store.NewDurableStore(mem, wal)
	hash := store.NewHashStore()
	d := dispatch.New(durable, hash)

	srv := server.NewCommandServer(d)
	addr := fmt.Sprintf(":%d", *port)

	go func() {
		log.Printf("nanots listening on %s", addr)
		if err := srv.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("received signal %v, shutting down...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if err := durable.Sync(); err != nil {
		log.Printf("WAL sync error: %v", err)
	}

	log.Println("writing snapshot...")
	if err := store.SaveSnapshot(snapshotPath, durable.Mem()); err != nil {
		log.Printf("snapshot save failed: %v", err)
	}
	if err := wal.Close(); err != nil {
		log.Printf("WAL close error: %v", err)
	}

	log.Println("nanots exited gracefully.")
}
