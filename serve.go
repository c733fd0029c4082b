package main

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"topspin/internal/back"
	"topspin/internal/backup"
	"topspin/internal/config"
	"topspin/internal/web"
)

func serve(b *back.Back, cfg *config.Config) error {
	done := make(chan struct{})
	signaled := make(chan os.Signal, 1)
	signal.Notify(signaled, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	server := web.NewServer(b, cfg.ListenAddress)
	go server.Serve(&wg, done)

	if cfg.S3Bucket == "" {
		log.Println("info: backups are disabled, no S3 bucket configured")
	} else {
		client, err := backup.NewClient(cfg)
		if err != nil {
			return err
		}

		go client.Run(&wg, done)
	}

	sig := <-signaled
	log.Printf("received signal %d", sig)
	close(done)
	wg.Wait()

	log.Print("shutdown complete")

	return nil
}
