package main

import (
	"log"
	"net/http"
	"time"

	"gradequiz"
)

func main() {
	cfg, err := gradequiz.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	gradequiz.SetVerbose(cfg.Verbose)

	var db *gradequiz.DB
	if cfg.DBPath != "" {
		db, err = gradequiz.OpenDB(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.CloseDB()

		if err := db.CreateTables(); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
	}

	server := NewServer(gradequiz.NewQuestionMaker(cfg), db, []byte(cfg.SessionSecret))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("Starting server on port %s", cfg.Port)
	log.Fatal(srv.ListenAndServe())
}
