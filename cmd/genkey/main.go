package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/divinecoid/sabkabazaar/pkg/config/keys"
)

func main() {
	// Parse command line flags
	env := flag.String("env", "", "Environment (dev|staging|prod)")
	version := flag.String("version", fmt.Sprintf("v%d", time.Now().Unix()), "Key version")
	flag.Parse()

	// Validate environment
	if *env == "" {
		flag.Usage()
		os.Exit(1)
	}

	if *env != "dev" && *env != "staging" && *env != "prod" {
		log.Fatalf("Invalid environment: %s. Must be one of: dev, staging, prod", *env)
	}

	key, err := keys.GenerateKey(*env, *version)
	if err != nil {
		log.Fatalf("Failed to generate key: %v", err)
	}

	fmt.Printf("Generated new token signing key for %s environment:\n", *env)
	fmt.Printf("AUTH_SIGNING_KEY_CURRENT=%s\n", key.String())
	fmt.Println("\nSet APP_ENV to the same environment when using this key.")
	fmt.Println("When rotating, move the old value to AUTH_SIGNING_KEY_PREVIOUS so")
	fmt.Println("tokens it signed keep working until they expire.")
}
