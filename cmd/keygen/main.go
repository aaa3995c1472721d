package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/findbi/token-service/internal/infrastructure/keys"
)

// keygen generates an RSA key pair for the token service. By default the PEM
// blocks are printed to stdout; -dir writes private.pem and public.pem files
// instead. -escape emits the single-line form with newlines replaced by the
// two-character \n sequence, ready to paste into an env var or .env file.
func main() {
	bits := flag.Int("bits", 2048, "RSA key size in bits")
	dir := flag.String("dir", "", "Directory to write private.pem and public.pem into (default stdout)")
	escape := flag.Bool("escape", false, "Emit single-line PEM with escaped newlines for env-var channels")
	flag.Parse()

	if *bits < 2048 {
		log.Fatalf("refusing to generate a key smaller than 2048 bits (got %d)", *bits)
	}

	pair, err := keys.Generate(*bits)
	if err != nil {
		log.Fatalf("Failed to generate key pair: %v", err)
	}

	privatePEM := keys.EncodePrivatePEM(pair.Private)
	publicPEM, err := keys.EncodePublicPEM(pair.Public)
	if err != nil {
		log.Fatalf("Failed to encode public key: %v", err)
	}

	if *escape {
		privatePEM = strings.ReplaceAll(privatePEM, "\n", `\n`)
		publicPEM = strings.ReplaceAll(publicPEM, "\n", `\n`)
	}

	if *dir == "" {
		fmt.Printf("# key id: %s\n", pair.KeyID)
		if *escape {
			fmt.Printf("JWT_PRIVATE_KEY=%s\n", privatePEM)
			fmt.Printf("JWT_PUBLIC_KEY=%s\n", publicPEM)
		} else {
			fmt.Println(privatePEM)
			fmt.Println(publicPEM)
		}
		return
	}

	if err := os.MkdirAll(*dir, 0700); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(*dir, "private.pem"), []byte(privatePEM), 0600); err != nil {
		log.Fatalf("Failed to write private key: %v", err)
	}
	if err := os.WriteFile(filepath.Join(*dir, "public.pem"), []byte(publicPEM), 0644); err != nil {
		log.Fatalf("Failed to write public key: %v", err)
	}
	fmt.Printf("Wrote key pair (id %s) to %s\n", pair.KeyID, *dir)
}
