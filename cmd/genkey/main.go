// Command genkey mints an identity token for a host account, for use
// against a local server with curl.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/movigoo/host-server/internal/auth"
)

func main() {
	uid := flag.String("uid", "", "host account UID to mint a token for")
	expiry := flag.Duration("expiry", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *uid == "" {
		fmt.Fprintln(os.Stderr, "usage: genkey -uid <host-uid> [-expiry 24h]")
		os.Exit(2)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
		os.Exit(1)
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "movigoo-host"
	}

	tokens := auth.NewJWTManager(secret, *expiry, issuer)
	token, err := tokens.Generate(*uid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Println()
	fmt.Printf("curl -H 'Authorization: Bearer %s' http://localhost:8080/api/v1/sessions\n", token)
}
