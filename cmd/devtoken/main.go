// Command devtoken mints an access token for local development, signed with
// JWT_SECRET the same way the identity service signs them.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"forumregistrations/config"
	"forumregistrations/internal/adapters/auth"
	"forumregistrations/internal/domain"
)

func main() {
	var (
		subject string
		email   string
		roles   string
		expiry  time.Duration
	)
	flag.StringVar(&subject, "sub", "dev-user", "token subject (user id)")
	flag.StringVar(&email, "email", "dev@localhost", "email claim")
	flag.StringVar(&roles, "roles", string(domain.RoleAdmin), "comma separated roles (admin, manager, viewer)")
	flag.DurationVar(&expiry, "expiry", 12*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "Error: JWT_SECRET is not set")
		os.Exit(1)
	}

	p := domain.Principal{UserID: subject, Email: email}
	for _, r := range strings.Split(roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			p.Roles = append(p.Roles, domain.Role(r))
		}
	}

	token, err := auth.NewJWTVerifier(cfg.JWTSecret).Issue(p, expiry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
