package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"pkt.systems/tryout/internal/console"
)

func credentialStore(path string) (*console.FileStore, error) {
	if path == "" {
		p, err := console.DefaultCredentialPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return console.NewFileStore(path), nil
}

func runToken(_ context.Context, args []string, e env) error {
	fs := newFlagSet("token", e)
	var credPath string
	fs.StringVar(&credPath, "credentials", "", "credential file (default $XDG_CONFIG_HOME/tryout/credentials.json)")
	fs.Usage = func() {
		fmt.Fprintln(e.stderr, "Usage: tryout token show|set <token|->|clear [flags]")
		fs.PrintDefaults()
	}
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usagef("token: expected show, set or clear")
	}
	store, err := credentialStore(credPath)
	if err != nil {
		return err
	}

	switch sub, rest := fs.Arg(0), fs.Args()[1:]; sub {
	case "show":
		tok, ok, err := store.Get()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(e.stdout, "no token stored")
			return nil
		}
		fmt.Fprintf(e.stdout, "token:   %s\n", console.MaskToken(tok))
		info := console.InspectToken(tok, time.Now())
		if !info.JWT {
			return nil
		}
		if info.Subject != "" {
			fmt.Fprintf(e.stdout, "subject: %s\n", info.Subject)
		}
		if info.Issuer != "" {
			fmt.Fprintf(e.stdout, "issuer:  %s\n", info.Issuer)
		}
		if !info.ExpiresAt.IsZero() {
			state := "valid"
			if info.Expired {
				state = "expired"
			}
			fmt.Fprintf(e.stdout, "expires: %s (%s)\n", info.ExpiresAt.UTC().Format(time.RFC3339), state)
		}
		return nil
	case "set":
		if len(rest) != 1 {
			return usagef("token set: expected a token or -")
		}
		value := rest[0]
		if value == "-" {
			sc := bufio.NewScanner(e.stdin)
			sc.Buffer(make([]byte, 0, 4096), 1<<20)
			if sc.Scan() {
				value = sc.Text()
			} else if err := sc.Err(); err != nil {
				return err
			} else {
				value = ""
			}
		}
		if err := store.Set(console.Token(strings.TrimSpace(value))); err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "token stored in %s\n", store.Path())
		return nil
	case "clear":
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(e.stdout, "token cleared")
		return nil
	default:
		return usagef("token: unknown subcommand %q", sub)
	}
}
