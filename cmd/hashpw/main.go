// Command hashpw prints the bcrypt hash of a password for BASIC_AUTH_PASS_HASH.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/profilekeeper/internal/passwd"
	"golang.org/x/crypto/bcrypt"
)

func run() error {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	pw, err := passwd.ReadNew(os.Stderr, os.Stdin)
	if err != nil {
		return err
	}
	defer passwd.Wipe(pw)

	h, err := passwd.Hash(pw, *cost)
	if err != nil {
		return err
	}
	fmt.Println(h)
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(1)
	}
}
