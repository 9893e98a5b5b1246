// Command hash-generator prints bcrypt hashes for seeding user rows.
//
//	hash-generator --cost 12 'Secret123' 'another-password'
package main

import (
	"fmt"
	"os"

	"github.com/phrazzld/booking-api/internal/service/auth"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := pflag.IntP("cost", "c", bcrypt.DefaultCost, "bcrypt cost factor")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: hash-generator [--cost N] password...\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(2)
	}
	if *cost < bcrypt.MinCost || *cost > bcrypt.MaxCost {
		fmt.Fprintf(os.Stderr, "cost must be between %d and %d\n", bcrypt.MinCost, bcrypt.MaxCost)
		os.Exit(2)
	}

	hasher := auth.NewBcrypt(*cost)
	failed := false
	for _, password := range pflag.Args() {
		hash, err := hasher.Hash(password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error hashing password: %v\n", err)
			failed = true
			continue
		}
		fmt.Println(hash)
	}
	if failed {
		os.Exit(1)
	}
}
