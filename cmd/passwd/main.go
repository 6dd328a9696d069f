// Command passwd prints a salt and PBKDF2 hash for a password read from the
// terminal, in the form stored in the accounts table. With -tokens it prints
// a fresh pair of conversation join tokens instead.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/convokeeper/internal/common"
	"github.com/dmitrijs2005/convokeeper/internal/cryptox"
	"github.com/dmitrijs2005/convokeeper/internal/prompt"
)

// joinTokenBytes is the entropy of a generated join token.
const joinTokenBytes = 16

func main() {
	getPassword := func() ([]byte, error) { return prompt.GetConfirmedPassword(os.Stderr) }
	if err := run(os.Args[1:], os.Stdout, getPassword); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(args []string, out io.Writer, getPassword func() ([]byte, error)) error {
	fs := flag.NewFlagSet("passwd", flag.ContinueOnError)
	p := cryptox.DefaultParams
	fs.IntVar(&p.Iterations, "i", p.Iterations, "PBKDF2 iterations")
	fs.IntVar(&p.SaltLength, "s", p.SaltLength, "salt length in bytes")
	fs.IntVar(&p.KeyLength, "k", p.KeyLength, "derived key length in bytes")
	tokens := fs.Bool("tokens", false, "print a viewer/writer join token pair and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *tokens {
		return printTokens(out)
	}

	pw, err := getPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	salt, err := cryptox.GenerateSalt(p)
	if err != nil {
		return err
	}
	hash, err := cryptox.HashPassword(string(pw), salt, p)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "salt: %s\nhash: %s\n", salt, hash)
	return err
}

func printTokens(out io.Writer) error {
	viewer, err := common.MakeRandHexString(joinTokenBytes)
	if err != nil {
		return err
	}
	writer, err := common.MakeRandHexString(joinTokenBytes)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "token_viewer: %s\ntoken_writter: %s\n", viewer, writer)
	return err
}
