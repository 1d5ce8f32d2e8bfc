// Package passwd reads a new password from the operator and hashes it with
// bcrypt for use as BASIC_AUTH_PASS_HASH.
package passwd

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// test seams for the terminal
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
)

var (
	ErrEmpty    = errors.New("empty password")
	ErrMismatch = errors.New("passwords do not match")
)

// GetPassword prints prompt to w and reads a password from the terminal
// without echo.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(stdinFd())
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// ReadNew returns a new password. On a terminal it asks twice and requires
// both entries to match; otherwise the first line of in is used, so the
// tool also works in pipelines.
func ReadNew(w io.Writer, in io.Reader) ([]byte, error) {
	if !isTerminal(stdinFd()) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		pw := []byte(strings.TrimRight(line, "\r\n"))
		if len(pw) == 0 {
			return nil, ErrEmpty
		}
		return pw, nil
	}

	pw, err := GetPassword(w, "New password: ")
	if err != nil {
		return nil, err
	}
	if len(pw) == 0 {
		return nil, ErrEmpty
	}
	again, err := GetPassword(w, "Repeat password: ")
	if err != nil {
		Wipe(pw)
		return nil, err
	}
	defer Wipe(again)
	if !bytes.Equal(pw, again) {
		Wipe(pw)
		return nil, ErrMismatch
	}
	return pw, nil
}

// Hash returns the bcrypt hash of pw. cost 0 means bcrypt.DefaultCost.
func Hash(pw []byte, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword(pw, cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Wipe zeroes b.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
