package minit

import (
	"fmt"
	"os"

	"golang.org/x/xerrors"

	"github.com/howeyc/gopass"
)

// GetPassWord reads a password from the terminal without echo.
func GetPassWord() (string, error) {
	pw, err := gopass.GetPasswdPrompt("Enter password: ", false, os.Stdin, os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// NewPassWord asks twice and returns the password once both entries match.
func NewPassWord() (string, error) {
	for i := 0; i < 3; i++ {
		pw, err := gopass.GetPasswdPrompt("Specify password for key encryption: ", false, os.Stdin, os.Stderr)
		if err != nil {
			return "", err
		}
		if len(pw) == 0 {
			continue
		}
		again, err := gopass.GetPasswdPrompt("Retype your password: ", false, os.Stdin, os.Stderr)
		if err != nil {
			return "", err
		}
		if string(pw) == string(again) {
			return string(pw), nil
		}
		fmt.Fprintln(os.Stderr, "Passwords do not match")
	}
	return "", xerrors.New("no matching password after 3 attempts")
}
