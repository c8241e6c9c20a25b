package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// timeNow is a test seam for time.Now.
var timeNow = func() time.Time { return time.Now().UTC() }

// GetPin prints a PIN prompt to w and reads the PIN from the user's
// terminal without echo. A newline is printed after the read to keep the
// UI tidy.
func GetPin(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter PIN: "); err != nil {
		return nil, err
	}
	pin, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pin, nil
}
