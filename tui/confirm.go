package tui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrNoAnswer = errors.New("no answer given")

const UninstallQuestion = "Are you sure you wish to uninstall FRS-Manager? Y/N"

// Confirm asks question until the answer is Y or N, in either case. Any other
// answer prints "Invalid input" and asks again. Input ending before a valid
// answer returns ErrNoAnswer.
func Confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	InitCommonStyles(out)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintln(out, titleStyle.Render(question))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return false, fmt.Errorf("read answer: %w", err)
			}
			return false, ErrNoAnswer
		}
		switch strings.ToUpper(strings.TrimSpace(scanner.Text())) {
		case "Y":
			return true, nil
		case "N":
			return false, nil
		}
		fmt.Fprintln(out, RenderWarningSimple("Invalid input"))
	}
}

// WaitBeforeClose keeps the console window open until input arrives. A closed
// stdin returns immediately.
func WaitBeforeClose(in io.Reader, out io.Writer) {
	InitCommonStyles(out)
	fmt.Fprintln(out, helpStyle.Render("Press any key to continue..."))
	var b [1]byte
	_, _ = in.Read(b[:])
}
