package main

import (
	"bufio"
	"fmt"
	"io"
)

// runConsole reads single-character commands from input until a quit
// command or EOF. Newlines are ignored; any other key prints a short
// reminder. EOF counts as quit, otherwise a closed stdin would leave the
// loop spinning.
func runConsole(input io.Reader, output io.Writer) {
	reader := bufio.NewReader(input)
	for {
		char, err := reader.ReadByte()
		if err != nil {
			return
		}
		switch char {
		case '\n', '\r':
		case 'q':
			fmt.Fprintln(output, "Received QUIT command")
			fmt.Fprintln(output, "Exiting..")
			return
		default:
			fmt.Fprintln(output, "Console")
			fmt.Fprintln(output, " Key options are:")
			fmt.Fprintln(output, "  q - quit from the program")
		}
	}
}
