package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader decodes a JSON document from the file named by its flag, or
// from stdin when the flag is empty.
type FileReader[T any] struct {
	fileFlagValue string
	stdin         *os.File
}

// Flag returns the --file flag bound to the reader.
func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to JSON file (reads from stdin if not provided)",
		Destination: &fr.fileFlagValue,
	}
}

// Provided reports whether a file was named or stdin is piped.
func (fr *FileReader[T]) Provided() bool {
	return fr.fileFlagValue != "" || !term.IsTerminal(int(fr.in().Fd()))
}

func (fr *FileReader[T]) in() *os.File {
	if fr.stdin != nil {
		return fr.stdin
	}
	return os.Stdin
}

// Read decodes the input.
func (fr *FileReader[T]) Read() (T, error) {
	var reader io.Reader
	var input T

	if fr.fileFlagValue != "" {
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	} else {
		in := fr.in()
		if term.IsTerminal(int(in.Fd())) {
			return input, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe JSON input")
		}
		reader = in
	}

	if err := json.NewDecoder(reader).Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}
