package a

import (
	"errors"
	"fmt"
)

func bad() error {
	return fmt.Errorf("Loading config: %w", errors.New("x")) // want "error message starts with an uppercase letter"
}

func badPunct() error {
	return fmt.Errorf("loading config failed.") // want "error message ends with punctuation"
}

func good() error {
	return fmt.Errorf("loading config: %w", errors.New("x"))
}

func goodEmptyArgs() error {
	format := "loading %s"
	return fmt.Errorf(format, "config")
}

func goodSprintf() string {
	// Only Errorf messages are error strings.
	return fmt.Sprintf("Loading config.")
}
