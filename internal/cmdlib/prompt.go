// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package cmdlib

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.chromium.org/luci/common/errors"
)

// Confirm asks the user a yes/no question and returns their answer.
// An empty response means no; garbage input prompts again. Read errors
// (for example a closed stdin) count as no.
func Confirm(w io.Writer, r io.Reader, question string) bool {
	if err := prompt(w, question); err != nil {
		return false
	}
	br := bufio.NewReader(r)
	for {
		res, err := readResponse(br)
		if err != nil {
			return false
		}
		switch res {
		case "y", "yes":
			return true
		case "", "n", "no":
			return false
		default:
			if err := reprompt(w, res); err != nil {
				return false
			}
		}
	}
}

func prompt(w io.Writer, question string) error {
	b := bufio.NewWriter(w)
	fmt.Fprintf(b, "%s [y/N] ", question)
	return b.Flush()
}

func readResponse(b *bufio.Reader) (string, error) {
	i, err := b.ReadString('\n')
	if err != nil && i == "" {
		return "", errors.Annotate(err, "get prompt response").Err()
	}
	return strings.Trim(strings.ToLower(i), " \n\t\r"), nil
}

func reprompt(w io.Writer, response string) error {
	b := bufio.NewWriter(w)
	fmt.Fprintf(b, "invalid response %q, please answer y or n: ", response)
	return b.Flush()
}
