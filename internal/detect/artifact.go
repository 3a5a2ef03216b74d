// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package detect

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// artifact is the structured payload the host writes on failure. Two shapes
// share it: a domain result carrying validation failures, and the
// error-shaped payload the host's crash path writes. Both classify as
// FailedWithOutput; the shape only refines the logged detail.
type artifact struct {
	Error        bool              `json:"error"`
	ErrorMessage string            `json:"errorMessage"`
	Drawing      string            `json:"drawing"`
	Timestamp    string            `json:"timestamp"`
	Failures     []artifactFailure `json:"failures"`
}

type artifactFailure struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// summarizeArtifact extracts a short failure reason from an artifact body.
// An unparseable artifact is still a failure signal; presence is what counts.
func summarizeArtifact(data []byte) string {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return "host recorded failures (artifact not parseable)"
	}

	if a.Error {
		if a.ErrorMessage != "" {
			return a.ErrorMessage
		}

		return "host reported an internal error"
	}

	if n := len(a.Failures); n > 0 {
		first := a.Failures[0].Message
		if first == "" {
			first = a.Failures[0].Rule
		}

		if n == 1 {
			return first
		}

		return fmt.Sprintf("%d validation failures, first: %s", n, first)
	}

	return "host recorded failures"
}

func dirOf(path string) string {
	return strings.TrimSuffix(filepath.Dir(path), string(filepath.Separator))
}
