package dsl

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// UsesSheets reports whether any line of script issues ProcessSheet.
// Scripts that never do are flat row fixes, meant to run against a
// dictionary loaded wholesale via SeedSheet rather than sheets walked
// one by one. Unparseable lines are ignored, as the runner skips them.
func UsesSheets(script []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(script))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cmd, err := ParseLine(text)
		if err != nil {
			continue
		}
		if _, ok := cmd.(ProcessSheet); ok {
			return true
		}
	}
	return false
}

// Observer is notified after every attempted command, in script order.
// status is "ok", "skipped" (recoverable error), or "fatal".
type Observer func(line int, text string, primitive string, status string)

// RunScript executes a script line by line against the executor.
//
// Blank lines and #-comments are ignored. Malformed lines and unknown
// primitives are reported and skipped; a contract violation aborts
// immediately with the offending line identified, before any output is
// written.
func (e *Executor) RunScript(r io.Reader, obs Observer) error {
	notify := func(line int, text, primitive, status string) {
		if obs != nil {
			obs(line, text, primitive, status)
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		cmd, perr := ParseLine(text)
		if perr != nil {
			at(perr, lineNum, text)
			if perr.Recoverable() {
				slog.Warn("skipping invalid script line",
					"line", lineNum, "text", text, "code", string(perr.Code))
				notify(lineNum, text, "", "skipped")
				continue
			}
			notify(lineNum, text, "", "fatal")
			return perr
		}

		if aerr := e.Apply(cmd); aerr != nil {
			at(aerr, lineNum, text)
			if aerr.Recoverable() {
				slog.Warn("skipping script line",
					"line", lineNum, "text", text, "code", string(aerr.Code))
				notify(lineNum, text, Name(cmd), "skipped")
				continue
			}
			notify(lineNum, text, Name(cmd), "fatal")
			return aerr
		}
		notify(lineNum, text, Name(cmd), "ok")
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	return nil
}
