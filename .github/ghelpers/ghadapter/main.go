package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
)

// flatten turns nested objects into dotted keys so every value fits on one output line.
func flatten(prefix string, value any, out map[string]string) {
	switch v := value.(type) {
	case map[string]any:
		for key, child := range v {
			if prefix != "" {
				key = prefix + "." + key
			}
			flatten(key, child, out)
		}
	case nil:
		out[prefix] = ""
	default:
		out[prefix] = fmt.Sprint(v)
	}
}

func writeOutputs(w io.Writer, result map[string]any) error {
	outputs := map[string]string{}
	flatten("", result, outputs)

	keys := make([]string, 0, len(outputs))
	for key := range outputs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := fmt.Fprintf(w, "%s=%s\n", key, outputs[key]); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if len(os.Args) < 2 {
		os.Exit(2)
	}

	var args []string
	if len(os.Args) > 2 {
		args = os.Args[2:]
	}

	cmd := exec.Command(os.Args[1], args...)
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr

	// diff exits 1 when the images differ and still prints its result.
	code := 0
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		code = exitErr.ExitCode()
	}
	_, _ = os.Stdout.Write(output)

	var result map[string]any
	if err := json.Unmarshal(output, &result); err != nil {
		os.Exit(code)
	}

	if githubOutput := os.Getenv("GITHUB_OUTPUT"); githubOutput != "" {
		f, err := os.OpenFile(githubOutput, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		if err := writeOutputs(f, result); err != nil {
			fmt.Fprintln(os.Stderr, err)
			_ = f.Close()
			os.Exit(2)
		}
		_ = f.Close()
	}

	os.Exit(code)
}
