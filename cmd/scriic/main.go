package main

import (
	"fmt"
	"io"
	"os"
)

const cliToolVersion = "scriic 0.1.0"

// cli carries the streams a command talks to so tests can swap them out.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	return c.run(args)
}

func (c *cli) run(args []string) int {
	opts, remaining, err := parseGlobalOptions(args)
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		c.printUsage()
		return 1
	}
	if err := opts.apply(); err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return 1
	}

	if len(remaining) == 0 {
		c.printUsage()
		return 1
	}

	switch remaining[0] {
	case "--help", "-h", "help":
		c.printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(c.stdout, cliToolVersion)
		return 0
	case "run":
		return c.runEntry(remaining[1:])
	case "check":
		return c.runCheck(remaining[1:])
	case "deps":
		return c.runDeps(remaining[1:])
	default:
		return c.runEntry(remaining)
	}
}
