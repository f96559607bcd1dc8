package main

import "fmt"

func (c *cli) printUsage() {
	lines := []string{
		"Usage:",
		"  scriic [run] <target> [-p name=value ...]  Run a script and print its instructions",
		"  scriic check <target>                      Parse a script and list its parameters",
		"  scriic deps install                        Resolve manifest modules and write scriic.lock",
		"  scriic --version",
		"",
		"A target is a .scriic file, a module:path reference, or a script named in scriic.yml.",
		"Parameters not given with -p/--param are asked for on the command line.",
		"",
		"Options:",
		"  --debug[=topics]  Print debug output for parse, run, resolve, deps (all when no list)",
		"  -v, --verbose     Print more progress output",
		"  -q, --quiet       Only print instructions and errors",
		"",
		"Environment:",
		"  SCRIIC_PATH  Extra module directories, separated by the OS path list separator",
		"  SCRIIC_HOME  Cache directory for git modules (default ~/.scriic)",
	}
	for _, line := range lines {
		fmt.Fprintln(c.stderr, line)
	}
}
