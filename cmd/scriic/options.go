package main

import (
	"fmt"
	"strings"

	"github.com/AlphaMycelium/scriic/pkg/log"
)

type globalOptions struct {
	debugTopics []string
	debugAll    bool
	verbosity   uint
}

// parseGlobalOptions pulls the logging flags out of args wherever they appear
// before "--" and returns the rest untouched.
func parseGlobalOptions(args []string) (globalOptions, []string, error) {
	opts := globalOptions{verbosity: 1}
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			remaining = append(remaining, args[i:]...)
			break
		}
		switch {
		case arg == "--debug":
			opts.debugAll = true
		case strings.HasPrefix(arg, "--debug="):
			value := strings.TrimPrefix(arg, "--debug=")
			if strings.TrimSpace(value) == "" {
				return opts, nil, fmt.Errorf("--debug= expects a comma-separated list of topics (%s)", strings.Join(log.TopicNames(), ", "))
			}
			opts.debugTopics = append(opts.debugTopics, strings.Split(value, ",")...)
		case arg == "-v" || arg == "--verbose":
			opts.verbosity++
		case arg == "-q" || arg == "--quiet":
			opts.verbosity = 0
		default:
			remaining = append(remaining, arg)
		}
	}
	return opts, remaining, nil
}

func (o globalOptions) apply() error {
	log.SetVerbosity(o.verbosity)
	if o.debugAll {
		return log.EnableDebugTopics(log.TopicNames())
	}
	return log.EnableDebugTopics(o.debugTopics)
}
