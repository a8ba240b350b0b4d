// Package flagx contains small helpers for parsing a subset of the
// command-line arguments without tripping over flags owned by other
// components.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the subset of args containing only the allowed flags
// (and their values).
//
// Supported forms:
//  1. Flag and value as separate arguments:  -c lksearch.cfg
//  2. Flag and value combined with '=':      --config=lksearch.cfg
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			// Next argument, if not itself a flag, is this flag's value.
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigDirFlag extracts the alternate configuration directory passed via
// -c or -config. Only these two flags are parsed; everything else in
// os.Args is ignored so the main flag set stays unaffected.
//
// Returns an empty string when neither flag is present.
func ConfigDirFlag() string {
	var dir string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&dir, "config", "", "Path to configuration directory")
	fs.StringVar(&dir, "c", "", "Path to configuration directory (short)")
	_ = fs.Parse(args)

	return dir
}
