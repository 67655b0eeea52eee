// Package flagx holds helpers for parsing only a subset of os.Args, so the
// config loader can read its own flags without tripping over flags that
// belong to other components (or to `go test`).
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps the arguments that name one of known (e.g. "-c") along
// with their values. Both "-c file" and "-c=file" forms are recognised; a
// following token that starts with "-" is never taken as a value.
func FilterArgs(args []string, known []string) []string {
	set := make(map[string]struct{}, len(known))
	for _, f := range known {
		set[f] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if _, hit := set[name]; hit {
				out = append(out, arg)
			}
			continue
		}

		if _, hit := set[arg]; !hit {
			continue
		}
		out = append(out, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigFileFlag returns the config file path given with -c or -config, or
// "" when neither is present. The last occurrence wins.
func ConfigFileFlag() string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(os.Args[1:], []string{"-c", "-config"}))

	return path
}
