package compute

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the first line of every rendered preamble.
const Version = "#version 460"

// Define is a single preamble constant.
type Define struct {
	Name  string
	Value string
}

// IntDefine builds a Define from an integer value.
func IntDefine(name string, v int) Define {
	return Define{Name: name, Value: strconv.Itoa(v)}
}

// FloatDefine builds a Define from a floating point value.
func FloatDefine(name string, v float64) Define {
	return Define{Name: name, Value: strconv.FormatFloat(v, 'f', -1, 64)}
}

// Preamble renders the defines block that is prepended to kernel source.
func Preamble(defs []Define) string {
	var b strings.Builder
	b.WriteString(Version)
	b.WriteByte('\n')
	for _, d := range defs {
		fmt.Fprintf(&b, "#define %s %s\n", d.Name, d.Value)
	}
	return b.String()
}

// Source is a kernel program before compilation.
type Source struct {
	Name    string
	Text    string
	Defines []Define
}

// Full returns the preamble followed by the kernel text.
func (s Source) Full() string {
	return Preamble(s.Defines) + s.Text
}

// unit is the result of scanning a full source for the directives the CPU
// compiler understands. Everything else is carried as opaque text.
type unit struct {
	entry   string
	local   [3]int
	defines map[string]string
}

func scan(name, text string) (unit, error) {
	u := unit{local: [3]int{8, 8, 1}, defines: map[string]string{}}
	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if !strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "#define":
			if len(fields) < 2 {
				return u, fmt.Errorf("%w: %s:%d: define without a name", ErrCompile, name, n+1)
			}
			value := ""
			if len(fields) > 2 {
				value = strings.Join(fields[2:], " ")
			}
			u.defines[fields[1]] = value
		case "#pragma":
			if len(fields) < 2 {
				continue
			}
			switch fields[1] {
			case "kernel":
				if len(fields) != 3 {
					return u, fmt.Errorf("%w: %s:%d: kernel pragma wants one entry name", ErrCompile, name, n+1)
				}
				if u.entry != "" {
					return u, fmt.Errorf("%w: %s:%d: second kernel entry %q", ErrCompile, name, n+1, fields[2])
				}
				u.entry = fields[2]
			case "local_size":
				if len(fields) != 5 {
					return u, fmt.Errorf("%w: %s:%d: local_size wants three dimensions", ErrCompile, name, n+1)
				}
				for i := 0; i < 3; i++ {
					v, err := strconv.Atoi(resolve(fields[2+i], u.defines))
					if err != nil || v <= 0 {
						return u, fmt.Errorf("%w: %s:%d: bad local_size %q", ErrCompile, name, n+1, fields[2+i])
					}
					u.local[i] = v
				}
			}
		}
	}
	if u.entry == "" {
		return u, fmt.Errorf("%w: %s: no kernel entry point", ErrCompile, name)
	}
	return u, nil
}

// localDefines name the constants hosts size their dispatches with.
var localDefines = [3]string{"X_THREADS", "Y_THREADS", "Z_THREADS"}

// checkLocal rejects a local size that disagrees with the thread defines, since
// group counts derived from those defines would leave cells unvisited.
func (u unit) checkLocal(name string) error {
	for i, def := range localDefines {
		raw, ok := u.defines[def]
		if !ok {
			continue
		}
		want, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %s: %s=%q is not an integer", ErrCompile, name, def, raw)
		}
		if u.local[i] != want {
			return fmt.Errorf("%w: %s: local_size %v disagrees with %s=%d", ErrCompile, name, u.local, def, want)
		}
	}
	return nil
}

// resolve substitutes a token that names a define.
func resolve(tok string, defines map[string]string) string {
	if v, ok := defines[tok]; ok {
		return v
	}
	return tok
}
