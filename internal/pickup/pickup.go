package pickup

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// NoContext is the ContextArg value of a descriptor without a context argument.
const NoContext = -1

// Descriptor describes one pickup function and the roles of its arguments.
// A Descriptor is immutable once parsed.
type Descriptor struct {
	id         string
	spec       string
	useArgs    []int
	maxArgs    int
	contextArg int
}

// ID is the function name matched against call sites.
func (d Descriptor) ID() string { return d.id }

// Spec is the source string the descriptor was parsed from.
func (d Descriptor) Spec() string { return d.spec }

// UseArgs returns the zero-based argument positions emitted as messages, in
// ascending order.
func (d Descriptor) UseArgs() []int { return slices.Clone(d.useArgs) }

// MaxArgs is the highest argument position referenced by the spec.
func (d Descriptor) MaxArgs() int { return d.maxArgs }

// ContextArg returns the zero-based position of the context argument.
func (d Descriptor) ContextArg() (int, bool) {
	return d.contextArg, d.contextArg != NoContext
}

func (d Descriptor) String() string {
	var b strings.Builder
	b.WriteString(d.id)
	b.WriteString(" args=")
	b.WriteString(formatInts(d.useArgs))
	if d.contextArg != NoContext {
		b.WriteString(" context=")
		b.WriteString(strconv.Itoa(d.contextArg))
	}
	b.WriteString(" max=")
	b.WriteString(strconv.Itoa(d.maxArgs))
	return b.String()
}

var (
	plainSpec   = regexp.MustCompile(`^(\d+)g?$`)
	contextSpec = regexp.MustCompile(`^(\d+)c$`)
	pluralSpec  = regexp.MustCompile(`^(\d+)st$`)
)

// Parse builds a descriptor from `id[:argspec(,argspec)*]`. An argspec is
// `N` or `Ng` (emit argument N), `Nc` (argument N is the context) or `Nst`
// (the first N arguments are plural forms). Unknown argspecs are ignored and
// a missing argument list means "1".
func Parse(spec string) Descriptor {
	parts := strings.SplitN(spec, ":", 3)
	id := parts[0]
	args := ""
	if len(parts) > 1 {
		args = parts[1]
	}
	if args == "" {
		args = "1"
	}

	useArgs := make(map[int]struct{})
	maxArgs := 0
	ctx := NoContext

	for _, s := range strings.Split(args, ",") {
		if m := plainSpec.FindStringSubmatch(s); m != nil {
			n, ok := atoi(m[1])
			if !ok {
				continue
			}
			useArgs[n-1] = struct{}{}
			maxArgs = max(maxArgs, n)
		} else if m := contextSpec.FindStringSubmatch(s); m != nil {
			n, ok := atoi(m[1])
			if !ok {
				continue
			}
			ctx = n - 1
			delete(useArgs, ctx)
			maxArgs = max(maxArgs, n)
		} else if m := pluralSpec.FindStringSubmatch(s); m != nil {
			n, ok := atoi(m[1])
			if !ok {
				continue
			}
			maxArgs = n
			useArgs = make(map[int]struct{}, n)
			for i := 0; i < n; i++ {
				if i != ctx {
					useArgs[i] = struct{}{}
				}
			}
		}
	}

	positions := make([]int, 0, len(useArgs))
	for p := range useArgs {
		positions = append(positions, p)
	}
	slices.Sort(positions)

	return Descriptor{
		id:         id,
		spec:       spec,
		useArgs:    positions,
		maxArgs:    maxArgs,
		contextArg: ctx,
	}
}

// atoi rejects values that would overflow or blow up plural expansion.
func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n > maxPosition {
		return 0, false
	}
	return n, true
}

// maxPosition bounds argument indexes; no real call has this many arguments.
const maxPosition = 1 << 16

func formatInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
