// Package dispatch implements the command dispatcher (spec.md §4.I): a
// case-preserving lookup tried first, falling back to a case-folded
// registry, plus the per-command key arity (copy=2, merge=3, else=1) and
// the twenty-one command handlers (the commands listed in spec.md §6 plus
// `info`). Grounded on the
// teacher's route-table dispatch in server/http.go (one static table
// mapping a name to a handler function) generalized from HTTP routes to
// in-process command names.
package dispatch

import (
	"strings"

	"github.com/coffersTech/nanots/internal/store"
	"github.com/coffersTech/nanots/internal/tserr"
)

// handlerFunc executes one command given its resolved keys and the
// remaining argument tokens.
type handlerFunc func(d *Dispatcher, keys []string, args []string) (interface{}, error)

type registered struct {
	arity   int
	handler handlerFunc
}

// Dispatcher owns the collaborator handles and the command table.
type Dispatcher struct {
	Store store.Store
	Hash  *store.HashStore

	commands map[string]registered
	folded   map[string]registered
}

// New builds a dispatcher with the full command table wired in.
func New(s store.Store, h *store.HashStore) *Dispatcher {
	d := &Dispatcher{
		Store:    s,
		Hash:     h,
		commands: make(map[string]registered),
	}
	d.register("add", 1, cmdAdd)
	d.register("bulk_add", 1, cmdBulkAdd)
	d.register("del", 1, cmdDel)
	d.register("size", 1, cmdSize)
	d.register("span", 1, cmdSpan)
	d.register("exists", 1, cmdExists)
	d.register("info", 1, cmdInfo)
	d.register("times", 1, cmdTimes)
	d.register("trimlength", 1, cmdTrimLength)
	d.register("get", 1, cmdGet)
	d.register("pop", 1, cmdPop)
	d.register("count", 1, cmdCount)
	d.register("range", 1, cmdRange)
	d.register("revrange", 1, cmdRevRange)
	d.register("poprange", 1, cmdPopRange)
	d.register("remrange", 1, cmdRemRange)
	d.register("copy", 2, cmdCopy)
	d.register("merge", 3, cmdMerge)
	d.register("distinct", 1, cmdDistinct)
	d.register("count_distinct", 1, cmdCountDistinct)
	d.register("basic_stats", 1, cmdBasicStats)

	d.buildFolded()
	return d
}

func (d *Dispatcher) register(name string, arity int, h handlerFunc) {
	d.commands[name] = registered{arity: arity, handler: h}
}

func (d *Dispatcher) buildFolded() {
	d.folded = make(map[string]registered, len(d.commands))
	for name, r := range d.commands {
		d.folded[strings.ToLower(name)] = r
	}
}

// Dispatch resolves tokens[0] as a command name, slices off its keys per
// arity, and invokes its handler with the remaining tokens.
func (d *Dispatcher) Dispatch(tokens []string) (interface{}, error) {
	if len(tokens) == 0 {
		return nil, tserr.Argument("empty command invocation")
	}
	name := tokens[0]

	r, ok := d.commands[name]
	if !ok {
		r, ok = d.folded[strings.ToLower(name)]
	}
	if !ok {
		return nil, tserr.Lookup("unknown command %q", name)
	}

	rest := tokens[1:]
	if len(rest) < r.arity {
		return nil, tserr.Argument("%s requires %d key(s)", name, r.arity)
	}
	keys := rest[:r.arity]
	args := rest[r.arity:]
	return r.handler(d, keys, args)
}
