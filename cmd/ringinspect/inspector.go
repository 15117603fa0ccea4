package main

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/aradilov/ringbuffer"
	"github.com/aradilov/ringbuffer/internal/repl"
)

// inspector keeps named string buffers and exposes them as REPL commands.
type inspector struct {
	buffers map[string]*ringbuffer.Buffer[string]
	pool    *ringbuffer.PoolAllocator[string]
	log     *slog.Logger
}

func newInspector(pool *ringbuffer.PoolAllocator[string], log *slog.Logger) *inspector {
	return &inspector{
		buffers: make(map[string]*ringbuffer.Buffer[string]),
		pool:    pool,
		log:     log,
	}
}

func (in *inspector) options() []ringbuffer.Option[string] {
	if in.pool == nil {
		return nil
	}
	return []ringbuffer.Option[string]{ringbuffer.WithAllocator[string](in.pool)}
}

func (in *inspector) register(r *repl.REPL) {
	r.AddCommand("new", in.cmdNew, "new <name> [capacity] - create an empty buffer")
	r.AddLineCommand("load", in.cmdLoad, `load <name> <json array> - create a buffer from a JSON array, e.g. load a ["x","y"]`)
	r.AddCommand("clone", in.cmdClone, "clone <dst> <src> - share src's storage under a new name")
	r.AddCommand("drop", in.cmdDrop, "drop <name> - forget a buffer")
	r.AddCommand("append", in.cmdAppend, "append <name> <value>... - add values at the back")
	r.AddCommand("prepend", in.cmdPrepend, "prepend <name> <value>... - add values at the front")
	r.AddCommand("insert", in.cmdInsert, "insert <name> <index> <value>... - insert values before index")
	r.AddCommand("remove", in.cmdRemove, "remove <name> <index> [end] - remove one element or the range [index, end)")
	r.AddCommand("replace", in.cmdReplace, "replace <name> <lo> <hi> [value]... - replace [lo, hi) with values")
	r.AddCommand("set", in.cmdSet, "set <name> <index> <value> - overwrite one element")
	r.AddCommand("rotate", in.cmdRotate, "rotate <name> <k> - make element k the first")
	r.AddCommand("reserve", in.cmdReserve, "reserve <name> <n> - ensure capacity for n elements")
	r.AddCommand("clear", in.cmdClear, "clear <name> [keep] - remove all elements, optionally keeping capacity")
	r.AddCommand("show", in.cmdShow, "show [name] - print the physical layout of one or all buffers")
	r.AddCommand("stats", in.cmdStats, "stats - print allocator pool statistics")
}

func (in *inspector) lookup(name string) (*ringbuffer.Buffer[string], error) {
	b, ok := in.buffers[name]
	if !ok {
		return nil, errors.Errorf("no buffer named %q", name)
	}
	return b, nil
}

func needArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return errors.Errorf("usage: %s", usage)
	}
	return nil
}

func parseInt(s, what string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", what)
	}
	return n, nil
}

func checkIndex(b *ringbuffer.Buffer[string], i int, inclusive bool) error {
	limit := b.Len()
	if inclusive {
		limit++
	}
	if i < 0 || i >= limit {
		return errors.Errorf("index %d out of range for length %d", i, b.Len())
	}
	return nil
}

func (in *inspector) show(w io.Writer, name string, b *ringbuffer.Buffer[string]) {
	fmt.Fprintf(w, "%s = %s\n\t%#v\n", name, b, b)
}

func (in *inspector) cmdNew(args []string, w io.Writer) error {
	if err := needArgs(args, 1, "new <name> [capacity]"); err != nil {
		return err
	}
	capacity := 0
	if len(args) > 1 {
		n, err := parseInt(args[1], "capacity")
		if err != nil {
			return err
		}
		if n < 0 || n > ringbuffer.MaxCapacity {
			return errors.Errorf("capacity %d out of range", n)
		}
		capacity = n
	}
	b := ringbuffer.New(capacity, in.options()...)
	in.buffers[args[0]] = b
	in.log.Info("buffer created", "name", args[0], "capacity", b.Cap())
	in.show(w, args[0], b)
	return nil
}

func (in *inspector) cmdLoad(rest string, w io.Writer) error {
	args := strings.Fields(rest)
	if err := needArgs(args, 2, "load <name> <json array>"); err != nil {
		return err
	}
	name := args[0]
	doc := strings.TrimSpace(rest[len(name):])
	if !gjson.Valid(doc) {
		return errors.Errorf("invalid JSON: %s", doc)
	}
	res := gjson.Parse(doc)
	if !res.IsArray() {
		return errors.Errorf("expected a JSON array, got %s", res.Type)
	}
	var values []string
	res.ForEach(func(_, v gjson.Result) bool {
		values = append(values, v.String())
		return true
	})
	b := ringbuffer.From(values, in.options()...)
	in.buffers[name] = b
	in.log.Info("buffer loaded", "name", name, "count", b.Len())
	in.show(w, name, b)
	return nil
}

func (in *inspector) cmdClone(args []string, w io.Writer) error {
	if err := needArgs(args, 2, "clone <dst> <src>"); err != nil {
		return err
	}
	src, err := in.lookup(args[1])
	if err != nil {
		return err
	}
	in.buffers[args[0]] = src.Clone()
	in.show(w, args[0], in.buffers[args[0]])
	return nil
}

func (in *inspector) cmdDrop(args []string, w io.Writer) error {
	if err := needArgs(args, 1, "drop <name>"); err != nil {
		return err
	}
	if _, err := in.lookup(args[0]); err != nil {
		return err
	}
	delete(in.buffers, args[0])
	fmt.Fprintf(w, "dropped %s\n", args[0])
	return nil
}

func (in *inspector) cmdAppend(args []string, w io.Writer) error {
	if err := needArgs(args, 2, "append <name> <value>..."); err != nil {
		return err
	}
	b, err := in.lookup(args[0])
	if err != nil {
		return err
	}
	if len(args) == 2 {
		b.Append(args[1])
	} else {
		b.AppendSlice(args[1:])
	}
	in.show(w, args[0], b)
	return nil
}

func (in *inspector) cmdPrepend(args []string, w io.Writer) error {
	if err := needArgs(args, 2, "prepend <name> <value>..."); err != nil {
		return err
	}
	b, err := in.lookup(args[0])
	if err != nil {
		return err
	}
	if len(args) == 2 {
		b.Prepend(args[1])
	} else {
		b.PrependSlice(args[1:])
	}
	in.show(w, args[0], b)
	return nil
}

func (in *inspector) cmdInsert(args []string, w io.Writer) error {
	if err := needArgs(args, 3, "insert <name> <index> <value>..."); err != nil {
		return err
	}
	b, err := in.lookup(args[0])
	if err != nil {
		return err
	}
	i, err := parseInt(args[1], "index")
	if err != nil {
		return err
	}
	if err := checkIndex(b, i, true); err != nil {
		return err
	}
	if len(args) == 3 {
		b.Insert(i, args[2])
	} else {
		b.InsertSlice(i, args[2:])
	}
	in.show(w, args[0], b)
	return nil
}

func (in *inspector) cmdRemove(args []string, w io.Writer) error {
	if err := needArgs(args, 2, "remove <name> <index> [end]"); err != nil {
		return err
	}
	b, err := in.lookup(args[0])
	if err != nil {
		return err
	}
	lo, err := parseInt(args[1], "index")
	if err != nil {
		return err
	}
	if len(args) == 2 {
		if err := checkIndex(b, lo, false); err != nil {
			return err
		}
		fmt.Fprintf(w, "removed %q\n", b.Remove(lo))
	} else {
		hi, err := parseInt(args[2], "end")
		if err != nil {
			return err
		}
		if lo < 0 || hi < lo || hi > b.Len() {
			return errors.Errorf("range [%d, %d) out of range for length %d", lo, hi, b.Len())
		}
		b.RemoveRange(lo, hi)
	}
	in.show(w, args[0], b)
	return nil
}

func (in *inspector) cmdReplace(args []string, w io.Writer) error {
	if err := needArgs(args, 3, "replace <name> <lo> <hi> [value]..."); err != nil {
		return err
	}
	b, err := in.lookup(args[0])
	if err != nil {
		return err
	}
	lo, err := parseInt(args[1], "lo")
	if err != nil {
		return err
	}
	hi, err := parseInt(args[2], "hi")
	if err != nil {
		return err
	}
	if lo < 0 || hi < lo || hi > b.Len() {
		return errors.Errorf("range [%d, %d) out of range for length %d", lo, hi, b.Len())
	}
	b.Replace(lo, hi, args[3:])
	in.show(w, args[0], b)
	return nil
}

func (in *inspector) cmdSet(args []string, w io.Writer) error {
	if err := needArgs(args, 3, "set <name> <index> <value>"); err != nil {
		return err
	}
	b, err := in.lookup(args[0])
	if err != nil {
		return err
	}
	i, err := parseInt(args[1], "index")
	if err != nil {
		return err
	}
	if err := checkIndex(b, i, false); err != nil {
		return err
	}
	b.Set(i, args[2])
	in.show(w, args[0], b)
	return nil
}

func (in *inspector) cmdRotate(args []string, w io.Writer) error {
	if err := needArgs(args, 2, "rotate <name> <k>"); err != nil {
		return err
	}
	b, err := in.lookup(args[0])
	if err != nil {
		return err
	}
	k, err := parseInt(args[1], "k")
	if err != nil {
		return err
	}
	b.Rotate(k)
	in.show(w, args[0], b)
	return nil
}

func (in *inspector) cmdReserve(args []string, w io.Writer) error {
	if err := needArgs(args, 2, "reserve <name> <n>"); err != nil {
		return err
	}
	b, err := in.lookup(args[0])
	if err != nil {
		return err
	}
	n, err := parseInt(args[1], "n")
	if err != nil {
		return err
	}
	if n > ringbuffer.MaxCapacity {
		return errors.Errorf("capacity %d out of range", n)
	}
	b.Reserve(n)
	in.show(w, args[0], b)
	return nil
}

func (in *inspector) cmdClear(args []string, w io.Writer) error {
	if err := needArgs(args, 1, "clear <name> [keep]"); err != nil {
		return err
	}
	b, err := in.lookup(args[0])
	if err != nil {
		return err
	}
	keep := len(args) > 1 && args[1] == "keep"
	b.RemoveAll(keep)
	in.show(w, args[0], b)
	return nil
}

func (in *inspector) cmdShow(args []string, w io.Writer) error {
	if len(args) > 0 {
		b, err := in.lookup(args[0])
		if err != nil {
			return err
		}
		in.show(w, args[0], b)
		return nil
	}
	names := make([]string, 0, len(in.buffers))
	for name := range in.buffers {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		in.show(w, name, in.buffers[name])
	}
	return nil
}

func (in *inspector) cmdStats(_ []string, w io.Writer) error {
	if in.pool == nil {
		return errors.New("pooling is disabled; start with -pool")
	}
	s := in.pool.Stats()
	fmt.Fprintf(w, "allocs=%d hits=%d misses=%d frees=%d discards=%d\n",
		s.Allocs, s.Hits, s.Misses, s.Frees, s.Discards)
	classes := in.pool.ClassStats()
	caps := make([]int, 0, len(classes))
	for c := range classes {
		caps = append(caps, c)
	}
	slices.Sort(caps)
	for _, c := range caps {
		cs := classes[c]
		label := strconv.Itoa(c)
		if c == 0 {
			label = "oversize"
		}
		fmt.Fprintf(w, "\t%s: allocs=%d hits=%d misses=%d frees=%d discards=%d\n",
			label, cs.Allocs, cs.Hits, cs.Misses, cs.Frees, cs.Discards)
	}
	return nil
}
