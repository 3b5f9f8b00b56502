package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores compiled trees keyed by (source_hash ^ options_hash).
var globalCache sync.Map

// state tracks the one-time compilation of a source.
type state struct {
	once sync.Once
	tree *tree
	err  error
}

// hashOptions encodes options using gob and hashes with xxh3.
// Returns a hash that uniquely identifies the options configuration.
func hashOptions(opts optionsKey) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(opts.name)
	_ = enc.Encode(opts.params)
	_ = enc.Encode(opts.maxDepth)
	_ = enc.Encode(uint8(opts.loopScope))
	_ = enc.Encode(opts.strictDefined)
	_ = enc.Encode(opts.strictBlocks)

	return xxh3.Hash(buf.Bytes())
}

// CompileReader reads a template from r and compiles it. Sources read this
// way are usually files that change between reads, so they bypass the
// compile cache.
func CompileReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Template, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return Compile(ctx, string(data), opts...)
}

// CompileCached is like [Compile], but identical sources compiled with
// identical options share one compiled tree. Entries are kept until
// [ClearCache], so it suits a fixed set of sources.
func CompileCached(
	ctx context.Context,
	src string,
	opts ...Option,
) (*Template, error) {
	t := newTemplate(opts...)

	srcHash := xxh3.HashString(src)
	optsHash := hashOptions(t.opts)
	key := strconv.FormatUint(srcHash^optsHash, 36)

	value, cacheHit := globalCache.LoadOrStore(key, new(state))

	entry, ok := value.(*state)
	if !ok {
		return nil, ErrBadNode.
			With(slog.String("issue", "invalid entry type in cache"))
	}

	t.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(srcHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", cacheHit),
	)

	entry.once.Do(func() {
		compiled, err := Compile(ctx, src, opts...)
		if err != nil {
			entry.err = err

			return
		}

		entry.tree = compiled.tree
	})

	if entry.err != nil {
		return nil, entry.err
	}

	t.tree = entry.tree

	return t, nil
}

// ClearCache removes all cached compilations.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}
