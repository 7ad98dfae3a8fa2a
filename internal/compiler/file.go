package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/storeplex/internal/reducer"
)

// CompileFile compiles every store declared in a single CUE file.
func CompileFile(path string) ([]reducer.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}
	return CompileSource(path, data)
}

// CompileSource compiles every store declared in CUE source. filename is
// used for error positions.
func CompileSource(filename string, src []byte) ([]reducer.Spec, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileStores(v)
}

// CompileStores compiles each field of the top-level "store" struct, in
// declaration order.
func CompileStores(v cue.Value) ([]reducer.Spec, error) {
	storesVal := v.LookupPath(cue.ParsePath("store"))
	if !storesVal.Exists() {
		return nil, &CompileError{
			Field:   "store",
			Message: "no stores declared",
			Pos:     v.Pos(),
		}
	}

	iter, err := storesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []reducer.Spec
	for iter.Next() {
		spec, err := CompileStore(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("store.%s: %w", iter.Label(), err)
		}
		specs = append(specs, *spec)
	}
	return specs, nil
}
