package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// Load compiles the program at path: a single .cue file, or a directory of
// .cue files. Directory programs are usually written without a package
// clause; a directory holding one named package loads too.
func Load(path string) (*Program, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load program: %w", err)
	}

	if !info.IsDir() {
		return loadInstance(path, &load.Config{Dir: filepath.Dir(path)}, filepath.Base(path))
	}

	p, err := loadInstance(path, &load.Config{Dir: path, Package: "_"}, ".")
	if err == nil {
		return p, nil
	}
	if named, nerr := loadInstance(path, &load.Config{Dir: path}, "."); nerr == nil {
		return named, nil
	}
	return nil, err
}

func loadInstance(path string, cfg *load.Config, arg string) (*Program, error) {
	instances := load.Instances([]string{arg}, cfg)
	if len(instances) == 0 {
		return nil, fmt.Errorf("load program: no CUE instances in %s", path)
	}
	if err := instances[0].Err; err != nil {
		return nil, formatCUEError(err)
	}

	return CompileProgram(cuecontext.New().BuildInstance(instances[0]))
}

// CompileSource compiles a program from source text. filename is used in
// error positions only.
func CompileSource(filename string, src []byte) (*Program, error) {
	v := cuecontext.New().CompileBytes(src, cue.Filename(filename))
	return CompileProgram(v)
}
