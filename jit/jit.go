//go:build linux || darwin

// Package jit invokes a system compiler over generated evaluator source
// and loads the resulting shared object, resolving each evaluator entry
// point to a callable function pointer. Grounded on the original engine's
// own test harness (CodeGeneratorTest.cpp): write source to a unique temp
// path, shell out to the compiler with "-shared", dlopen the artifact,
// dlsym each expected name, dlclose on release.
package jit

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"unsafe"

	"github.com/google/uuid"

	"github.com/convexmpc/convexmpc/mpcconfig"
	"github.com/convexmpc/convexmpc/mpcerr"
	"github.com/convexmpc/convexmpc/mpclog"
)

// Library is an opaque handle owning a loaded shared object. Releasing it
// (Close) invalidates every pointer previously resolved through Lookup.
type Library struct {
	handle unsafe.Pointer
	dir    string
	closed bool
}

// Load writes source to a uniquely named file under the system temp
// directory, invokes compiler to produce a position-independent shared
// object, and loads it. The temp directory (source and artifact both) is
// removed once the returned Library is closed.
func Load(compiler mpcconfig.Compiler, source string, logger *slog.Logger) (*Library, error) {
	logger = mpclog.OrDiscard(logger)

	dir, err := os.MkdirTemp("", "convexmpc-"+uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mpcerr.ErrCompileFailed, err)
	}

	srcPath := filepath.Join(dir, "evaluator.c")
	soPath := filepath.Join(dir, "evaluator.so")
	if err := os.WriteFile(srcPath, []byte(source), 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("%w: %v", mpcerr.ErrCompileFailed, err)
	}

	args := []string{"-shared", "-fPIC", srcPath, "-o", soPath}
	args = append(args, compiler.Flags...)
	logger.Debug("jit: compiling evaluator", slog.String("compiler", compiler.Path), slog.String("source", srcPath))

	cmd := exec.Command(compiler.Path, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("%w: %s", mpcerr.ErrCompileFailed, string(out))
	}

	handle, err := dlopen(soPath)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	logger.Debug("jit: loaded evaluator library", slog.String("path", soPath))
	return &Library{handle: handle, dir: dir}, nil
}

// Lookup resolves name to a callable function pointer within the library.
// It fails with mpcerr.ErrSymbolMissing if name is not exported.
func (l *Library) Lookup(name string) (unsafe.Pointer, error) {
	if l.closed {
		return nil, fmt.Errorf("%w: library already closed", mpcerr.ErrSymbolMissing)
	}
	return dlsym(l.handle, name)
}

// Close releases the shared object and removes its backing temp
// directory. It is idempotent; subsequent Lookup calls fail.
func (l *Library) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	err := dlclose(l.handle)
	os.RemoveAll(l.dir)
	return err
}

func dlopen(path string) (unsafe.Pointer, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	handle := C.dlopen(cpath, C.RTLD_NOW)
	if handle == nil {
		return nil, fmt.Errorf("%w: %s", mpcerr.ErrLoadFailed, C.GoString(C.dlerror()))
	}
	return handle, nil
}

func dlsym(handle unsafe.Pointer, name string) (unsafe.Pointer, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	C.dlerror()
	sym := C.dlsym(handle, cname)
	if sym == nil {
		if errStr := C.dlerror(); errStr != nil {
			return nil, fmt.Errorf("%w: %s (%s)", mpcerr.ErrSymbolMissing, name, C.GoString(errStr))
		}
	}
	return sym, nil
}

func dlclose(handle unsafe.Pointer) error {
	if C.dlclose(handle) != 0 {
		return fmt.Errorf("jit: dlclose: %s", C.GoString(C.dlerror()))
	}
	return nil
}
