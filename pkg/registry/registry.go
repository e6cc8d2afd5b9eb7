// Package registry loads node type definitions from declaration files.
//
// A registry directory holds one file per node type. The file's base name
// without the .node extension is the type name:
//
//	nodes/
//	  identity.node
//	  blend.node
//
// The package also embeds a small library of built-in types (see [Builtin]),
// used when no registry directory is configured.
package registry

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/matzehuels/shadergraph/pkg/decl"
	"github.com/matzehuels/shadergraph/pkg/errors"
	"github.com/matzehuels/shadergraph/pkg/nodetype"
)

// Ext is the file extension of node type declaration files.
const Ext = ".node"

//go:embed builtin/*.node
var builtinFS embed.FS

var (
	builtinOnce sync.Once
	builtinReg  *nodetype.MapRegistry
	builtinErr  error
)

// Builtin returns the embedded library of node types.
// The registry is loaded once and shared; callers must not Register into it.
func Builtin() *nodetype.MapRegistry {
	builtinOnce.Do(func() {
		sub, err := fs.Sub(builtinFS, "builtin")
		if err != nil {
			builtinErr = err
			return
		}
		builtinReg, builtinErr = LoadFS(sub, true)
	})
	if builtinErr != nil {
		panic(fmt.Sprintf("registry: invalid builtin library: %v", builtinErr))
	}
	return builtinReg
}

// LoadDir loads every *.node file in dir (not recursively).
func LoadDir(dir string, strict bool) (*nodetype.MapRegistry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "registry directory %s", dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "registry path %s is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir), strict)
}

// LoadFS loads every *.node file at the root of fsys. With strict set, files are
// parsed with decl.ParseNodeDefinitionStrict and any error aborts loading.
func LoadFS(fsys fs.FS, strict bool) (*nodetype.MapRegistry, error) {
	matches, err := fs.Glob(fsys, "*"+Ext)
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}

	reg := nodetype.NewMapRegistry()
	for _, name := range matches {
		def, err := loadFile(fsys, name, strict)
		if err != nil {
			return nil, err
		}
		reg.Register(def)
	}
	return reg, nil
}

func loadFile(fsys fs.FS, name string, strict bool) (*nodetype.Definition, error) {
	typeName := strings.TrimSuffix(path.Base(name), Ext)
	if err := errors.ValidateIdentifier("node type name", typeName); err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	var def nodetype.Definition
	if strict {
		def, err = decl.ParseNodeDefinitionStrict(string(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	} else {
		def = decl.ParseNodeDefinition(string(data))
	}
	def.Name = typeName
	return &def, nil
}

// Hash returns a stable content hash of every definition in reg. Two registries
// with the same types, ports, defaults and bodies hash equally.
func Hash(reg nodetype.Registry) string {
	h := sha256.New()
	for _, name := range reg.Names() {
		def, ok := reg.Lookup(name)
		if !ok {
			continue
		}
		fmt.Fprintf(h, "%s\x00%s\x00", name, decl.StringifyNodeDefinition(*def))
	}
	return hex.EncodeToString(h.Sum(nil))
}
