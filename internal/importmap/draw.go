package importmap

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	lua "github.com/yuin/gopher-lua"
	"gopkg.in/yaml.v3"

	terrors "github.com/conneroisu/multitenancy/internal/errors"
)

// pinEntry is the on-disk form of a pin in YAML and TOML pin files.
type pinEntry struct {
	Name    string `yaml:"name" toml:"name"`
	To      string `yaml:"to" toml:"to"`
	Preload bool   `yaml:"preload" toml:"preload"`
}

type yamlPinFile struct {
	Pins []pinEntry `yaml:"pins"`
}

type tomlPinFile struct {
	Pins []pinEntry `toml:"pin"`
}

// Draw adds the pins declared in the file at path. The format is chosen by
// extension: .yml/.yaml, .toml or .lua. A missing file is not an error.
func (m *Map) Draw(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return terrors.NewIOError(terrors.ErrCodeInvalidPinFile, "cannot read pin file", err).WithPath(path)
	}

	var entries []pinEntry
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		var f yamlPinFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return invalidPinFile(path, err)
		}
		entries = f.Pins
	case ".toml":
		var f tomlPinFile
		if _, err := toml.Decode(string(data), &f); err != nil {
			return invalidPinFile(path, err)
		}
		entries = f.Pins
	case ".lua":
		entries, err = evalLuaPins(string(data))
		if err != nil {
			return invalidPinFile(path, err)
		}
	default:
		return terrors.NewConfigError(terrors.ErrCodeInvalidPinFile, "unsupported pin file extension "+ext).
			WithPath(path)
	}

	for i, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return invalidPinFile(path, errors.New("pin without a name")).WithContext("index", i)
		}
		m.Pin(e.Name, e.To, e.Preload)
	}
	return nil
}

func invalidPinFile(path string, err error) *terrors.ThemeError {
	return terrors.Wrap(err, terrors.ErrorTypeConfig, terrors.ErrCodeInvalidPinFile, "malformed pin file").
		WithPath(path)
}

// evalLuaPins runs a pin script in a sandboxed state. Scripts call
//
//	pin("name", { to = "path.js", preload = true })
//
// with the options table optional.
func evalLuaPins(source string) ([]pinEntry, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	// The base library can reach the filesystem.
	for _, name := range []string{"dofile", "loadfile", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}

	var entries []pinEntry
	L.SetGlobal("pin", L.NewFunction(func(L *lua.LState) int {
		e := pinEntry{Name: L.CheckString(1)}
		if opts := L.OptTable(2, nil); opts != nil {
			if to, ok := opts.RawGetString("to").(lua.LString); ok {
				e.To = string(to)
			}
			e.Preload = lua.LVAsBool(opts.RawGetString("preload"))
		}
		entries = append(entries, e)
		return 0
	}))

	fn, err := L.LoadString(source)
	if err != nil {
		return nil, err
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return nil, err
	}
	return entries, nil
}
