// Package modules provides the standard library modules resolvable
// through the engine registry: str, fs, scope and db.
package modules

import (
	"fmt"
	"stack/internal/engine"
	"stack/internal/object"
	"stack/internal/util"
)

// Loader returns an engine loader that builds standard modules on demand,
// so `"fs" import` works without pre-registration.
func Loader(config util.Configuration) engine.Loader {
	return func(name string) (*engine.Module, error) {
		switch name {
		case "str":
			return Str(), nil
		case "fs":
			return Fs(config.Sandbox), nil
		case "scope":
			return Scope(), nil
		case "db":
			return Db(), nil
		}
		return nil, fmt.Errorf("unknown standard module '%s'", name)
	}
}

// Register adds the standard modules selected by the configuration.
func Register(eng *engine.Engine, config util.Configuration) {
	if config.EnableAll || config.EnableStr {
		eng.AddModule(Str())
	}
	if config.EnableAll || config.EnableFs {
		eng.AddModule(Fs(config.Sandbox))
	}
	if config.EnableAll || config.EnableScope {
		eng.AddModule(Scope())
	}
	if config.EnableAll || config.EnableDb {
		eng.AddModule(Db())
	}
}

func popString(rt engine.Runtime, fn string) (string, error) {
	val, err := rt.StackPop()
	if err != nil {
		return "", err
	}
	s, ok := val.(*object.String)
	if !ok {
		return "", fmt.Errorf("%s expects a string, got %s", fn, object.TypeName(val))
	}
	return s.Value, nil
}

func popInteger(rt engine.Runtime, fn string) (int64, error) {
	val, err := rt.StackPop()
	if err != nil {
		return 0, err
	}
	n, ok := val.(*object.Integer)
	if !ok {
		return 0, fmt.Errorf("%s expects an integer, got %s", fn, object.TypeName(val))
	}
	return n.Value, nil
}
