package modules

import (
	"fmt"
	"os"
	"stack/internal/engine"
	"stack/internal/object"
)

// Fs exports filesystem access. With sandbox set, anything that writes is
// refused; reads stay available.
func Fs(sandbox bool) *engine.Module {
	return engine.NewModule("fs").
		AddFunc("read", func(rt engine.Runtime) error {
			path, err := popString(rt, "fs:read")
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("fs:read failed: %w", err)
			}
			rt.StackPush(&object.String{Value: string(data)})
			return nil
		}).
		AddFunc("write", func(rt engine.Runtime) error {
			content, err := popString(rt, "fs:write")
			if err != nil {
				return err
			}
			path, err := popString(rt, "fs:write")
			if err != nil {
				return err
			}
			if sandbox {
				return fmt.Errorf("fs:write refused: sandbox is enabled")
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return fmt.Errorf("fs:write failed: %w", err)
			}
			rt.StackPush(object.NIL)
			return nil
		}).
		AddFunc("exists", func(rt engine.Runtime) error {
			path, err := popString(rt, "fs:exists")
			if err != nil {
				return err
			}
			_, statErr := os.Stat(path)
			rt.StackPush(object.BooleanFor(statErr == nil))
			return nil
		})
}
