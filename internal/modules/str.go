package modules

import (
	"stack/internal/engine"
	"stack/internal/object"
	"strings"
)

// Str exports string helpers. Binary functions pop the needle first and
// the subject second.
func Str() *engine.Module {
	return engine.NewModule("str").
		AddFunc("trim", func(rt engine.Runtime) error {
			s, err := popString(rt, "str:trim")
			if err != nil {
				return err
			}
			rt.StackPush(&object.String{Value: strings.TrimSpace(s)})
			return nil
		}).
		AddFunc("upper", func(rt engine.Runtime) error {
			s, err := popString(rt, "str:upper")
			if err != nil {
				return err
			}
			rt.StackPush(&object.String{Value: strings.ToUpper(s)})
			return nil
		}).
		AddFunc("lower", func(rt engine.Runtime) error {
			s, err := popString(rt, "str:lower")
			if err != nil {
				return err
			}
			rt.StackPush(&object.String{Value: strings.ToLower(s)})
			return nil
		}).
		AddFunc("contains", func(rt engine.Runtime) error {
			needle, err := popString(rt, "str:contains")
			if err != nil {
				return err
			}
			subject, err := popString(rt, "str:contains")
			if err != nil {
				return err
			}
			rt.StackPush(object.BooleanFor(strings.Contains(subject, needle)))
			return nil
		}).
		AddFunc("starts-with", func(rt engine.Runtime) error {
			prefix, err := popString(rt, "str:starts-with")
			if err != nil {
				return err
			}
			subject, err := popString(rt, "str:starts-with")
			if err != nil {
				return err
			}
			rt.StackPush(object.BooleanFor(strings.HasPrefix(subject, prefix)))
			return nil
		}).
		AddFunc("ends-with", func(rt engine.Runtime) error {
			suffix, err := popString(rt, "str:ends-with")
			if err != nil {
				return err
			}
			subject, err := popString(rt, "str:ends-with")
			if err != nil {
				return err
			}
			rt.StackPush(object.BooleanFor(strings.HasSuffix(subject, suffix)))
			return nil
		}).
		AddFunc("index-of", func(rt engine.Runtime) error {
			needle, err := popString(rt, "str:index-of")
			if err != nil {
				return err
			}
			subject, err := popString(rt, "str:index-of")
			if err != nil {
				return err
			}
			rt.StackPush(&object.Integer{Value: int64(strings.Index(subject, needle))})
			return nil
		})
}
