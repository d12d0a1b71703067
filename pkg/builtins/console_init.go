package builtins

import (
	"fmt"
	"strings"

	"bemjs/pkg/vm"
)

type ConsoleInitializer struct{}

func (c *ConsoleInitializer) Name() string {
	return "console"
}

func (c *ConsoleInitializer) Priority() int {
	return PriorityConsole // 102 - After JSON
}

func (c *ConsoleInitializer) InitRuntime(ctx *RuntimeContext) error {
	r := ctx.Realm
	consoleObj := vm.NewObject(r.ObjectPrototype)

	// Helper function to format arguments for console output
	formatArgs := func(args []vm.Value) string {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.Inspect()
		}
		return strings.Join(parts, " ")
	}

	printer := func(prefix string) vm.NativeFn {
		return func(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
			fmt.Fprintln(r.Out, prefix+formatArgs(args))
			return vm.Undefined, nil
		}
	}

	method(r, consoleObj, "log", 0, printer(""))
	method(r, consoleObj, "info", 0, printer(""))
	method(r, consoleObj, "warn", 0, printer("WARN: "))
	method(r, consoleObj, "error", 0, printer("ERROR: "))

	return ctx.DefineGlobal("console", consoleObj.Value())
}
