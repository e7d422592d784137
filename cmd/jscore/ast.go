package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/dop251/goja/file"
	"github.com/spf13/cobra"

	"github.com/example/jscore/interpreter"
)

func newASTCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ast [file]",
		Short: "Print the parsed syntax tree as JSON",
		Long: `Parse a script without running it and print its syntax tree.

Each node is an object whose "type" member names the node kind.
Source offsets are omitted. With no file the script is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, src := "<stdin>", []byte(nil)
			var err error
			if len(args) == 1 {
				name = args[0]
				src, err = os.ReadFile(name)
			} else {
				src, err = io.ReadAll(a.stdin)
			}
			if err != nil {
				return err
			}
			program, err := interpreter.Parse(name, string(src))
			if err != nil {
				a.report(err)
				return &exitError{code: exitSyntax, err: err}
			}
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(treeJSON(reflect.ValueOf(program.Body)))
		},
	}
}

var (
	idxType     = reflect.TypeFor[file.Idx]()
	filePtrType = reflect.TypeFor[*file.File]()
)

// treeJSON converts a syntax tree value into plain maps and slices.
func treeJSON(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	if v.CanInterface() {
		switch x := v.Interface().(type) {
		case json.Marshaler:
			if v.Kind() != reflect.Pointer || !v.IsNil() {
				return x
			}
		case fmt.Stringer:
			if k := v.Kind(); k != reflect.Pointer && k != reflect.Struct {
				return x.String()
			}
		}
	}
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return treeJSON(v.Elem())
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		out := make([]any, v.Len())
		for i := range out {
			out[i] = treeJSON(v.Index(i))
		}
		return out
	case reflect.Struct:
		t := v.Type()
		node := map[string]any{"type": t.Name()}
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() || f.Type == idxType || f.Type == filePtrType {
				continue
			}
			node[f.Name] = treeJSON(v.Field(i))
		}
		return node
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.String:
		return v.String()
	}
	return nil
}
