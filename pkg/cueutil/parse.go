// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/literal"
	"cuelang.org/go/cue/token"
	cuejson "cuelang.org/go/encoding/json"
)

// Unify performs the schema-validation flow:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with the schema definition at schemaPath
//  3. Validate the unified value
//
// The unified value is returned so callers can decode it into whatever Go
// shape they need (a struct, or a map for Viper).
func Unify(schema string, data []byte, schemaPath string, opts ...Option) (cue.Value, error) {
	options := applyOptions(opts)

	// Early size check to prevent OOM from large files
	if err := CheckFileSize(data, options.maxFileSize, options.filename); err != nil {
		return cue.Value{}, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(schema)
	if schemaValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(options.filename))
	if userValue.Err() != nil {
		return cue.Value{}, FormatError(userValue.Err(), options.filename)
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}

	unified := schemaRoot.Unify(userValue)
	if err := unified.Validate(cue.Concrete(options.concrete)); err != nil {
		return cue.Value{}, FormatError(err, options.filename)
	}

	return unified, nil
}

// ExtractJSON syntax-checks JSON data and returns its CUE syntax tree.
// Syntax errors and oversized input are returned as errors. The tree is not
// evaluated, so well-formed JSON that repeats a key is accepted as-is.
func ExtractJSON(data []byte, opts ...Option) (ast.Expr, error) {
	options := applyOptions(opts)

	if err := CheckFileSize(data, options.maxFileSize, options.filename); err != nil {
		return nil, err
	}

	expr, err := cuejson.Extract(options.filename, data)
	if err != nil {
		return nil, FormatError(err, options.filename)
	}
	return expr, nil
}

// LookupString returns the string value of a top-level field of a JSON
// object tree. When the field repeats, the last occurrence wins. ok is false
// when expr is not an object, the field is absent, or its last value is not
// a string.
func LookupString(expr ast.Expr, field string) (string, bool) {
	obj, isObject := expr.(*ast.StructLit)
	if !isObject {
		return "", false
	}

	var last ast.Expr
	for _, decl := range obj.Elts {
		f, isField := decl.(*ast.Field)
		if !isField {
			continue
		}
		if name, _, err := ast.LabelName(f.Label); err == nil && name == field {
			last = f.Value
		}
	}

	lit, isLit := last.(*ast.BasicLit)
	if !isLit || lit.Kind != token.STRING {
		return "", false
	}
	s, err := literal.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return s, true
}
