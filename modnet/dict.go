// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modnet

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goki/ki/kit"
	"gonum.org/v1/gonum/mat"
)

// Dict is a mapping of parameter name to value, as used for status setting,
// model defaults and connection specifications.  Values are numbers, bools,
// strings, sequences of ints, or weight matrices (mat.Matrix or [][]float64).
type Dict map[string]any

var (
	// ErrBadProperty is returned (wrapped) for unknown parameter names and
	// values of the wrong kind.
	ErrBadProperty = errors.New("bad property")

	// ErrUnknownModel is returned (wrapped) for model names that are not registered.
	ErrUnknownModel = errors.New("unknown model")

	// ErrKernelLocked is returned (wrapped) when trying to change kernel
	// structure (threads, resolution) after nodes have been created.
	ErrKernelLocked = errors.New("kernel locked")
)

// Keys returns the sorted keys of the dict.
func (d Dict) Keys() []string {
	ks := make([]string, 0, len(d))
	for k := range d {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

// Changed returns the entries of d that are missing from o or have a
// different value.  Values must be comparable.
func (d Dict) Changed(o Dict) Dict {
	ch := Dict{}
	for k, v := range d {
		if ov, has := o[k]; !has || ov != v {
			ch[k] = v
		}
	}
	return ch
}

// BadProperty returns an ErrBadProperty error for given key and reason.
func BadProperty(key string, reason string) error {
	return fmt.Errorf("%w: %q: %s", ErrBadProperty, key, reason)
}

// DictFloat converts the value to a float64, or returns a BadProperty error.
func DictFloat(key string, v any) (float64, error) {
	if _, isStr := v.(string); isStr {
		return 0, BadProperty(key, "expected a number, got a string")
	}
	f, ok := kit.ToFloat(v)
	if !ok {
		return 0, BadProperty(key, fmt.Sprintf("expected a number, got %T", v))
	}
	return f, nil
}

// DictInt converts the value to an int, or returns a BadProperty error.
// Floating point values must be integral.
func DictInt(key string, v any) (int, error) {
	switch fv := v.(type) {
	case float32:
		if float32(int(fv)) != fv {
			return 0, BadProperty(key, "expected an integer")
		}
	case float64:
		if float64(int(fv)) != fv {
			return 0, BadProperty(key, "expected an integer")
		}
	case string:
		return 0, BadProperty(key, "expected an integer, got a string")
	}
	i, ok := kit.ToInt(v)
	if !ok {
		return 0, BadProperty(key, fmt.Sprintf("expected an integer, got %T", v))
	}
	return int(i), nil
}

// DictBool converts the value to a bool, or returns a BadProperty error.
func DictBool(key string, v any) (bool, error) {
	b, ok := kit.ToBool(v)
	if !ok {
		return false, BadProperty(key, fmt.Sprintf("expected a bool, got %T", v))
	}
	return b, nil
}

// DictInts converts a sequence value to a slice of int64.
func DictInts(key string, v any) ([]int64, error) {
	switch sv := v.(type) {
	case []int64:
		return append([]int64(nil), sv...), nil
	case []int:
		is := make([]int64, len(sv))
		for i, x := range sv {
			is[i] = int64(x)
		}
		return is, nil
	case []any:
		is := make([]int64, len(sv))
		for i, x := range sv {
			iv, err := DictInt(key, x)
			if err != nil {
				return nil, err
			}
			is[i] = int64(iv)
		}
		return is, nil
	case []float64:
		is := make([]int64, len(sv))
		for i, x := range sv {
			iv, err := DictInt(key, x)
			if err != nil {
				return nil, err
			}
			is[i] = int64(iv)
		}
		return is, nil
	}
	return nil, BadProperty(key, fmt.Sprintf("expected a sequence of integers, got %T", v))
}

// DictMatrix returns the value as a matrix if it is one, and false for scalars.
func DictMatrix(v any) (mat.Matrix, bool) {
	switch mv := v.(type) {
	case mat.Matrix:
		return mv, true
	case [][]float64:
		if len(mv) == 0 {
			return nil, false
		}
		m := mat.NewDense(len(mv), len(mv[0]), nil)
		for r, row := range mv {
			for c := 0; c < len(mv[0]) && c < len(row); c++ {
				m.Set(r, c, row[c])
			}
		}
		return m, true
	case [][]float32:
		if len(mv) == 0 {
			return nil, false
		}
		m := mat.NewDense(len(mv), len(mv[0]), nil)
		for r, row := range mv {
			for c := 0; c < len(mv[0]) && c < len(row); c++ {
				m.Set(r, c, float64(row[c]))
			}
		}
		return m, true
	}
	return nil, false
}
