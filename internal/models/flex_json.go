package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// ErrMissingField is returned when a field tagged flex:"required" is absent,
// null, or cannot be coerced to its type
var ErrMissingField = errors.New("missing or unusable field")

type flexField struct {
	index    int
	required bool
}

// jsonFieldMaps caches JSON tag -> struct field mappings per type
var jsonFieldMaps sync.Map

func getJSONFieldMap(t reflect.Type) map[string]flexField {
	if cached, ok := jsonFieldMaps.Load(t); ok {
		return cached.(map[string]flexField)
	}
	m := make(map[string]flexField, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		m[name] = flexField{index: i, required: field.Tag.Get("flex") == "required"}
	}
	jsonFieldMaps.Store(t, m)
	return m
}

// UnmarshalJSON accepts both native JSON types and the loosely typed output
// language models tend to produce: numbers as quoted strings, fractional
// scores, and a single string where a list was requested.
func (p *PredictionOutput) UnmarshalJSON(data []byte) error {
	// Alias prevents infinite recursion
	type Alias PredictionOutput
	return flexUnmarshal(data, (*Alias)(p))
}

func (w *WinProbability) UnmarshalJSON(data []byte) error {
	type Alias WinProbability
	return flexUnmarshal(data, (*Alias)(w))
}

func (m *MarketAnalysis) UnmarshalJSON(data []byte) error {
	type Alias MarketAnalysis
	return flexUnmarshal(data, (*Alias)(m))
}

// flexUnmarshal decodes data into the struct pointed to by target. A zero
// value is never taken for a required field that was absent or unusable.
func flexUnmarshal(data []byte, target any) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	v := reflect.ValueOf(target).Elem()
	fieldMap := getJSONFieldMap(v.Type())

	for key, f := range fieldMap {
		if !f.required {
			continue
		}
		if rawVal, ok := raw[key]; !ok || string(rawVal) == "null" {
			return fmt.Errorf("%w: %s", ErrMissingField, key)
		}
	}

	// Fast path: standard unmarshal works when all types match natively
	err := json.Unmarshal(data, target)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrMissingField) {
		return err
	}

	// Slow path: field-by-field with coercion
	for key, rawVal := range raw {
		f, ok := fieldMap[key]
		if !ok {
			continue
		}

		fv := v.Field(f.index)
		if !fv.CanSet() {
			continue
		}

		// Try direct unmarshal first
		ptr := reflect.New(fv.Type())
		err := json.Unmarshal(rawVal, ptr.Interface())
		if err == nil {
			fv.Set(ptr.Elem())
			continue
		}
		if errors.Is(err, ErrMissingField) {
			return fmt.Errorf("%s: %w", key, err)
		}

		set := false
		if len(rawVal) > 1 && rawVal[0] == '"' {
			var s string
			if err := json.Unmarshal(rawVal, &s); err == nil && s != "" {
				set = coerceStringToField(fv, s)
			}
		} else if n, err := strconv.ParseFloat(string(rawVal), 64); err == nil {
			// Fractional number into an integer field
			set = coerceNumberToField(fv, n)
		}

		if !set && f.required {
			return fmt.Errorf("%w: %s = %s", ErrMissingField, key, rawVal)
		}
	}

	return nil
}

// coerceStringToField converts a string value to the field's native type
// and reports whether it could.
func coerceStringToField(fv reflect.Value, s string) bool {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	switch fv.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return false
		}
		return coerceNumberToField(fv, n)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false
		}
		fv.SetBool(b)
		return true
	case reflect.String:
		fv.SetString(s)
		return true
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return false
		}
		var items []string
		for _, line := range strings.Split(s, "\n") {
			line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•"))
			if line != "" {
				items = append(items, line)
			}
		}
		out := reflect.MakeSlice(fv.Type(), len(items), len(items))
		for i, item := range items {
			out.Index(i).SetString(item)
		}
		fv.Set(out)
		return true
	}
	return false
}

func coerceNumberToField(fv reflect.Value, n float64) bool {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return false
	}
	switch fv.Kind() {
	case reflect.Float32, reflect.Float64:
		fv.SetFloat(n)
		return true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		fv.SetInt(int64(math.Round(n)))
		return true
	}
	return false
}
