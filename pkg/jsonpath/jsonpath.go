package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Extract extracts a value from a JSON string using a JSONPath expression
func Extract(json string, path string) (string, error) {
	if json == "" {
		return "", fmt.Errorf("empty JSON string")
	}
	if path == "" {
		return "", fmt.Errorf("empty JSONPath expression")
	}

	result := gjson.Get(json, convertToGjsonPath(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}

	if result.Type == gjson.Null {
		return "null", nil
	}

	return result.String(), nil
}

// Keys returns the keys of the object found at path, in document order.
// Keys that occur more than once are reported once, at their first position.
func Keys(json string, path string) ([]string, error) {
	obj, err := object(json, path)
	if err != nil {
		return nil, err
	}

	var keys []string
	seen := make(map[string]bool)
	obj.ForEach(func(key, _ gjson.Result) bool {
		k := key.String()
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
		return true
	})

	return keys, nil
}

// Duplicates returns the keys that occur more than once in the object found
// at path. Each duplicated key is listed once, in order of its second
// occurrence.
func Duplicates(json string, path string) ([]string, error) {
	obj, err := object(json, path)
	if err != nil {
		return nil, err
	}

	var dups []string
	count := make(map[string]int)
	obj.ForEach(func(key, _ gjson.Result) bool {
		k := key.String()
		count[k]++
		if count[k] == 2 {
			dups = append(dups, k)
		}
		return true
	})

	return dups, nil
}

// object resolves path and checks that it names a JSON object
func object(json string, path string) (gjson.Result, error) {
	if !gjson.Valid(json) {
		return gjson.Result{}, fmt.Errorf("invalid JSON")
	}

	var res gjson.Result
	if gpath := convertToGjsonPath(path); gpath == "@this" {
		res = gjson.Parse(json)
	} else {
		res = gjson.Get(json, gpath)
	}

	if !res.Exists() {
		return gjson.Result{}, fmt.Errorf("path not found: %s", path)
	}
	if !res.IsObject() {
		return gjson.Result{}, fmt.Errorf("not an object: %s", path)
	}

	return res, nil
}

// convertToGjsonPath converts a JSONPath expression to a gjson path.
//
//	$.versions.rust[0] -> versions.rust.0
func convertToGjsonPath(path string) string {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	// Bracketed names: $['name'] and $["name"]
	for _, q := range []string{"'", `"`} {
		path = strings.ReplaceAll(path, "["+q, ".")
		path = strings.ReplaceAll(path, q+"]", "")
	}

	// Indexes: [n] -> .n
	path = strings.ReplaceAll(path, "[", ".")
	path = strings.ReplaceAll(path, "]", "")

	return strings.TrimPrefix(path, ".")
}
