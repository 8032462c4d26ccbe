// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Object is a JSON object whose members are looked up by their exact key. encoding/json
// matches struct fields case-insensitively, which would accept keys an API never sends.
type Object map[string]json.RawMessage

// DecodeObject decodes raw into an Object. A JSON null or a non-object value is an error.
func DecodeObject(raw json.RawMessage) (Object, error) {
	var obj Object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("value is null, not an object")
	}
	return obj, nil
}

// Field decodes the member with exactly the given key into target. It reports false if the
// key is absent or its value is null, leaving target untouched.
func (o Object) Field(key string, target any) (bool, error) {
	raw, ok := o[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false, fmt.Errorf("field %q: %w", key, err)
	}
	return true, nil
}

// Child returns the member with exactly the given key as Object. It reports false if the
// key is absent or its value is null.
func (o Object) Child(key string) (Object, bool, error) {
	var obj Object
	ok, err := o.Field(key, &obj)
	if err != nil || !ok {
		return nil, ok, err
	}
	return obj, true, nil
}
