package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Document is a settings document: a JSON object whose top-level keys are
// setting names. Keys keep the order they had in the source so that outcome
// lists are deterministic. A nil *Document is an empty document.
type Document struct {
	keys   []string
	values map[string]interface{}
}

// NewDocument creates an empty document
func NewDocument() *Document {
	return &Document{values: make(map[string]interface{})}
}

// DocumentFromMap builds a document from m. Go maps carry no order, so keys
// are taken in the order given by order, followed by any remaining keys of m
// in the order they are encountered by encoding/json (sorted).
func DocumentFromMap(m map[string]interface{}, order ...string) *Document {
	doc := NewDocument()
	for _, key := range order {
		if v, ok := m[key]; ok {
			doc.Set(key, v)
		}
	}
	data, err := json.Marshal(m)
	if err != nil {
		for key, v := range m {
			doc.Set(key, v)
		}
		return doc
	}
	gjson.ParseBytes(data).ForEach(func(key, _ gjson.Result) bool {
		k := key.String()
		if !doc.Has(k) {
			doc.Set(k, m[k])
		}
		return true
	})
	return doc
}

// ParseDocument parses an untrusted payload. Anything other than a JSON
// object, including null, arrays and scalars, is a KindContent error.
func ParseDocument(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 || !gjson.ValidBytes(data) {
		return nil, NewError(KindContent, "parse document", errors.New("invalid JSON in configuration"))
	}

	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return nil, NewError(KindContent, "parse document",
			fmt.Errorf("configuration must be a JSON object, got %s", describe(result)))
	}

	doc := NewDocument()
	result.ForEach(func(key, value gjson.Result) bool {
		doc.Set(key.String(), value.Value())
		return true
	})
	return doc, nil
}

func describe(r gjson.Result) string {
	switch {
	case r.IsArray():
		return "array"
	case r.Type == gjson.Null:
		return "null"
	case r.Type == gjson.String:
		return "string"
	case r.Type == gjson.Number:
		return "number"
	case r.Type == gjson.True, r.Type == gjson.False:
		return "boolean"
	default:
		return r.Type.String()
	}
}

// Set stores value under key. A new key is appended; an existing key keeps
// its position.
func (d *Document) Set(key string, value interface{}) {
	if d.values == nil {
		d.values = make(map[string]interface{})
	}
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Get returns the value stored under key
func (d *Document) Get(key string) (interface{}, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.values[key]
	return v, ok
}

// Has reports whether key is present
func (d *Document) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Keys returns the keys in document order
func (d *Document) Keys() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of keys
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// IsEmpty reports whether the document has no keys
func (d *Document) IsEmpty() bool {
	return d.Len() == 0
}

// Each calls fn for every entry in document order until fn returns false.
func (d *Document) Each(fn func(key string, value interface{}) bool) {
	if d == nil {
		return
	}
	for _, key := range d.keys {
		if !fn(key, d.values[key]) {
			return
		}
	}
}

// Overlay returns a new document containing base's entries overridden and
// extended by over's. Base keys keep their position, new keys follow in over's order.
func Overlay(base, over *Document) *Document {
	out := NewDocument()
	base.Each(func(key string, value interface{}) bool {
		out.Set(key, value)
		return true
	})
	over.Each(func(key string, value interface{}) bool {
		out.Set(key, value)
		return true
	})
	return out
}

// Map returns a copy of the entries as a plain map
func (d *Document) Map() map[string]interface{} {
	out := make(map[string]interface{}, d.Len())
	d.Each(func(key string, value interface{}) bool {
		out[key] = value
		return true
	})
	return out
}

// MarshalJSON encodes the document as an object in document order
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	var err error
	i := 0
	d.Each(func(key string, value interface{}) bool {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++

		var k, v []byte
		if k, err = json.Marshal(key); err != nil {
			return false
		}
		if v, err = json.Marshal(Normalize(value)); err != nil {
			return false
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, rejecting every other JSON type
func (d *Document) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDocument(data)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}
