// Package decode loads normalized dataset JSON into typed values.
package decode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/papapumpkin/textage/internal/rules"
)

var (
	// ErrNormalization indicates the text is not JSON at all: the transform
	// rules produced something the parser rejects.
	ErrNormalization = errors.New("normalized text is not valid JSON")
	// ErrDecode indicates valid JSON that does not have the dataset's shape.
	ErrDecode = errors.New("JSON does not match dataset shape")

	errTrailingData = errors.New("trailing data after JSON value")
)

// Difficulties maps a song id to its level per play mode; -1 marks a chart
// that does not exist.
type Difficulties map[string][]int

// Versions lists game version names in release order.
type Versions []string

// Titles maps a song id to its title row.
type Titles map[string][]TitleField

// Result holds one decoded dataset. Exactly one of the typed fields is set,
// selected by Kind.
type Result struct {
	Kind         rules.Kind
	Difficulties Difficulties
	Versions     Versions
	Titles       Titles
	Raw          json.RawMessage
}

// Len returns the number of top-level entries.
func (r Result) Len() int {
	switch r.Kind {
	case rules.KindDifficulties:
		return len(r.Difficulties)
	case rules.KindVersions:
		return len(r.Versions)
	case rules.KindTitles:
		return len(r.Titles)
	}
	n := 0
	gjson.ParseBytes(r.Raw).ForEach(func(_, _ gjson.Result) bool {
		n++
		return true
	})
	return n
}

// Decode parses data as the dataset shape for kind.
func Decode(kind rules.Kind, data []byte) (Result, error) {
	if !gjson.ValidBytes(data) {
		return Result{}, ErrNormalization
	}

	res := Result{Kind: kind}
	root := gjson.ParseBytes(data)
	var target any
	switch kind {
	case rules.KindDifficulties:
		target = &res.Difficulties
		if !root.IsObject() {
			return Result{}, fmt.Errorf("%w: %s: want an object", ErrDecode, kind)
		}
	case rules.KindVersions:
		target = &res.Versions
		if !root.IsArray() {
			return Result{}, fmt.Errorf("%w: %s: want an array", ErrDecode, kind)
		}
	case rules.KindTitles:
		target = &res.Titles
		if !root.IsObject() {
			return Result{}, fmt.Errorf("%w: %s: want an object", ErrDecode, kind)
		}
	case rules.KindRaw:
		res.Raw = append(json.RawMessage(nil), data...)
		return res, nil
	default:
		return Result{}, fmt.Errorf("decode: unknown dataset kind %q", kind)
	}

	if at := nullPath(root, "$"); at != "" {
		return Result{}, fmt.Errorf("%w: %s: null at %s", ErrDecode, kind, at)
	}
	if err := strictUnmarshal(data, target); err != nil {
		return Result{}, decodeError(kind, err)
	}
	return res, nil
}

// decodeError classifies an unmarshal failure. Syntax problems belong to the
// normalized text, everything else to its shape.
func decodeError(kind rules.Kind, err error) error {
	var syn *json.SyntaxError
	if errors.As(err, &syn) || errors.Is(err, errTrailingData) {
		return fmt.Errorf("%w: %s: %v", ErrNormalization, kind, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrDecode, kind, err)
}

// nullPath returns the location of the first null inside v, or "" when there
// is none. No dataset shape admits null at any depth.
func nullPath(v gjson.Result, at string) string {
	if v.Type == gjson.Null {
		return at
	}
	if !v.IsObject() && !v.IsArray() {
		return ""
	}
	var found string
	i := 0
	v.ForEach(func(key, val gjson.Result) bool {
		elem := key.String()
		if v.IsArray() {
			elem = strconv.Itoa(i)
		}
		i++
		found = nullPath(val, at+"/"+elem)
		return found == ""
	})
	return found
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}
