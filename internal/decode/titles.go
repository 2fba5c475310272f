package decode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FieldKind tags the variant held by a TitleField.
type FieldKind uint8

const (
	TextField FieldKind = iota + 1
	NumberField
)

// TitleField is one element of a title row: either text or an integer.
// The zero value holds neither.
type TitleField struct {
	kind FieldKind
	text string
	num  int
}

// Text returns a text field.
func Text(s string) TitleField { return TitleField{kind: TextField, text: s} }

// Number returns an integer field.
func Number(n int) TitleField { return TitleField{kind: NumberField, num: n} }

// Kind reports which variant f holds; 0 for the zero value.
func (f TitleField) Kind() FieldKind { return f.kind }

// Text returns the string value and whether f is a text field.
func (f TitleField) Text() (string, bool) { return f.text, f.kind == TextField }

// Number returns the integer value and whether f is a number field.
func (f TitleField) Number() (int, bool) { return f.num, f.kind == NumberField }

// String renders the field for display.
func (f TitleField) String() string {
	switch f.kind {
	case TextField:
		return f.text
	case NumberField:
		return strconv.Itoa(f.num)
	}
	return ""
}

// Equal reports whether two fields hold the same variant and value.
func (f TitleField) Equal(g TitleField) bool {
	return f.kind == g.kind && f.text == g.text && f.num == g.num
}

// MarshalJSON encodes the field as a JSON string or number.
func (f TitleField) MarshalJSON() ([]byte, error) {
	switch f.kind {
	case TextField:
		return json.Marshal(f.text)
	case NumberField:
		return []byte(strconv.Itoa(f.num)), nil
	}
	return nil, fmt.Errorf("decode: marshal empty title field")
}

// UnmarshalJSON accepts a JSON string or an integer.
func (f *TitleField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("decode: empty title field")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Text(s)
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("decode: title field %s is neither text nor an integer", data)
	}
	*f = Number(n)
	return nil
}

// Field returns row[i], or the zero field when the row is shorter.
func Field(row []TitleField, i int) TitleField {
	if i < 0 || i >= len(row) {
		return TitleField{}
	}
	return row[i]
}
