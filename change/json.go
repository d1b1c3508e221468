package change

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ToJSON serializes the change as a JSON array: a kept stretch becomes
// its length, a replacement becomes [deletedLen] or
// [deletedLen, "inserted text"].
func (s Set) ToJSON() (string, error) {
	out := "[]"
	var err error
	appendPart := func(v any) {
		if err != nil {
			return
		}
		out, err = sjson.Set(out, "-1", v)
	}

	ti := 0
	for _, sec := range s.desc.sections() {
		if sec.keep {
			appendPart(sec.del)
			continue
		}
		part := []any{sec.del}
		if sec.ins > 0 {
			part = append(part, s.inserted[ti])
			ti++
		}
		appendPart(part)
	}
	if err != nil {
		return "", err
	}
	return out, nil
}

// FromJSON deserializes the array form produced by ToJSON.
func FromJSON(data string) (Set, error) {
	parsed := gjson.Parse(data)
	if !parsed.IsArray() {
		return Set{}, fmt.Errorf("%w: expected a JSON array, got %s", ErrMalformedChange, parsed.Type)
	}

	b := newRunBuilder(true)
	var outerErr error
	parsed.ForEach(func(_, part gjson.Result) bool {
		switch {
		case part.Type == gjson.Number:
			n := part.Int()
			if n < 0 {
				outerErr = fmt.Errorf("%w: negative keep length %d", ErrMalformedChange, n)
				return false
			}
			b.keep(n)
		case part.IsArray():
			elems := part.Array()
			if len(elems) == 0 || len(elems) > 2 || elems[0].Type != gjson.Number {
				outerErr = fmt.Errorf("%w: bad replacement %s", ErrMalformedChange, part.Raw)
				return false
			}
			del := elems[0].Int()
			if del < 0 {
				outerErr = fmt.Errorf("%w: negative delete length %d", ErrMalformedChange, del)
				return false
			}
			b.del(del)
			if len(elems) == 2 {
				if elems[1].Type != gjson.String {
					outerErr = fmt.Errorf("%w: insert text must be a string in %s", ErrMalformedChange, part.Raw)
					return false
				}
				text := elems[1].String()
				b.ins(int64(len(text)), text)
			}
		default:
			outerErr = fmt.Errorf("%w: unexpected element %s", ErrMalformedChange, part.Raw)
			return false
		}
		return true
	})
	if outerErr != nil {
		return Set{}, outerErr
	}
	return Set{desc: Desc{spans: b.spans}, inserted: b.texts}, nil
}
