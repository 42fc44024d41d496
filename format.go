package quill

import (
	"io"
	"strconv"

	"github.com/quilltpl/quill/internal/errors"
	"github.com/quilltpl/quill/value"
)

// defaultFormatter writes scalar values in their natural text form.
// None renders as nothing, booleans as true or false, integers in
// decimal and floats in the shortest decimal form that round-trips.
// Lists and maps have no natural text form and fail.
func defaultFormatter(w io.Writer, val value.Value) error {
	switch val.Kind() {
	case value.KindNone:
		return nil
	case value.KindBool:
		b, _ := val.AsBool()
		_, err := io.WriteString(w, strconv.FormatBool(b))
		return err
	case value.KindInt:
		i, _ := val.AsInt()
		_, err := io.WriteString(w, strconv.FormatInt(i, 10))
		return err
	case value.KindFloat:
		f, _ := val.AsFloat()
		_, err := io.WriteString(w, strconv.FormatFloat(f, 'f', -1, 64))
		return err
	case value.KindString:
		s, _ := val.AsString()
		_, err := io.WriteString(w, s)
		return err
	default:
		return errors.Newf(errors.NotFormattable, "a %s has no natural text form", val.Kind())
	}
}
