package uuidv7

import (
	"database/sql/driver"
	"fmt"
)

// Value implements driver.Valuer, storing the canonical text form.
func (u UUID) Value() (driver.Value, error) {
	return u.String(), nil
}

// Scan implements sql.Scanner. It accepts canonical text as a string or
// byte slice and the raw 16-byte form drivers return for native UUID
// columns. Anything that is not a version 7 identifier is rejected, so a
// column shared with other UUID versions needs a wider type.
func (u *UUID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*u = Nil
		return nil
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*u = parsed
		return nil
	case []byte:
		if len(v) == 16 {
			var raw UUID
			copy(raw[:], v)
			if err := raw.validate(); err != nil {
				return err
			}
			*u = raw
			return nil
		}
		return u.Scan(string(v))
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidFormat, src)
	}
}
