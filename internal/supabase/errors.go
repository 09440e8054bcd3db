package supabase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"rental-inspection-backend/internal/reports"
)

const uniqueViolationCode = "23505"

// classifyInsertError maps a uniqueness violation from either Postgres or
// PostgREST onto reports.ErrUniqueViolation. Other errors are returned as is.
func classifyInsertError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == uniqueViolationCode {
			return fmt.Errorf("%w: %s", reports.ErrUniqueViolation, pqErr.Message)
		}
		return err
	}

	if postgrestCode(err) == uniqueViolationCode {
		return fmt.Errorf("%w: %s", reports.ErrUniqueViolation, err.Error())
	}
	return err
}

// postgrestCode returns the code of an error reported by PostgREST. The
// client formats those as "(<code>) <message>"; other errors have no code.
func postgrestCode(err error) string {
	msg := err.Error()
	if !strings.HasPrefix(msg, "(") {
		return ""
	}
	end := strings.IndexByte(msg, ')')
	if end < 0 {
		return ""
	}
	return msg[1:end]
}
