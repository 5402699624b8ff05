package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	// ActivationCodeMin and ActivationCodeMax bound the generated code, both inclusive.
	ActivationCodeMin = 100000
	ActivationCodeMax = 999999

	// MaxActivationAttempts is the number of retrievals or failed validations
	// a single code value tolerates.
	MaxActivationAttempts = 5
)

// ActivationCode is the one-time code that gates a registered user from
// becoming activated. There is at most one per user.
type ActivationCode struct {
	UserID         uuid.UUID `db:"user_id"`
	Code           int       `db:"code"`
	ExpirationTime time.Time `db:"expiration_time"`
	Attempts       int       `db:"attempts"`
}

// IsExpired reports whether the code is unusable at the given instant.
func (c *ActivationCode) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpirationTime)
}

// AttemptsExceeded reports whether the attempt budget of the code is used up.
// Once true it stays true until a new code is minted.
func (c *ActivationCode) AttemptsExceeded(maxAttempts int) bool {
	return c.Attempts >= maxAttempts
}

// RemainingAttempts never returns a negative number.
func (c *ActivationCode) RemainingAttempts(maxAttempts int) int {
	if c.Attempts >= maxAttempts {
		return 0
	}
	return maxAttempts - c.Attempts
}

// String renders the code as it is shown to the user.
func (c *ActivationCode) String() string {
	return strconv.Itoa(c.Code)
}

// ValidActivationCode reports whether n lies in the range of generated codes.
func ValidActivationCode(n int) bool {
	return n >= ActivationCodeMin && n <= ActivationCodeMax
}
