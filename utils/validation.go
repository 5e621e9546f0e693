// utils/validation.go
package utils

// ValidatePhone checks whether a phone number carries enough digits to yield
// a canonical last-10 match key. Records that fail this can never be matched
// against imports or calendar events.
func ValidatePhone(phone string) bool {
	return !NormalizePhone(phone).IsZero()
}
