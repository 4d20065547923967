// Package types defines core primitive types for the wrapresource ledger.
package types

// MaxNameLen is the maximum length of an account name.
const MaxNameLen = 12

// Name identifies an account. Valid names are 1-12 characters from the set
// [a-z1-5.], with no leading or trailing dot.
type Name string

// Valid reports whether the name is well formed.
func (n Name) Valid() bool {
	if len(n) == 0 || len(n) > MaxNameLen {
		return false
	}
	if n[0] == '.' || n[len(n)-1] == '.' {
		return false
	}
	for i := 0; i < len(n); i++ {
		c := n[i]
		if (c < 'a' || c > 'z') && (c < '1' || c > '5') && c != '.' {
			return false
		}
	}
	return true
}

// String returns the name as a plain string.
func (n Name) String() string {
	return string(n)
}
