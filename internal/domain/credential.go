package domain

const redacted = "[REDACTED]"

// Credential holds an API key. Formatting and JSON encoding never print the
// value; use Expose when building the Authorization header.
type Credential struct {
	value string
}

func NewCredential(value string) Credential {
	return Credential{value: value}
}

func (c Credential) String() string   { return redacted }
func (c Credential) GoString() string { return "domain.Credential{" + redacted + "}" }

func (c Credential) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// Expose returns the raw key.
func (c Credential) Expose() string {
	return c.value
}

func (c Credential) IsEmpty() bool {
	return c.value == ""
}
