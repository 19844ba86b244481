package service

// RegionCodeValidator decides whether a normalized identifier names a known
// region. The check is pluggable so the US-states-only assumption stays in
// one place.
type RegionCodeValidator interface {
	Valid(code string) bool
}

// USStateCodeValidator accepts exactly two uppercase ASCII letters.
// It is a strict whitelist: 3-letter or numeric codes are rejected.
type USStateCodeValidator struct{}

func NewUSStateCodeValidator() USStateCodeValidator { return USStateCodeValidator{} }

func (USStateCodeValidator) Valid(code string) bool {
	if len(code) != 2 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}
