package environment

// MissingKeyError reports a Get call for a key that is undefined after all
// property layers. It is never recovered internally: callers that can live
// without the value use GetOrDefault instead.
type MissingKeyError struct {
	Key         string
	Environment string
}

func (e *MissingKeyError) Error() string {
	return "property " + e.Key + " is not defined for environment " + e.Environment
}
