package entities

// ValidationResult collects the problems found in a manifest.
type ValidationResult struct {
	Errors []ValidationError
	Valid  bool
}

// ValidationError is one problem, located by a field path such as
// "modules[1].capabilities[0]".
type ValidationError struct {
	Field   string
	Message string
}
