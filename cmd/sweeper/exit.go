package main

// Process exit statuses.
const (
	exitFailure            = 1
	exitBaseConfigMissing  = 2
	exitSweepConfigMissing = 3
	exitConfigInvalid      = 4
)

// ExitError carries a specific exit status back to main.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
