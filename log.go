package studyquiz

import "log"

var verboseMode bool

// SetVerbose toggles verbose diagnostics for the whole package. Both
// binaries wire it to their own flag or environment switch.
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// VerboseLog reports generation and grading progress, but only when
// verbose mode is on. Transcript-level detail goes to the LLMLogger
// instead.
func VerboseLog(format string, v ...interface{}) {
	if verboseMode {
		log.Printf(format, v...)
	}
}
