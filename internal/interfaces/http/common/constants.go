package common

const (
	// MaxSubmissionRequestBody limits JSON request bodies for the contact form endpoint.
	MaxSubmissionRequestBody = 1 << 20
)
