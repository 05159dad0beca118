package reports

import "errors"

var (
	ErrGenerationFailed = errors.New("failed to generate report")
	ErrContentBlocked   = errors.New("report blocked by safety filters")
	ErrInvalidResponse  = errors.New("model returned no report")
)
