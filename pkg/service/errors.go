package service

import (
	"errors"

	"mercator-hq/routecost/pkg/calcerr"
)

// ErrHistoryDisabled is returned by history queries when no store is attached.
var ErrHistoryDisabled = errors.New("history recording is disabled")

// Status labels used for operation metrics.
const (
	StatusSuccess       = "success"
	StatusValidation    = "validation"
	StatusNotFound      = "not_found"
	StatusConfiguration = "configuration"
	StatusError         = "error"
)

// Classify maps an error to a metrics status label.
func Classify(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case calcerr.IsValidation(err):
		return StatusValidation
	case calcerr.IsModelNotFound(err):
		return StatusNotFound
	case calcerr.IsConfiguration(err):
		return StatusConfiguration
	default:
		return StatusError
	}
}
