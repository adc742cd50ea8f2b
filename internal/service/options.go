package service

import (
	"strings"

	"github.com/evyataryagoni/ipenrich/internal/models"
)

// MsgMissingToken is reported when the access token is empty
const MsgMissingToken = "You must provide a valid access token"

// ValidateOptions checks the per-call options before a lookup is attempted
// Returns an empty slice when the options are usable
func (s *LookupService) ValidateOptions(opts models.LookupOptions) []models.OptionError {
	errs := []models.OptionError{}

	opts.AccessToken = strings.TrimSpace(opts.AccessToken)
	if err := s.validator.Struct(opts); err != nil {
		errs = append(errs, models.OptionError{
			Key:     "accessToken",
			Message: MsgMissingToken,
		})
	}

	return errs
}
