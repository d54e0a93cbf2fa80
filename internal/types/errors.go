package types

import "errors"

var (
	ErrCompetitorNotFound = errors.New("competitor not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrDiscountNotFound   = errors.New("active discount not found")
	ErrRunInProgress      = errors.New("a run for this competitor is already in progress")
	ErrInvalidName        = errors.New("competitor name may only contain letters, digits and underscores")
	ErrDuplicateName      = errors.New("competitor name already exists")
	ErrInvalidToken       = errors.New("invalid cron token")
)
