package domain

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrReviewerInactive   = errors.New("reviewer is inactive")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidFileType    = errors.New("invalid file type: only PDF, JPEG and PNG are allowed")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed       = errors.New("file upload to storage failed")
	ErrUnknownFormType    = errors.New("unknown form type")
	ErrNotUploadField     = errors.New("field does not accept uploads")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidRole        = errors.New("invalid reviewer role")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrSessionNotFound    = errors.New("wizard session not found or expired")
	ErrMissingConfig      = errors.New("missing configuration")
)
