package services

import "errors"

// Common service errors. Handlers map these to HTTP statuses at the
// boundary; messages are the ones the frontend already displays.
var (
	ErrInvalidCredentials  = errors.New("Invalid credentials")
	ErrUnauthorized        = errors.New("Invalid or expired token")
	ErrNotFound            = errors.New("Record not found or not updated")
	ErrUserNotFound        = errors.New("User not found")
	ErrDuplicateUsername   = errors.New("Username already exists")
	ErrNoFields            = errors.New("No fields to update")
	ErrInvalidFileType     = errors.New("Only Excel (.xlsx) or CSV (.csv) files are allowed")
	ErrInvalidTemplate     = errors.New("Invalid file template format")
	ErrInvalidEvidenceType = errors.New("Invalid file type")
)
