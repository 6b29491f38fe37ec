package employee

import "errors"

var (
	ErrInvalidID         = errors.New("employee: invalid id")
	ErrInvalidName       = errors.New("employee: invalid name")
	ErrInvalidPIN        = errors.New("employee: invalid pin")
	ErrEmployeeNotFound  = errors.New("employee: not found")
	ErrNameAlreadyExists = errors.New("employee: name already exists")
	ErrPINMismatch       = errors.New("employee: pin mismatch")
)
