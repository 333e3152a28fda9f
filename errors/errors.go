package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrProjectNotFound    = fmt.Errorf("project not found")
	ErrTaskNotFound       = fmt.Errorf("task not found")
	ErrNotOwner           = fmt.Errorf("only the project owner may perform this action")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
)
