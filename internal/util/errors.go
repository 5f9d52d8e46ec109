package util

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("admin access required")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrBackendUnavailable = errors.New("backend unavailable")

	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthenticated)
	ErrInvalidFileType    = fmt.Errorf("invalid file type: %w", ErrValidation)

	// 以下都满足 errors.Is(err, ErrNotFound)
	ErrContentNotFound  = fmt.Errorf("content %w", ErrNotFound)
	ErrTutorialNotFound = fmt.Errorf("tutorial %w", ErrNotFound)
	ErrCourseNotFound   = fmt.Errorf("course %w", ErrNotFound)
	ErrModuleNotFound   = fmt.Errorf("course module %w", ErrNotFound)
	ErrProjectNotFound  = fmt.Errorf("project %w", ErrNotFound)
)
