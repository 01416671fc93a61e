package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateUser  = errors.New("username or email already registered")
	ErrInvalidInput   = errors.New("invalid input")
	ErrAlreadyAwarded = errors.New("weekly points already awarded")
)
