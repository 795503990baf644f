package errors

import "errors"

var (
	ErrQuizNotFound      = errors.New("quiz not found")
	ErrInvalidQuiz       = errors.New("invalid quiz input")
	ErrQuizAlreadyExists = errors.New("quiz with this title already exists")
)
