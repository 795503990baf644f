package errors

import "errors"

var (
	ErrFlashcardNotFound   = errors.New("flashcard not found")
	ErrInvalidFlashcard    = errors.New("invalid flashcard input")
	ErrFlashcardIDMismatch = errors.New("flashcard id does not match path")
)
