package tryon

import "errors"

var (
	// ErrMissingInput is matched by every *MissingInputError.
	ErrMissingInput = errors.New("missing input image")

	// ErrServiceUnavailable is returned by Unavailable.
	ErrServiceUnavailable = errors.New("image generation service is not configured")

	// ErrNoImages means the service answered without any image.
	ErrNoImages = errors.New("image generation service returned no images")
)

// MissingInputError reports a required image that was not supplied. Its
// Title and Message are meant to be shown to the user as-is.
type MissingInputError struct {
	Field   string
	Title   string
	Message string
}

func (e *MissingInputError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *MissingInputError) Unwrap() error {
	return ErrMissingInput
}

func missingPerson() error {
	return &MissingInputError{
		Field:   "person",
		Title:   "Missing Person Image",
		Message: "Please upload a person image.",
	}
}

func missingGarment() error {
	return &MissingInputError{
		Field:   "garment",
		Title:   "Missing Product Input",
		Message: "Please upload a traditional wear image.",
	}
}
