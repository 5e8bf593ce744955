package validators

import (
	"errors"
	"mime/multipart"

	"bitwise74/media-gallery/storage"
)

var (
	ErrNoFile              = errors.New("no file selected")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
)

// Takes into account the 37 byte uuid prefix added on save
const maxFileNameSize = 218

// FileValidator runs the cheap checks an upload has to pass before any
// bytes are written: a file must be present, carry a name and have a
// whitelisted extension. Anything beyond the extension is deliberately
// not inspected
func FileValidator(fh *multipart.FileHeader, store *storage.MediaStore) error {
	if fh == nil || fh.Filename == "" {
		return ErrNoFile
	}

	if len(fh.Filename) > maxFileNameSize {
		return ErrFileNameTooLong
	}

	if !store.AllowedFile(fh.Filename) {
		return ErrFileTypeUnsupported
	}

	return nil
}
