package media

import (
	"fmt"
	"io"
	"mime/multipart"
)

// ReadMultipart loads an uploaded form file into memory. The declared
// Content-Type header of the part is kept as the file's MIME type.
func ReadMultipart(fh *multipart.FileHeader) (File, error) {
	f, err := fh.Open()
	if err != nil {
		return File{}, fmt.Errorf("open %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return File{}, fmt.Errorf("read %q: %w", fh.Filename, err)
	}

	return File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
