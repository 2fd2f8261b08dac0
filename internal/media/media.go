// Package media holds the gallery's data model: listed items, upload outcomes,
// locally selected files, and the rules used to classify and order them.
package media

import "strings"

// Item is a named, publicly addressable uploaded asset.
// Two items may share a name when the backend allows it.
type Item struct {
	Name string `json:"name" example:"4f0c2a9e-5b1d-4c7e-9a39-0d7f3c1b2e11.png"`
	URL  string `json:"url"  example:"http://localhost:9000/memes/4f0c2a9e-5b1d-4c7e-9a39-0d7f3c1b2e11.png"`
}

// Kind returns how the item is rendered, derived from its name.
func (i Item) Kind() Kind {
	return KindFromName(i.Name)
}

// UploadOutcome is the result of uploading a single file.
type UploadOutcome struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SuccessCount returns how many outcomes succeeded.
func SuccessCount(outcomes []UploadOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

// File is a locally selected file held in memory until it is uploaded.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the file length in bytes.
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// Extension returns the text after the last dot of the name. A name without a
// dot is returned whole.
func (f File) Extension() string {
	if i := strings.LastIndex(f.Name, "."); i >= 0 {
		return f.Name[i+1:]
	}
	return f.Name
}
