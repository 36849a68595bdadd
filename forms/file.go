package forms

import (
	"mime/multipart"

	"github.com/andreyvit/formkit/rules"
)

// FileSource looks up uploaded files by field name.
type FileSource interface {
	File(name string) *multipart.FileHeader
}

// MultipartFiles adapts the Files map of a parsed multipart request.
type MultipartFiles map[string][]*multipart.FileHeader

func (m MultipartFiles) File(name string) *multipart.FileHeader {
	files := m[name]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// File is an <input type="file">. Its value comes from the upload source, not
// from submitted values.
type File struct {
	element
	source FileSource
}

func NewFile(name string) *File {
	f := &File{}
	f.init("input", name, "file")
	return f
}

func (f *File) SetSource(source FileSource) { f.source = source }

// Upload returns the uploaded file, or nil.
func (f *File) Upload() *multipart.FileHeader {
	if f.source == nil {
		return nil
	}
	return f.source.File(f.name)
}

// Value is the uploaded file name.
func (f *File) Value() any {
	if up := f.Upload(); up != nil {
		return up.Filename
	}
	return ""
}

func (f *File) SetValue(value any) {}
func (f *File) ResetValue()        {}

// Validate checks requiredness and, when a file was uploaded, runs the
// validators: comparison rules see the size in bytes, everything else sees
// the file name.
func (f *File) Validate(values map[string]any) bool {
	up := f.Upload()
	if up == nil {
		if f.required {
			f.errors.Add(f.RequiredMessage())
		}
		return len(f.errors) == 0
	}
	for _, v := range f.validators {
		if _, ok := v.(rules.Comparison); ok {
			rules.Apply(v, up.Size, values, &f.errors)
		} else {
			rules.Apply(v, up.Filename, values, &f.errors)
		}
	}
	return len(f.errors) == 0
}
