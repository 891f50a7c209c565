package models

// Content is any representation of file content that can be normalized to bytes.
type Content interface {
	Bytes() ([]byte, error)
}

// CodeownersFile is a located CODEOWNERS file. It only lives while its repository is processed.
type CodeownersFile struct {
	Repository *Repository
	Path       string
	Size       int
	SHA        string
	// Content is nil when the file is too large to be inlined by the contents API;
	// it must then be fetched as a blob by SHA.
	Content Content
}

// IsLarge reports whether the content requires a secondary blob fetch.
func (f *CodeownersFile) IsLarge() bool {
	return f.Content == nil
}
