package upload

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var videoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
}

// LocalFile is a File backed by a path on disk.
type LocalFile struct {
	path      string
	name      string
	size      int64
	mediaType string
}

// OpenLocalFile stats path and determines its media type from the extension,
// falling back to content sniffing.
func OpenLocalFile(path string) (*LocalFile, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	mediaType, ok := videoExtensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		mediaType, err = sniff(path)
		if err != nil {
			return nil, err
		}
	}

	return &LocalFile{
		path:      path,
		name:      fi.Name(),
		size:      fi.Size(),
		mediaType: mediaType,
	}, nil
}

func (f *LocalFile) Name() string      { return f.name }
func (f *LocalFile) Size() int64       { return f.size }
func (f *LocalFile) MediaType() string { return f.mediaType }

func (f *LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

func sniff(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}
