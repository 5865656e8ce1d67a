package cli

import (
	"fmt"
	"os"
	"strings"
)

// validateImageRef checks an --image_url value. Accepted forms are
// http:// and https:// URLs, file:// references and bare local paths;
// file references must point at an existing file.
func validateImageRef(ref string) (string, error) {
	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return ref, nil

	case strings.HasPrefix(lower, "file://"):
		path := ref[len("file://"):]
		if err := checkFile(path); err != nil {
			return "", err
		}
		return ref, nil

	case strings.Contains(ref, "://"):
		return "", fmt.Errorf("unsupported image scheme in %q (expected http://, https:// or file://)", ref)

	default:
		if err := checkFile(ref); err != nil {
			return "", err
		}
		return "file://" + ref, nil
	}
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("image file %q not found", path)
	}
	if info.IsDir() {
		return fmt.Errorf("image path %q is a directory", path)
	}
	return nil
}
