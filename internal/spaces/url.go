package spaces

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidSpaceURL is returned when a URL carries no /spaces/{id}
// path segment.
var ErrInvalidSpaceURL = errors.New("spaces: URL does not contain a /spaces/{id} segment")

var spaceIDPattern = regexp.MustCompile(`/spaces/([a-zA-Z0-9]+)`)

// ExtractSpaceID pulls the space identifier out of a Twitter/X Space
// URL such as https://x.com/i/spaces/1ZkKzYLnWOLxv. No network call is
// made; a URL without the segment fails immediately.
func ExtractSpaceID(spaceURL string) (string, error) {
	m := spaceIDPattern.FindStringSubmatch(spaceURL)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidSpaceURL, spaceURL)
	}

	return m[1], nil
}
