package chatSession

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
)

var dataURLPattern = regexp.MustCompile(`^data:(.+);base64,(.+)$`)

var ErrInvalidDataURL = errors.New("invalid base64 data URL")

type Image struct {
	MIMEType string
	Data     []byte
}

func ParseDataURL(dataURL string) (Image, error) {
	matches := dataURLPattern.FindStringSubmatch(dataURL)
	if len(matches) != 3 {
		return Image{}, ErrInvalidDataURL
	}

	data, err := base64.StdEncoding.DecodeString(matches[2])
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrInvalidDataURL, err)
	}

	return Image{MIMEType: matches[1], Data: data}, nil
}

func (image Image) DataURL() string {
	return "data:" + image.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
}
