package service

import (
	"fmt"
	"net/url"
	"strings"
)

// ImageSource maps a seed to an illustrative image reference.
type ImageSource interface {
	ImageFor(seed string) string
}

// Picsum builds picsum.photos style seeded URLs: <base>/seed/<seed>/<width>/<height>.
type Picsum struct {
	BaseURL string
	Width   int
	Height  int
}

func (p Picsum) ImageFor(seed string) string {
	return fmt.Sprintf("%s/seed/%s/%d/%d", strings.TrimRight(p.BaseURL, "/"), url.PathEscape(seed), p.Width, p.Height)
}
