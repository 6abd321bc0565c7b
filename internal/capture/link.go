package capture

import (
	"regexp"
	"strings"

	"github.com/nikbrunner/spots/internal/model"
)

var (
	instagramPostRe = regexp.MustCompile(`instagram\.com/(?:([^/?#]+)/)?(p|reel)/([^/?#]+)`)
	tiktokVideoRe   = regexp.MustCompile(`tiktok\.com/@([^/?#]+)/video/(\d+)`)
)

// ParsePostURL turns a pasted post link into a capture with the platform
// and, where the link carries it, the author.
func ParsePostURL(raw string) (*model.CapturedPost, error) {
	link := strings.TrimSpace(raw)
	if link == "" {
		return nil, &model.ValidationError{Field: "link", Msg: "please paste a link"}
	}

	if m := instagramPostRe.FindStringSubmatch(link); m != nil {
		return &model.CapturedPost{
			Platform: model.PlatformInstagram,
			URL:      link,
			Author:   m[1],
			Images:   []string{},
		}, nil
	}
	if m := tiktokVideoRe.FindStringSubmatch(link); m != nil {
		return &model.CapturedPost{
			Platform: model.PlatformTikTok,
			URL:      link,
			Author:   m[1],
			Images:   []string{},
		}, nil
	}

	return nil, &model.ValidationError{Field: "link", Msg: "paste an Instagram or TikTok post URL"}
}
