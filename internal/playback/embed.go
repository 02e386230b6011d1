package playback

import (
	"net/url"
	"strconv"
)

// EmbedOptions is the flag bundle handed to the remote playback collaborator.
// Everything that could lead a child off the video is switched off: related
// content, branding links, annotations, keyboard shortcuts, and the native
// fullscreen takeover that would hide the back control.
type EmbedOptions struct {
	Autoplay          bool
	Inline            bool
	SuppressRelated   bool
	MinimalBranding   bool
	DisableKeyboard   bool
	DisableFullscreen bool
	HideAnnotations   bool
	PrivacyEnhanced   bool
}

// DefaultEmbedOptions locks the embed down completely.
func DefaultEmbedOptions() EmbedOptions {
	return EmbedOptions{
		Autoplay:          true,
		Inline:            true,
		SuppressRelated:   true,
		MinimalBranding:   true,
		DisableKeyboard:   true,
		DisableFullscreen: true,
		HideAnnotations:   true,
		PrivacyEnhanced:   true,
	}
}

// EmbedURL builds the remote player URL for a video identifier with the
// default lockdown flags.
func EmbedURL(id string) string {
	return DefaultEmbedOptions().URL(id)
}

func (o EmbedOptions) URL(id string) string {
	host := "www.youtube.com"
	if o.PrivacyEnhanced {
		host = "www.youtube-nocookie.com"
	}

	q := url.Values{}
	q.Set("autoplay", flag(o.Autoplay))
	q.Set("playsinline", flag(o.Inline))
	q.Set("rel", flag(!o.SuppressRelated))
	q.Set("modestbranding", flag(o.MinimalBranding))
	q.Set("disablekb", flag(o.DisableKeyboard))
	q.Set("fs", flag(!o.DisableFullscreen))
	if o.HideAnnotations {
		q.Set("iv_load_policy", "3")
	}
	// The JS API channel is what lets the frontend observe ready/error/end.
	q.Set("enablejsapi", "1")

	u := url.URL{
		Scheme:   "https",
		Host:     host,
		Path:     "/embed/" + id,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func flag(on bool) string {
	return strconv.Itoa(boolToInt(on))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
