// Package target resolves what a run captures (a live channel, a VOD, or a
// clip) and where the resulting artifact is written.
package target

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"scrapurr/internal/services"
)

// Kind distinguishes the three capture modes.
type Kind string

const (
	KindLive Kind = "live"
	KindVOD  Kind = "vod"
	KindClip Kind = "clip"
)

const (
	liveFileLayout = "02_01_06-15_04"
	rawExt         = ".ts"
)

var (
	channelPattern = regexp.MustCompile(`^[a-z0-9_]{1,25}$`)
	idPattern      = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	loginFolder    = cases.Lower(language.Und)
)

// Target identifies what to capture. It is immutable once resolved.
type Target struct {
	Kind        Kind
	Channel     string
	VideoID     string
	StartOffset string
	ClipID      string
	URL         string
}

// FromUsername builds a live-channel target.
func FromUsername(name string) (Target, error) {
	channel, err := normalizeChannel(name)
	if err != nil {
		return Target{}, err
	}
	return Target{Kind: KindLive, Channel: channel, URL: channelURL(channel)}, nil
}

// Parse classifies a Twitch URL. Host clips.twitch.tv and any path segment
// "clip" select clip mode, /videos/<id> selects VOD mode, and any other
// twitch.tv path is treated as a live channel.
func Parse(raw string) (Target, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Target{}, invalid("empty url", nil)
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return Target{}, invalid("parse url", err)
	}

	host := strings.ToLower(parsed.Hostname())
	segments := pathSegments(parsed.Path)

	switch host {
	case "clips.twitch.tv":
		return clipTarget(trimmed, segments)
	case "twitch.tv", "www.twitch.tv", "m.twitch.tv":
	default:
		return Target{}, invalid(fmt.Sprintf("unsupported host %q", parsed.Host), nil)
	}

	if len(segments) == 0 {
		return Target{}, invalid("url has no channel, video, or clip path", nil)
	}
	if segments[0] == "videos" {
		if len(segments) < 2 || !idPattern.MatchString(segments[1]) {
			return Target{}, invalid("vod url is missing a video id", nil)
		}
		return Target{
			Kind:        KindVOD,
			VideoID:     segments[1],
			StartOffset: strings.TrimSpace(parsed.Query().Get("t")),
			URL:         trimmed,
		}, nil
	}
	for _, segment := range segments {
		if segment == "clip" {
			target, err := clipTarget(trimmed, segments)
			if err != nil {
				return Target{}, err
			}
			target.Channel = loginFolder.String(segments[0])
			if target.Channel == "clip" {
				target.Channel = ""
			}
			return target, nil
		}
	}

	return FromUsername(segments[0])
}

func clipTarget(raw string, segments []string) (Target, error) {
	if len(segments) == 0 {
		return Target{}, invalid("clip url is missing a clip id", nil)
	}
	id := segments[len(segments)-1]
	if id == "clip" || !idPattern.MatchString(id) {
		return Target{}, invalid("clip url is missing a clip id", nil)
	}
	return Target{Kind: KindClip, ClipID: id, URL: raw}, nil
}

// SourceURL is the reference handed to the capture tool.
func (t Target) SourceURL() string {
	if t.Kind == KindLive {
		return channelURL(t.Channel)
	}
	return t.URL
}

// Label names the target in logs and notifications.
func (t Target) Label() string {
	switch t.Kind {
	case KindLive:
		return t.Channel
	case KindVOD:
		return "vod " + t.VideoID
	case KindClip:
		return "clip " + t.ClipID
	default:
		return t.URL
	}
}

// LockKey identifies the target for the single-recorder lock.
func (t Target) LockKey() string {
	switch t.Kind {
	case KindLive:
		return "live-" + t.Channel
	case KindVOD:
		return "vod-" + t.VideoID
	default:
		return "clip-" + t.ClipID
	}
}

// LiveDir is the folder live captures of channel are written to.
func LiveDir(outputRoot, channel string) string {
	return filepath.Join(outputRoot, channel, "vods")
}

// LivePath builds <root>/<channel>/vods/<channel>-<DD_MM_YY-HH_MM>.ts using
// the local time of at.
func LivePath(outputRoot, channel string, at time.Time) string {
	name := fmt.Sprintf("%s-%s%s", channel, at.Local().Format(liveFileLayout), rawExt)
	return filepath.Join(LiveDir(outputRoot, channel), name)
}

// ClipDir is the folder clips are written to.
func ClipDir(outputRoot string) string {
	return filepath.Join(outputRoot, "clips")
}

// FetchPath returns the destination of a one-shot VOD or clip download.
func (t Target) FetchPath(outputRoot string) (string, error) {
	switch t.Kind {
	case KindVOD:
		return filepath.Join(outputRoot, "vod_"+t.VideoID+rawExt), nil
	case KindClip:
		return filepath.Join(ClipDir(outputRoot), t.ClipID+rawExt), nil
	default:
		return "", services.Wrap(services.ErrValidation, "target", "fetch path", fmt.Sprintf("%s targets have no one-shot path", t.Kind), nil)
	}
}

func normalizeChannel(name string) (string, error) {
	channel := loginFolder.String(strings.TrimPrefix(strings.TrimSpace(name), "@"))
	if channel == "" {
		return "", invalid("username is empty", nil)
	}
	if !channelPattern.MatchString(channel) {
		return "", invalid(fmt.Sprintf("username %q may only contain letters, digits, and underscores", name), nil)
	}
	return channel, nil
}

func channelURL(channel string) string {
	return "https://www.twitch.tv/" + channel
}

func pathSegments(path string) []string {
	var out []string
	for _, segment := range strings.Split(path, "/") {
		if segment = strings.TrimSpace(segment); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

func invalid(message string, err error) error {
	return services.Wrap(services.ErrValidation, "target", "resolve", message, err)
}
