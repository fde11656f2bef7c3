package scrape

import (
	"errors"
	"fmt"

	"outreach/internal/config"
)

// Platform identifies which social network a job scrapes.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformThreads   Platform = "threads"
	PlatformTikTok    Platform = "tiktok"
	PlatformX         Platform = "x"
)

// ErrBadPlatform marks a platform name outside the supported set. It is
// a client error, not an upstream one.
var ErrBadPlatform = errors.New("unsupported platform")

// ParsePlatform validates a request-supplied platform name. The empty
// string defaults to instagram.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case "":
		return PlatformInstagram, nil
	case PlatformInstagram, PlatformThreads, PlatformTikTok, PlatformX:
		return Platform(s), nil
	}
	return "", fmt.Errorf("%w %q", ErrBadPlatform, s)
}

// Profile is a normalized scraped follower.
type Profile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
	PostCount      int    `json:"post_count"`
}

// Adapter binds a platform to its upstream actor: which actor to run,
// how to shape its input, and how to read its output rows.
type Adapter interface {
	ActorID() string
	BuildInput(accounts []string, maxPerAccount int) map[string]any
	Normalize(raw map[string]any) (Profile, bool)
}

// NewAdapters builds the adapter registry from configured actor ids.
// Platforms without an actor id are left unregistered.
func NewAdapters(cfg config.ActorsConfig) map[Platform]Adapter {
	adapters := make(map[Platform]Adapter)
	if cfg.Instagram != "" {
		adapters[PlatformInstagram] = instagramAdapter{actorID: cfg.Instagram}
	}
	if cfg.Threads != "" {
		adapters[PlatformThreads] = threadsAdapter{actorID: cfg.Threads}
	}
	if cfg.TikTok != "" {
		adapters[PlatformTikTok] = tiktokAdapter{actorID: cfg.TikTok}
	}
	if cfg.X != "" {
		adapters[PlatformX] = xAdapter{actorID: cfg.X}
	}
	return adapters
}

func str(raw map[string]any, key string) string {
	v, _ := raw[key].(string)
	return v
}

func num(raw map[string]any, key string) int {
	// JSON numbers decode as float64
	if f, ok := raw[key].(float64); ok {
		return int(f)
	}
	return 0
}

type instagramAdapter struct {
	actorID string
}

func (a instagramAdapter) ActorID() string { return a.actorID }

func (a instagramAdapter) BuildInput(accounts []string, maxPerAccount int) map[string]any {
	return map[string]any{
		"usernames":          accounts,
		"maxFollowersPerAcc": maxPerAccount,
		"resultsType":        "followers",
	}
}

func (a instagramAdapter) Normalize(raw map[string]any) (Profile, bool) {
	username := str(raw, "username")
	if username == "" {
		return Profile{}, false
	}
	id := str(raw, "id")
	if id == "" {
		id = username
	}
	return Profile{
		ID:             id,
		Username:       username,
		DisplayName:    str(raw, "full_name"),
		FollowerCount:  num(raw, "followers_count"),
		FollowingCount: num(raw, "following_count"),
		PostCount:      num(raw, "posts_count"),
	}, true
}

type threadsAdapter struct {
	actorID string
}

func (a threadsAdapter) ActorID() string { return a.actorID }

func (a threadsAdapter) BuildInput(accounts []string, maxPerAccount int) map[string]any {
	return map[string]any{
		"handles":          accounts,
		"maxPerHandle":     maxPerAccount,
		"includeFollowers": true,
	}
}

func (a threadsAdapter) Normalize(raw map[string]any) (Profile, bool) {
	username := str(raw, "username")
	if username == "" {
		return Profile{}, false
	}
	id := str(raw, "pk")
	if id == "" {
		id = username
	}
	return Profile{
		ID:             id,
		Username:       username,
		DisplayName:    str(raw, "name"),
		FollowerCount:  num(raw, "follower_count"),
		FollowingCount: num(raw, "following_count"),
	}, true
}

type tiktokAdapter struct {
	actorID string
}

func (a tiktokAdapter) ActorID() string { return a.actorID }

func (a tiktokAdapter) BuildInput(accounts []string, maxPerAccount int) map[string]any {
	return map[string]any{
		"profiles":       accounts,
		"maxFollowers":   maxPerAccount,
		"shouldDownload": false,
	}
}

func (a tiktokAdapter) Normalize(raw map[string]any) (Profile, bool) {
	username := str(raw, "unique_id")
	if username == "" {
		return Profile{}, false
	}
	id := str(raw, "uid")
	if id == "" {
		id = username
	}
	return Profile{
		ID:             id,
		Username:       username,
		DisplayName:    str(raw, "nickname"),
		FollowerCount:  num(raw, "follower_count"),
		FollowingCount: num(raw, "following_count"),
		PostCount:      num(raw, "aweme_count"),
	}, true
}

type xAdapter struct {
	actorID string
}

func (a xAdapter) ActorID() string { return a.actorID }

func (a xAdapter) BuildInput(accounts []string, maxPerAccount int) map[string]any {
	return map[string]any{
		"handles":      accounts,
		"maxFollowers": maxPerAccount,
	}
}

func (a xAdapter) Normalize(raw map[string]any) (Profile, bool) {
	username := str(raw, "screen_name")
	if username == "" {
		return Profile{}, false
	}
	id := str(raw, "id_str")
	if id == "" {
		id = username
	}
	return Profile{
		ID:             id,
		Username:       username,
		DisplayName:    str(raw, "name"),
		FollowerCount:  num(raw, "followers_count"),
		FollowingCount: num(raw, "friends_count"),
		PostCount:      num(raw, "statuses_count"),
	}, true
}
