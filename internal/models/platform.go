package models

import "errors"

// Platform identifies one of the supported social networks.
type Platform string

const (
	PlatformTelegram  Platform = "telegram"
	PlatformInstagram Platform = "instagram"
	PlatformTiktok    Platform = "tiktok"
)

var ErrInvalidPlatform = errors.New("invalid platform")

func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformTelegram, PlatformInstagram, PlatformTiktok:
		return Platform(s), nil
	}
	return "", ErrInvalidPlatform
}

func (p Platform) Valid() bool {
	_, err := ParsePlatform(string(p))
	return err == nil
}
