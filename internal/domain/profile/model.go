package profile

import (
	"fmt"
	"reflect"
	"strings"
)

const (
	DefaultName           = "Your Name"
	DefaultBio            = "Your stats From previous performances will be displayed here."
	DefaultProfilePicture = "https://cdn-icons-png.freepik.com/256/14024/14024658.png?semt=ais_hybrid"
	DefaultCountry        = "N/A"
	DefaultTeam           = "N/A"
	DefaultPlayer         = "N/A"
)

// Document field names inside users/{userId}.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldBio     = "bio"
	FieldIsPro   = "isPro"
	FieldBadges  = "badges"
	FieldCountry = "country"
	FieldTeam    = "team"
	FieldPlayer  = "player"
)

// Profile is the dashboard view of a user. Every field is always populated.
type Profile struct {
	Name           string
	Bio            string
	ProfilePicture string
	IsPro          bool
	Badges         []string
	Country        string
	Team           string
	Player         string
}

func DefaultBadges() []string {
	return []string{"Badge 1", "Badge 2", "Badge 3"}
}

func Default() Profile {
	return Profile{
		Name:           DefaultName,
		Bio:            DefaultBio,
		ProfilePicture: DefaultProfilePicture,
		IsPro:          false,
		Badges:         DefaultBadges(),
		Country:        DefaultCountry,
		Team:           DefaultTeam,
		Player:         DefaultPlayer,
	}
}

// PicturePath is the object storage path of the user's 200x200 profile picture.
func PicturePath(userID string) string {
	return "user/" + userID + "/profile_200x200"
}

// FromDocument validates each stored field on its own and substitutes the
// default for any field that is missing or has the wrong type. Text fields
// must be non-blank and are kept verbatim. An empty pictureURL selects the
// default picture.
func FromDocument(fields map[string]any, pictureURL string) Profile {
	out := Default()
	out.Name = textOr(fields, FieldName, out.Name)
	out.Bio = textOr(fields, FieldBio, out.Bio)
	out.Country = textOr(fields, FieldCountry, out.Country)
	out.Team = textOr(fields, FieldTeam, out.Team)
	out.Player = textOr(fields, FieldPlayer, out.Player)

	if v, ok := fields[FieldIsPro].(bool); ok {
		out.IsPro = v
	}
	if badges, ok := sequence(fields[FieldBadges]); ok {
		out.Badges = badges
	}
	if strings.TrimSpace(pictureURL) != "" {
		out.ProfilePicture = pictureURL
	}

	return out
}

func textOr(fields map[string]any, key, fallback string) string {
	v, ok := fields[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// sequence accepts any slice or array except raw bytes. Non-string elements
// are rendered with fmt so the list keeps its length and order.
func sequence(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case nil, []byte:
		return nil, false
	case []string:
		return append([]string{}, v...), true
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i).Interface()
		if s, ok := item.(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprint(item))
	}
	return out, true
}
