package utils

import "math/rand"

var avatars = []string{"👤", "😊", "🙂", "😄", "🎭", "⭐", "💫", "🌟", "✨", "👑"}

// RandomAvatar picks the glyph shown next to a new post.
func RandomAvatar() string {
	return avatars[rand.Intn(len(avatars))]
}

// DefaultAvatar is shown for posts stored without one.
const DefaultAvatar = "👤"

// AvatarOrDefault returns a, or DefaultAvatar when a is empty.
func AvatarOrDefault(a string) string {
	if a == "" {
		return DefaultAvatar
	}
	return a
}
