package handlers

import (
	"errors"
	"strings"

	"tweetfeed/utils"
)

// ValidatePost checks the fields a user supplies for a new post. It returns a
// field -> message map and false when anything is wrong.
func ValidatePost(author, content string, image *string) (map[string]string, bool) {
	errs := make(map[string]string)

	author = strings.TrimSpace(author)
	content = strings.TrimSpace(content)
	hasImage := image != nil && *image != ""

	// Author validation
	if author == "" {
		errs["author"] = "Please enter your name"
	}

	// Content validation
	if content == "" && !hasImage {
		errs["content"] = "Please write some text or choose an image"
	}

	// Image validation
	if hasImage {
		if _, err := utils.ParseImageDataURI(*image); err != nil {
			switch {
			case errors.Is(err, utils.ErrImageTooLarge):
				errs["image"] = "Please choose an image smaller than 5 MB"
			default:
				errs["image"] = "Please choose a valid image (PNG, JPG, GIF)"
			}
		}
	}

	if len(errs) > 0 {
		return errs, false
	}
	return nil, true
}
